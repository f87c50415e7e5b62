package contour

import (
	"fmt"
	"strings"

	"github.com/Faultbox/collidergen/pkg/math"
)

// Frame identifies the coordinate space of a loop.
type Frame uint8

const (
	// Raw is image space: origin at the top-left pixel, all coordinates >= 0.
	Raw Frame = iota
	// Translated is centred on the loop's own bounding-box centre.
	Translated
)

// String returns the frame name.
func (f Frame) String() string {
	switch f {
	case Raw:
		return "raw"
	case Translated:
		return "translated"
	default:
		return fmt.Sprintf("Frame(%d)", uint8(f))
	}
}

// ParseFrame parses "raw" or "translated" (case-insensitive).
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "":
		return Raw, nil
	case "translated", "centered", "centred":
		return Translated, nil
	default:
		return Raw, fmt.Errorf("unknown coordinate frame %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Frame) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frame) UnmarshalText(text []byte) error {
	parsed, err := ParseFrame(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Loop is an ordered closed outline; the last point connects to the first.
// Origin is the raw-frame position of the local origin of a translated loop
// and is zero for raw loops.
type Loop struct {
	Points []math.Vec2
	Frame  Frame
	Origin math.Vec2
}

// Len returns the number of points.
func (l Loop) Len() int { return len(l.Points) }

// ToRaw returns the loop in image space. Raw loops are returned unchanged.
func (l Loop) ToRaw() Loop {
	if l.Frame == Raw {
		return l
	}
	pts := make([]math.Vec2, len(l.Points))
	for i, p := range l.Points {
		pts[i] = p.Add(l.Origin)
	}
	return Loop{Points: pts, Frame: Raw}
}

// ToTranslated returns a copy centred on the bounding-box centre of the loop.
// Point order and winding are preserved. Translated loops are returned
// unchanged.
func (l Loop) ToTranslated() Loop {
	if l.Frame == Translated {
		return l
	}
	lo, hi, ok := math.Bounds(l.Points)
	if !ok {
		return Loop{Frame: Translated}
	}
	center := math.V2((lo.X+hi.X)/2, (lo.Y+hi.Y)/2)
	pts := make([]math.Vec2, len(l.Points))
	for i, p := range l.Points {
		pts[i] = p.Sub(center)
	}
	return Loop{Points: pts, Frame: Translated, Origin: center}
}

// In returns the loop in frame f.
func (l Loop) In(f Frame) Loop {
	if f == Translated {
		return l.ToTranslated()
	}
	return l.ToRaw()
}

// RegionSet holds one loop per connected region, in discovery order.
type RegionSet []Loop

// In returns every loop of the set in frame f. Each loop is centred on its own
// bounding box when f is Translated.
func (rs RegionSet) In(f Frame) RegionSet {
	out := make(RegionSet, len(rs))
	for i, l := range rs {
		out[i] = l.In(f)
	}
	return out
}

// Points returns the point slices of every loop, in order.
func (rs RegionSet) Points() [][]math.Vec2 {
	out := make([][]math.Vec2, len(rs))
	for i, l := range rs {
		out[i] = l.Points
	}
	return out
}

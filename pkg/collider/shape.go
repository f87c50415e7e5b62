// Package collider synthesizes backend-neutral collision shape descriptors
// from traced boundary loops.
//
// A descriptor is one of Polyline, ConvexPolygon, ConvexHull or Heightfield.
// Requests that are geometrically impossible (too few points, zero-area hulls,
// single-column heightfields) produce an absent result rather than an error;
// callers skip those regions. Physics backends consume descriptors through a
// type switch and never need to reach back into this package.
package collider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/collidergen/pkg/math"
)

// ErrUnknownKind is returned when parsing an unrecognised shape kind.
var ErrUnknownKind = errors.New("unknown collider kind")

// Kind selects the descriptor variant to synthesize.
type Kind uint8

// Collider kinds.
const (
	KindPolyline Kind = iota
	KindConvexPolygon
	KindConvexHull
	KindHeightfield
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindPolyline, KindConvexPolygon, KindConvexHull, KindHeightfield}

// String returns the kind name used in configs and exports.
func (k Kind) String() string {
	switch k {
	case KindPolyline:
		return "polyline"
	case KindConvexPolygon:
		return "convex_polygon"
	case KindConvexHull:
		return "convex_hull"
	case KindHeightfield:
		return "heightfield"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses a kind name. Dashes and the "convex_polyline" spelling are
// accepted.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "polyline":
		return KindPolyline, nil
	case "convex_polygon", "convex_polyline":
		return KindConvexPolygon, nil
	case "convex_hull", "hull":
		return KindConvexHull, nil
	case "heightfield":
		return KindHeightfield, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Shape is a collider descriptor. Exactly one of the concrete types below
// implements it per instance.
type Shape interface {
	Kind() Kind
}

// Polyline is an open or closed chain of points with no convexity guarantee.
type Polyline struct {
	Points []math.Vec2
}

// ConvexPolygon is a convex outline, counter-clockwise in a y-up frame.
type ConvexPolygon struct {
	Points []math.Vec2
}

// ConvexHull is the convex hull of a point set, counter-clockwise in a y-up
// frame.
type ConvexHull struct {
	Points []math.Vec2
}

// Heightfield holds one elevation per column plus the horizontal span the
// samples cover.
//
// Heights are in column encounter order, which is not necessarily left to
// right; XScale is len(Heights)-1, so consecutive samples are one unit apart.
type Heightfield struct {
	Heights []float32
	XScale  float32
}

// Kind implements Shape.
func (Polyline) Kind() Kind { return KindPolyline }

// Kind implements Shape.
func (ConvexPolygon) Kind() Kind { return KindConvexPolygon }

// Kind implements Shape.
func (ConvexHull) Kind() Kind { return KindConvexHull }

// Kind implements Shape.
func (Heightfield) Kind() Kind { return KindHeightfield }

// Samples returns the heightfield as points centred on x = 0: sample i sits
// at x = -XScale/2 + i*XScale/(n-1), y = Heights[i].
func (h Heightfield) Samples() []math.Vec2 {
	n := len(h.Heights)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []math.Vec2{{X: 0, Y: h.Heights[0]}}
	}
	step := h.XScale / float32(n-1)
	pts := make([]math.Vec2, n)
	for i, y := range h.Heights {
		pts[i] = math.V2(-h.XScale/2+float32(i)*step, y)
	}
	return pts
}

// Vertices returns the point list of point-based shapes and the heightfield
// samples for heightfields.
func Vertices(s Shape) []math.Vec2 {
	switch s := s.(type) {
	case Polyline:
		return s.Points
	case ConvexPolygon:
		return s.Points
	case ConvexHull:
		return s.Points
	case Heightfield:
		return s.Samples()
	default:
		return nil
	}
}

// Package export serialises collider descriptors for one sprite source as a
// YAML document or a plain-text listing, and reads YAML documents back.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/contour"
	"github.com/Faultbox/collidergen/pkg/math"
)

// ErrMalformedEntry is returned when a decoded entry cannot be turned back
// into a descriptor.
var ErrMalformedEntry = errors.New("malformed collider entry")

// Document holds every collider generated from one source file.
type Document struct {
	Source string        `yaml:"source"`
	Kind   collider.Kind `yaml:"kind"`
	Frame  contour.Frame `yaml:"frame"`
	Multi  bool          `yaml:"multi"`
	Images []Image       `yaml:"images"`
}

// Image is one decoded frame of the source (SPR and GIF sources have many).
type Image struct {
	Index   int     `yaml:"index"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Entries []Entry `yaml:"entries"`
}

// Point is an x, y pair written in flow style.
type Point [2]float32

// Entry is one descriptor slot. Absent slots keep their index so region
// order survives the round trip.
type Entry struct {
	Index   int       `yaml:"index"`
	Absent  bool      `yaml:"absent,omitempty"`
	Kind    string    `yaml:"kind,omitempty"`
	Points  []Point   `yaml:"points,flow,omitempty"`
	Heights []float32 `yaml:"heights,flow,omitempty"`
	XScale  float32   `yaml:"x_scale,omitempty"`
}

// NewEntry converts slot index of a result into an Entry. A nil shape is an
// absent slot.
func NewEntry(index int, s collider.Shape) Entry {
	e := Entry{Index: index}
	if s == nil {
		e.Absent = true
		return e
	}
	e.Kind = s.Kind().String()
	if hf, ok := s.(collider.Heightfield); ok {
		e.Heights = hf.Heights
		e.XScale = hf.XScale
		return e
	}
	for _, p := range collider.Vertices(s) {
		e.Points = append(e.Points, Point{p.X, p.Y})
	}
	return e
}

// NewImage builds an Image from the shapes generated for one frame.
func NewImage(index, width, height int, shapes []collider.Shape) Image {
	img := Image{Index: index, Width: width, Height: height, Entries: make([]Entry, len(shapes))}
	for i, s := range shapes {
		img.Entries[i] = NewEntry(i, s)
	}
	return img
}

// Shape rebuilds the descriptor. ok is false for absent slots.
func (e Entry) Shape() (s collider.Shape, ok bool, err error) {
	if e.Absent {
		return nil, false, nil
	}
	kind, err := collider.ParseKind(e.Kind)
	if err != nil {
		return nil, false, fmt.Errorf("%w: entry %d: %w", ErrMalformedEntry, e.Index, err)
	}

	if kind == collider.KindHeightfield {
		if len(e.Heights) < 2 {
			return nil, false, fmt.Errorf("%w: entry %d: heightfield needs two heights", ErrMalformedEntry, e.Index)
		}
		return collider.Heightfield{Heights: e.Heights, XScale: e.XScale}, true, nil
	}

	if len(e.Points) == 0 {
		return nil, false, fmt.Errorf("%w: entry %d: no points", ErrMalformedEntry, e.Index)
	}
	pts := make([]math.Vec2, len(e.Points))
	for i, p := range e.Points {
		pts[i] = math.V2(p[0], p[1])
	}
	switch kind {
	case collider.KindPolyline:
		return collider.Polyline{Points: pts}, true, nil
	case collider.KindConvexPolygon:
		return collider.ConvexPolygon{Points: pts}, true, nil
	default:
		return collider.ConvexHull{Points: pts}, true, nil
	}
}

// Shapes rebuilds every present descriptor of the document in order.
func (d *Document) Shapes() ([]collider.Shape, error) {
	var out []collider.Shape
	for _, img := range d.Images {
		for _, e := range img.Entries {
			s, ok, err := e.Shape()
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", img.Index, err)
			}
			if ok {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

// Present counts the non-absent entries.
func (d *Document) Present() int {
	n := 0
	for _, img := range d.Images {
		for _, e := range img.Entries {
			if !e.Absent {
				n++
			}
		}
	}
	return n
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %w", doc.Source, err)
	}
	return enc.Close()
}

// Decode reads a YAML document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding collider document: %w", err)
	}
	return &doc, nil
}

// ReadFile decodes the YAML document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteText writes a compact human-readable listing of doc.
func WriteText(w io.Writer, doc *Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", doc.Source, doc.Kind, doc.Frame)
	for _, img := range doc.Images {
		fmt.Fprintf(&b, "  image %d  %dx%d\n", img.Index, img.Width, img.Height)
		for _, e := range img.Entries {
			switch {
			case e.Absent:
				fmt.Fprintf(&b, "    [%d] absent\n", e.Index)
			case len(e.Heights) > 0:
				fmt.Fprintf(&b, "    [%d] %s  columns=%d x_scale=%g\n", e.Index, e.Kind, len(e.Heights), e.XScale)
			default:
				fmt.Fprintf(&b, "    [%d] %s  points=%d\n", e.Index, e.Kind, len(e.Points))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FileName returns the output file name for source in the given format
// ("yaml" or "text"): the source path flattened with its extension replaced.
func FileName(source, format string) string {
	name := strings.TrimSuffix(filepath.ToSlash(source), filepath.Ext(source))
	name = strings.TrimLeft(name, "/")
	name = strings.ReplaceAll(name, "/", "_")
	if format == "text" {
		return name + ".txt"
	}
	return name + ".yaml"
}

// WriteFile writes doc into dir using FileName and returns the path written.
func WriteFile(dir, format string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, FileName(doc.Source, format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if format == "text" {
		err = WriteText(f, doc)
	} else {
		err = Encode(f, doc)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

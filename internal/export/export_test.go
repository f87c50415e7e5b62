package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/contour"
	"github.com/Faultbox/collidergen/pkg/math"
)

func sampleDoc() *Document {
	shapes := []collider.Shape{
		collider.ConvexHull{Points: []math.Vec2{{-1.5, -1.5}, {1.5, -1.5}, {1.5, 1.5}, {-1.5, 1.5}}},
		nil,
		collider.Heightfield{Heights: []float32{1, 2, 0}, XScale: 2},
	}
	return &Document{
		Source: "data/sprite/poring.spr",
		Kind:   collider.KindConvexHull,
		Frame:  contour.Translated,
		Multi:  true,
		Images: []Image{NewImage(0, 8, 8, shapes)},
	}
}

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name  string
		shape collider.Shape
		want  Entry
	}{
		{"absent", nil, Entry{Index: 3, Absent: true}},
		{
			"polyline",
			collider.Polyline{Points: []math.Vec2{{0, 0}, {2, 1}}},
			Entry{Index: 3, Kind: "polyline", Points: []Point{{0, 0}, {2, 1}}},
		},
		{
			"heightfield",
			collider.Heightfield{Heights: []float32{4, 5}, XScale: 1},
			Entry{Index: 3, Kind: "heightfield", Heights: []float32{4, 5}, XScale: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, NewEntry(3, tt.shape)); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleDoc()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"source: data/sprite/poring.spr",
		"kind: convex_hull",
		"frame: translated",
		"absent: true",
		"points: [[-1.5, -1.5], [1.5, -1.5], [1.5, 1.5], [-1.5, 1.5]]",
		"heights: [1, 2, 0]",
		"x_scale: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDecode_Shapes(t *testing.T) {
	var buf bytes.Buffer
	doc := sampleDoc()
	if err := Encode(&buf, doc); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Present() != 2 {
		t.Errorf("expected 2 present entries, got %d", got.Present())
	}
	if !got.Images[0].Entries[1].Absent || got.Images[0].Entries[1].Index != 1 {
		t.Errorf("absent slot not preserved: %+v", got.Images[0].Entries[1])
	}

	shapes, err := got.Shapes()
	if err != nil {
		t.Fatalf("Shapes failed: %v", err)
	}
	want := []collider.Shape{
		collider.ConvexHull{Points: []math.Vec2{{-1.5, -1.5}, {1.5, -1.5}, {1.5, 1.5}, {-1.5, 1.5}}},
		collider.Heightfield{Heights: []float32{1, 2, 0}, XScale: 2},
	}
	if d := cmp.Diff(want, shapes); d != "" {
		t.Error(d)
	}
}

func TestEntryShape_Malformed(t *testing.T) {
	tests := []Entry{
		{Index: 0, Kind: "sphere", Points: []Point{{0, 0}}},
		{Index: 1, Kind: "convex_hull"},
		{Index: 2, Kind: "heightfield", Heights: []float32{1}},
	}
	for _, e := range tests {
		if _, _, err := e.Shape(); !errors.Is(err, ErrMalformedEntry) {
			t.Errorf("entry %d: expected ErrMalformedEntry, got %v", e.Index, err)
		}
	}
	if _, _, err := (Entry{Index: 0, Kind: "sphere"}).Shape(); !errors.Is(err, collider.ErrUnknownKind) {
		t.Errorf("expected wrapped ErrUnknownKind, got %v", err)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleDoc()); err != nil {
		t.Fatal(err)
	}
	want := `data/sprite/poring.spr (convex_hull, translated)
  image 0  8x8
    [0] convex_hull  points=4
    [1] absent
    [2] heightfield  columns=3 x_scale=2
`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Error(d)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		source, format, want string
	}{
		{"data/sprite/poring.spr", "yaml", "data_sprite_poring.yaml"},
		{"mob.png", "text", "mob.txt"},
		{"/abs/tile.tga", "yaml", "abs_tile.yaml"},
	}
	for _, tt := range tests {
		if got := FileName(tt.source, tt.format); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.source, tt.format, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, "yaml", sampleDoc())
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != "data_sprite_poring.yaml" {
		t.Errorf("unexpected path %s", path)
	}
	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if doc.Kind != collider.KindConvexHull || !doc.Multi {
		t.Errorf("unexpected document header %+v", doc)
	}

	path, err = WriteFile(dir, "text", sampleDoc())
	if err != nil {
		t.Fatalf("WriteFile text failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "data/sprite/poring.spr") {
		t.Errorf("unexpected text output %q", data)
	}
}

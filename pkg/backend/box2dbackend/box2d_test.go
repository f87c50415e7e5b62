package box2dbackend

import (
	"errors"
	stdmath "math"
	"testing"

	"github.com/ByteArena/box2d"
	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/collidergen/pkg/backend"
	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/math"
)

func circle(n int, radius float64) []math.Vec2 {
	pts := make([]math.Vec2, n)
	for i := range pts {
		a := 2 * stdmath.Pi * float64(i) / float64(n)
		pts[i] = math.V2(float32(radius*stdmath.Cos(a)), float32(radius*stdmath.Sin(a)))
	}
	return pts
}

func TestFan(t *testing.T) {
	tests := []struct {
		n, limit int
		want     [][]int
	}{
		{2, 8, nil},
		{4, 8, [][]int{{0, 1, 2, 3}}},
		{8, 8, [][]int{{0, 1, 2, 3, 4, 5, 6, 7}}},
		{9, 8, [][]int{{0, 1, 2, 3, 4, 5, 6, 7}, {0, 7, 8}}},
		{12, 8, [][]int{{0, 1, 2, 3, 4, 5, 6, 7}, {0, 7, 8, 9, 10, 11}}},
		{6, 4, [][]int{{0, 1, 2, 3}, {0, 3, 4, 5}}},
	}
	for _, tt := range tests {
		if d := cmp.Diff(tt.want, Fan(tt.n, tt.limit)); d != "" {
			t.Errorf("Fan(%d, %d): %s", tt.n, tt.limit, d)
		}
	}
}

func TestShapes_Hull(t *testing.T) {
	hull := collider.ConvexHull{Points: []math.Vec2{{0, 0}, {32, 0}, {32, 32}, {0, 32}}}
	shapes, err := Shapes(hull, Options{})
	if err != nil {
		t.Fatalf("Shapes failed: %v", err)
	}
	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	poly, ok := shapes[0].(*box2d.B2PolygonShape)
	if !ok {
		t.Fatalf("expected *box2d.B2PolygonShape, got %T", shapes[0])
	}
	if poly.M_count != 4 {
		t.Errorf("expected 4 vertices, got %d", poly.M_count)
	}
	for i := 0; i < poly.M_count; i++ {
		v := poly.M_vertices[i]
		if v.X < 0 || v.X > 1 || v.Y < 0 || v.Y > 1 {
			t.Errorf("vertex %d not converted to meters: %v", i, v)
		}
	}
}

func TestShapes_FansLargePolygon(t *testing.T) {
	shapes, err := Shapes(collider.ConvexPolygon{Points: circle(12, 64)}, Options{})
	if err != nil {
		t.Fatalf("Shapes failed: %v", err)
	}
	if len(shapes) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(shapes))
	}
	counts := []int{shapes[0].(*box2d.B2PolygonShape).M_count, shapes[1].(*box2d.B2PolygonShape).M_count}
	if d := cmp.Diff([]int{8, 6}, counts); d != "" {
		t.Error(d)
	}
}

func TestShapes_Chains(t *testing.T) {
	loop, err := Shapes(collider.Polyline{Points: []math.Vec2{{0, 0}, {32, 0}, {32, 32}, {0, 32}}}, Options{})
	if err != nil {
		t.Fatalf("polyline failed: %v", err)
	}
	if got := loop[0].GetType(); got != box2d.B2Shape_Type.E_chain {
		t.Errorf("expected chain shape, got type %d", got)
	}
	if got := loop[0].GetChildCount(); got != 4 {
		t.Errorf("closed loop should have 4 edges, got %d", got)
	}

	open, err := Shapes(collider.Heightfield{Heights: []float32{0, 16, 8}, XScale: 2}, Options{PixelsPerMeter: 1})
	if err != nil {
		t.Fatalf("heightfield failed: %v", err)
	}
	if got := open[0].GetChildCount(); got != 2 {
		t.Errorf("open chain should have 2 edges, got %d", got)
	}
}

func TestShapes_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		shape collider.Shape
	}{
		{"nil", nil},
		{"two point loop", collider.Polyline{Points: []math.Vec2{{0, 0}, {4, 0}}}},
		{"loop of repeats", collider.Polyline{Points: []math.Vec2{{1, 1}, {1, 1}, {1, 1}}}},
		{"flat hull", collider.ConvexHull{Points: []math.Vec2{{0, 0}, {1, 0}, {2, 0}}}},
		{"tiny hull", collider.ConvexHull{Points: []math.Vec2{{0, 0}, {0.01, 0}, {0, 0.01}}}},
		{"flat heightfield chain", collider.Heightfield{Heights: []float32{3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Shapes(tt.shape, Options{}); !errors.Is(err, backend.ErrDegenerate) {
				t.Errorf("expected ErrDegenerate, got %v", err)
			}
		})
	}
}

func TestWorld(t *testing.T) {
	shapes := []collider.Shape{
		collider.ConvexHull{Points: circle(10, 48)},
		nil,
		collider.Polyline{Points: []math.Vec2{{0, 0}, {32, 0}, {32, 32}}},
	}
	world, bodies, err := World(shapes, Options{FlipY: true, Density: 1})
	if err != nil {
		t.Fatalf("World failed: %v", err)
	}
	if world.GetBodyCount() != 2 || len(bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d (%d returned)", world.GetBodyCount(), len(bodies))
	}

	fixtures := 0
	for f := bodies[0].GetFixtureList(); f != nil; f = f.GetNext() {
		fixtures++
	}
	if fixtures != 2 {
		t.Errorf("10-gon should be split into 2 fixtures, got %d", fixtures)
	}
	if bodies[1].GetFixtureList().GetType() != box2d.B2Shape_Type.E_chain {
		t.Error("polyline body should carry a chain fixture")
	}
}

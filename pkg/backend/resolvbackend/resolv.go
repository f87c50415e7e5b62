// Package resolvbackend builds resolv objects from collider descriptors.
package resolvbackend

import (
	stdmath "math"

	"github.com/solarlune/resolv"

	"github.com/Faultbox/collidergen/pkg/backend"
	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/math"
)

// Tag marks every object produced by this package; the collider kind name is
// added as a second tag.
const Tag = "collider"

// Objects converts s into resolv objects positioned at offset.
//
// Hulls and convex polygons become one closed ConvexPolygon object. A
// polyline becomes one open two-point polygon per edge. A heightfield becomes
// one quad per adjacent sample pair, closed one unit below the lowest sample.
func Objects(s collider.Shape, offset math.Vec2) ([]*resolv.Object, error) {
	switch s := s.(type) {
	case collider.ConvexHull:
		return polygon(s, s.Points, offset)
	case collider.ConvexPolygon:
		return polygon(s, s.Points, offset)
	case collider.Polyline:
		edges := backend.Segments(s.Points)
		if len(edges) == 0 {
			return nil, backend.Degenerate(s, "no edges")
		}
		objs := make([]*resolv.Object, 0, len(edges))
		for _, e := range edges {
			obj := object(s, e[:], offset)
			obj.Shape.(*resolv.ConvexPolygon).Closed = false
			objs = append(objs, obj)
		}
		return objs, nil
	case collider.Heightfield:
		samples := s.Samples()
		if len(samples) < 2 {
			return nil, backend.Degenerate(s, "fewer than two samples")
		}
		floor := backend.Floor(s)
		objs := make([]*resolv.Object, 0, len(samples)-1)
		for i := 0; i+1 < len(samples); i++ {
			a, b := samples[i], samples[i+1]
			quad := []math.Vec2{a, b, math.V2(b.X, floor), math.V2(a.X, floor)}
			objs = append(objs, object(s, quad, offset))
		}
		return objs, nil
	default:
		return nil, backend.Degenerate(s, "unsupported shape")
	}
}

func polygon(s collider.Shape, pts []math.Vec2, offset math.Vec2) ([]*resolv.Object, error) {
	if len(pts) < 3 {
		return nil, backend.Degenerate(s, "fewer than three vertices")
	}
	return []*resolv.Object{object(s, pts, offset)}, nil
}

// object places an object on the bounding box of pts and stores the polygon
// relative to the box corner.
func object(s collider.Shape, pts []math.Vec2, offset math.Vec2) *resolv.Object {
	lo, hi, _ := math.Bounds(pts)
	lo, hi = lo.Add(offset), hi.Add(offset)

	coords := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		p = p.Add(offset).Sub(lo)
		coords = append(coords, float64(p.X), float64(p.Y))
	}

	w := stdmath.Max(float64(hi.X-lo.X), 1)
	h := stdmath.Max(float64(hi.Y-lo.Y), 1)
	obj := resolv.NewObject(float64(lo.X), float64(lo.Y), w, h, Tag, s.Kind().String())
	obj.SetShape(resolv.NewConvexPolygon(coords...))
	return obj
}

// Space builds a resolv space holding every present shape. Nil slots are
// skipped. resolv cells cannot hold negative coordinates, so all shapes are
// shifted together until the smallest vertex sits on the origin; the applied
// shift is returned.
func Space(shapes []collider.Shape, cellSize int) (*resolv.Space, math.Vec2, error) {
	if cellSize <= 0 {
		cellSize = 16
	}

	var all []math.Vec2
	for _, s := range shapes {
		all = append(all, collider.Vertices(s)...)
		if hf, ok := s.(collider.Heightfield); ok {
			all = append(all, math.V2(0, backend.Floor(hf)))
		}
	}
	lo, hi, ok := math.Bounds(all)
	if !ok {
		return resolv.NewSpace(cellSize, cellSize, cellSize, cellSize), math.Vec2{}, nil
	}
	offset := math.V2(-lo.X, -lo.Y)

	width := int(stdmath.Ceil(float64(hi.X-lo.X))) + cellSize
	height := int(stdmath.Ceil(float64(hi.Y-lo.Y))) + cellSize
	space := resolv.NewSpace(width, height, cellSize, cellSize)

	for _, s := range shapes {
		if s == nil {
			continue
		}
		objs, err := Objects(s, offset)
		if err != nil {
			return nil, offset, err
		}
		space.Add(objs...)
	}
	return space, offset, nil
}

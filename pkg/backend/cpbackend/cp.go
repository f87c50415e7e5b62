// Package cpbackend attaches Chipmunk2D shapes built from collider
// descriptors to a body.
package cpbackend

import (
	"github.com/jakecoffman/cp"

	"github.com/Faultbox/collidergen/pkg/backend"
	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/math"
)

// Options tune the generated shapes.
type Options struct {
	// Radius is the bevel radius applied to polygons and segments.
	Radius float64
	// Scale multiplies every coordinate; zero means 1.
	Scale float64
	// FlipY negates y so image-space shapes read upright in Chipmunk's y-up
	// world.
	FlipY bool
}

func (o Options) vec(p math.Vec2) cp.Vector {
	scale := o.Scale
	if scale == 0 {
		scale = 1
	}
	v := cp.Vector{X: float64(p.X) * scale, Y: float64(p.Y) * scale}
	if o.FlipY {
		v.Y = -v.Y
	}
	return v
}

// Shapes creates the cp shapes for s on body. Hulls and convex polygons
// become a single PolyShape; polylines become one Segment per edge with the
// outline closed; heightfields become a Segment chain through the samples.
// The shapes are not added to any space.
func Shapes(body *cp.Body, s collider.Shape, opts Options) ([]*cp.Shape, error) {
	switch s := s.(type) {
	case collider.ConvexHull:
		return poly(body, s, s.Points, opts)
	case collider.ConvexPolygon:
		return poly(body, s, s.Points, opts)
	case collider.Polyline:
		edges := backend.Segments(s.Points)
		if len(edges) == 0 {
			return nil, backend.Degenerate(s, "no edges")
		}
		shapes := make([]*cp.Shape, 0, len(edges))
		for _, e := range edges {
			shapes = append(shapes, cp.NewSegment(body, opts.vec(e[0]), opts.vec(e[1]), opts.Radius))
		}
		return shapes, nil
	case collider.Heightfield:
		samples := s.Samples()
		if len(samples) < 2 {
			return nil, backend.Degenerate(s, "fewer than two samples")
		}
		shapes := make([]*cp.Shape, 0, len(samples)-1)
		for i := 0; i+1 < len(samples); i++ {
			shapes = append(shapes, cp.NewSegment(body, opts.vec(samples[i]), opts.vec(samples[i+1]), opts.Radius))
		}
		return shapes, nil
	default:
		return nil, backend.Degenerate(s, "unsupported shape")
	}
}

func poly(body *cp.Body, s collider.Shape, pts []math.Vec2, opts Options) ([]*cp.Shape, error) {
	if len(pts) < 3 || !collider.IsConvex(pts) {
		return nil, backend.Degenerate(s, "not a convex outline")
	}
	verts := make([]cp.Vector, len(pts))
	for i, p := range pts {
		verts[i] = opts.vec(p)
	}
	return []*cp.Shape{cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), opts.Radius)}, nil
}

// AddStatic adds every present shape to the space's static body and returns
// the number of cp shapes created. Nil slots are skipped; the first
// degenerate descriptor aborts before anything else is added.
func AddStatic(space *cp.Space, shapes []collider.Shape, opts Options) (int, error) {
	var built []*cp.Shape
	for _, s := range shapes {
		if s == nil {
			continue
		}
		out, err := Shapes(space.StaticBody, s, opts)
		if err != nil {
			return 0, err
		}
		built = append(built, out...)
	}
	for _, shape := range built {
		space.AddShape(shape)
	}
	return len(built), nil
}

// Package box2dbackend builds Box2D shapes and static bodies from collider
// descriptors.
//
// Box2D asserts (and panics) on polygons with fewer than three usable
// vertices and on chains with too-close points, so every descriptor is
// checked here first and rejected with backend.ErrDegenerate.
package box2dbackend

import (
	"github.com/ByteArena/box2d"

	"github.com/Faultbox/collidergen/pkg/backend"
	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/math"
)

// DefaultPixelsPerMeter converts sprite pixels to Box2D meters.
const DefaultPixelsPerMeter = 32

// Options tune the conversion.
type Options struct {
	// PixelsPerMeter divides every coordinate; zero means DefaultPixelsPerMeter.
	PixelsPerMeter float64
	// FlipY negates y for Box2D's y-up world.
	FlipY bool
	// Density is passed to every fixture.
	Density float64
}

func (o Options) vec(p math.Vec2) box2d.B2Vec2 {
	ppm := o.PixelsPerMeter
	if ppm == 0 {
		ppm = DefaultPixelsPerMeter
	}
	x, y := float64(p.X)/ppm, float64(p.Y)/ppm
	if o.FlipY {
		y = -y
	}
	return box2d.MakeB2Vec2(x, y)
}

func (o Options) vecs(pts []math.Vec2) []box2d.B2Vec2 {
	out := make([]box2d.B2Vec2, len(pts))
	for i, p := range pts {
		out[i] = o.vec(p)
	}
	return out
}

// Shapes converts s into Box2D shapes. Convex outlines with more than
// box2d.B2_maxPolygonVertices vertices are split into a fan of convex pieces
// sharing the first vertex. Polylines become a closed chain loop and
// heightfields an open chain through the samples.
func Shapes(s collider.Shape, opts Options) ([]box2d.B2ShapeInterface, error) {
	switch s := s.(type) {
	case collider.ConvexHull:
		return polygons(s, s.Points, opts)
	case collider.ConvexPolygon:
		return polygons(s, s.Points, opts)
	case collider.Polyline:
		pts := chainPoints(opts.vecs(s.Points), true)
		if len(pts) < 3 {
			return nil, backend.Degenerate(s, "loop needs three distinct points")
		}
		chain := box2d.MakeB2ChainShape()
		chain.CreateLoop(pts, len(pts))
		return []box2d.B2ShapeInterface{&chain}, nil
	case collider.Heightfield:
		pts := chainPoints(opts.vecs(s.Samples()), false)
		if len(pts) < 2 {
			return nil, backend.Degenerate(s, "chain needs two distinct samples")
		}
		chain := box2d.MakeB2ChainShape()
		chain.CreateChain(pts, len(pts))
		return []box2d.B2ShapeInterface{&chain}, nil
	default:
		return nil, backend.Degenerate(s, "unsupported shape")
	}
}

func polygons(s collider.Shape, pts []math.Vec2, opts Options) ([]box2d.B2ShapeInterface, error) {
	if len(pts) < 3 || !collider.IsConvex(pts) {
		return nil, backend.Degenerate(s, "not a convex outline")
	}
	verts := opts.vecs(pts)
	for i := range verts {
		if tooClose(verts[i], verts[(i+1)%len(verts)]) {
			return nil, backend.Degenerate(s, "vertices closer than the linear slop")
		}
	}

	var out []box2d.B2ShapeInterface
	for _, piece := range Fan(len(verts), box2d.B2_maxPolygonVertices) {
		sub := make([]box2d.B2Vec2, len(piece))
		outline := make([]math.Vec2, len(piece))
		for i, idx := range piece {
			sub[i] = verts[idx]
			outline[i] = pts[idx]
		}
		// A piece cut from a run of collinear vertices has no area.
		if !collider.IsConvex(outline) {
			return nil, backend.Degenerate(s, "flat polygon piece")
		}
		poly := box2d.MakeB2PolygonShape()
		poly.Set(sub, len(sub))
		out = append(out, &poly)
	}
	return out, nil
}

// Fan splits a convex outline of n vertices into index lists of at most limit
// vertices. Every piece starts at vertex 0 and consecutive pieces share an
// edge, so their union covers the outline exactly.
func Fan(n, limit int) [][]int {
	if n < 3 || limit < 3 {
		return nil
	}
	if n <= limit {
		piece := make([]int, n)
		for i := range piece {
			piece[i] = i
		}
		return [][]int{piece}
	}

	var pieces [][]int
	for k := 1; k < n-1; k += limit - 2 {
		end := min(k+limit-2, n-1)
		piece := []int{0}
		for i := k; i <= end; i++ {
			piece = append(piece, i)
		}
		pieces = append(pieces, piece)
	}
	return pieces
}

// chainPoints drops points Box2D would consider coincident, including a loop
// end that repeats its start.
func chainPoints(pts []box2d.B2Vec2, loop bool) []box2d.B2Vec2 {
	out := make([]box2d.B2Vec2, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && tooClose(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	if loop {
		for len(out) > 1 && tooClose(out[0], out[len(out)-1]) {
			out = out[:len(out)-1]
		}
	}
	return out
}

func tooClose(a, b box2d.B2Vec2) bool {
	return box2d.B2Vec2DistanceSquared(a, b) <= box2d.B2_linearSlop*box2d.B2_linearSlop
}

// Body creates a static body in world carrying one fixture per Box2D shape
// built from s.
func Body(world *box2d.B2World, s collider.Shape, opts Options) (*box2d.B2Body, error) {
	shapes, err := Shapes(s, opts)
	if err != nil {
		return nil, err
	}
	def := box2d.MakeB2BodyDef()
	def.Type = box2d.B2BodyType.B2_staticBody
	body := world.CreateBody(&def)
	for _, shape := range shapes {
		body.CreateFixture(shape, opts.Density)
	}
	return body, nil
}

// World builds a zero-gravity world with one static body per present shape.
// Nil slots are skipped; the returned bodies line up with the present shapes
// in input order.
func World(shapes []collider.Shape, opts Options) (*box2d.B2World, []*box2d.B2Body, error) {
	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	var bodies []*box2d.B2Body
	for _, s := range shapes {
		if s == nil {
			continue
		}
		body, err := Body(&world, s, opts)
		if err != nil {
			return nil, nil, err
		}
		bodies = append(bodies, body)
	}
	return &world, bodies, nil
}

package collider

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/collidergen/pkg/math"
)

// Synthesize builds a descriptor of the given kind from one point sequence.
// ok is false when the request is geometrically impossible: an empty
// sequence, a degenerate hull, or a heightfield with fewer than two columns.
//
// The returned shape never aliases points.
func Synthesize(points []math.Vec2, kind Kind) (Shape, bool) {
	switch kind {
	case KindPolyline:
		if len(points) == 0 {
			return nil, false
		}
		return Polyline{Points: slices.Clone(points)}, true
	case KindConvexPolygon:
		hull, ok := Hull(points)
		if !ok {
			return nil, false
		}
		return ConvexPolygon{Points: hull}, true
	case KindConvexHull:
		hull, ok := Hull(points)
		if !ok {
			return nil, false
		}
		return ConvexHull{Points: hull}, true
	case KindHeightfield:
		hf, ok := BuildHeightfield(points)
		if !ok {
			return nil, false
		}
		return hf, true
	default:
		return nil, false
	}
}

// SynthesizeAll builds one descriptor per loop, running up to workers loops
// in parallel (GOMAXPROCS when workers <= 0). The result has one slot per
// input loop in input order; absent results are nil. Every task writes only
// its own slot, so the output does not depend on scheduling.
func SynthesizeAll(loops [][]math.Vec2, kind Kind, workers int) []Shape {
	out := make([]Shape, len(loops))
	if len(loops) == 0 {
		return out
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, pts := range loops {
		g.Go(func() error {
			if s, ok := Synthesize(pts, kind); ok {
				out[i] = s
			}
			return nil
		})
	}
	_ = g.Wait() // tasks never fail
	return out
}

// Present counts the non-absent slots of shapes.
func Present(shapes []Shape) int {
	n := 0
	for _, s := range shapes {
		if s != nil {
			n++
		}
	}
	return n
}

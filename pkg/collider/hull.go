package collider

import (
	"slices"

	"github.com/Faultbox/collidergen/pkg/math"
)

// Hull computes the convex hull of points with Andrew's monotone chain.
//
// The result starts at the lexicographically smallest point and runs
// counter-clockwise in a y-up frame. Collinear boundary points are dropped,
// so every vertex is an input point. ok is false for fewer than three
// distinct points or when all points are collinear.
func Hull(points []math.Vec2) (hull []math.Vec2, ok bool) {
	if len(points) < 3 {
		return nil, false
	}

	pts := slices.Clone(points)
	slices.SortFunc(pts, func(a, b math.Vec2) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	pts = slices.Compact(pts)
	if len(pts) < 3 {
		return nil, false
	}

	out := make([]math.Vec2, 0, 2*len(pts))

	// Lower chain.
	for _, p := range pts {
		for len(out) >= 2 && math.Cross(out[len(out)-2], out[len(out)-1], p) <= 0 {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}

	// Upper chain.
	lower := len(out) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(out) >= lower && math.Cross(out[len(out)-2], out[len(out)-1], p) <= 0 {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}

	// The last point repeats the first.
	out = out[:len(out)-1]
	if len(out) < 3 {
		return nil, false
	}
	return out, true
}

// IsConvex reports whether the closed outline pts turns consistently in one
// direction. Collinear runs are allowed; fewer than three points or a fully
// collinear outline are not convex.
func IsConvex(pts []math.Vec2) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	var pos, neg int
	for i := range n {
		c := math.Cross(pts[i], pts[(i+1)%n], pts[(i+2)%n])
		switch {
		case c > 0:
			pos++
		case c < 0:
			neg++
		}
	}
	return (pos > 0) != (neg > 0)
}

// Package contour traces the boundaries of opaque regions in a mask and moves
// the resulting loops between the raw and translated coordinate frames.
package contour

import (
	"github.com/Faultbox/collidergen/pkg/mask"
	"github.com/Faultbox/collidergen/pkg/math"
)

// Single traces every boundary pixel of m into one merged loop. Use it for
// images holding a single shape; disjoint shapes are joined by jumps between
// their outlines. A fully transparent mask yields an empty loop.
func Single(m *mask.Mask) Loop {
	l := label(m)

	boundary := make([]bool, l.width*l.height)
	var order []int
	for y := range l.height {
		for x := range l.width {
			if l.isBoundary(x, y) {
				i := y*l.width + x
				boundary[i] = true
				order = append(order, i)
			}
		}
	}

	w := newWalker(l.width, l.height)
	return Loop{Points: w.walk(order, func(i int) bool { return boundary[i] })}
}

// Multi traces one loop per 8-connected component of m, in discovery order
// (top-to-bottom, left-to-right). A fully transparent mask yields an empty set.
func Multi(m *mask.Mask) RegionSet {
	l := label(m)
	if len(l.components) == 0 {
		return RegionSet{}
	}

	orders := make([][]int, len(l.components))
	for y := range l.height {
		for x := range l.width {
			if l.isBoundary(x, y) {
				i := y*l.width + x
				c := l.labels[i] - 1
				orders[c] = append(orders[c], i)
			}
		}
	}

	w := newWalker(l.width, l.height)
	regions := make(RegionSet, len(orders))
	for c, order := range orders {
		id := c + 1
		regions[c] = Loop{Points: w.walk(order, func(i int) bool {
			return l.labels[i] == id && l.isBoundary(i%l.width, i/l.width)
		})}
	}
	return regions
}

// walker orders a set of boundary pixels into a drawing sequence.
// Components are disjoint, so one visited grid serves every walk.
type walker struct {
	width, height int
	visited       []bool
}

func newWalker(width, height int) *walker {
	return &walker{width: width, height: height, visited: make([]bool, width*height)}
}

// walk visits every pixel of order exactly once, starting at order[0] (the
// first pixel in scan order). From each pixel it steps to an unvisited member
// neighbour, scanning clockwise from the pixel it came from, so the outline is
// followed clockwise on screen. When no neighbour is left it jumps to the
// nearest unvisited member, ties going to scan order.
func (w *walker) walk(order []int, member func(i int) bool) []math.Vec2 {
	if len(order) == 0 {
		return nil
	}

	pts := make([]math.Vec2, 0, len(order))
	remaining := len(order)
	cur := order[0]
	back := 4 // start as if arriving from the west

	for {
		w.visited[cur] = true
		remaining--
		cx, cy := cur%w.width, cur/w.width
		pts = append(pts, math.V2(float32(cx), float32(cy)))
		if remaining == 0 {
			break
		}

		moved := false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			nx, ny := cx+ndx[d], cy+ndy[d]
			if nx < 0 || ny < 0 || nx >= w.width || ny >= w.height {
				continue
			}
			ni := ny*w.width + nx
			if w.visited[ni] || !member(ni) {
				continue
			}
			cur = ni
			back = (d + 4) % 8
			moved = true
			break
		}

		if !moved {
			cur = w.nearest(order, cx, cy)
			back = 4
		}
	}
	return pts
}

// nearest returns the unvisited pixel of order closest to (x, y).
func (w *walker) nearest(order []int, x, y int) int {
	best, bestDist := -1, 0
	for _, i := range order {
		if w.visited[i] {
			continue
		}
		dx, dy := i%w.width-x, i/w.width-y
		if d := dx*dx + dy*dy; best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

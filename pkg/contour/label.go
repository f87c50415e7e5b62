package contour

import (
	"image"

	"github.com/Faultbox/collidergen/pkg/mask"
)

// 8-neighbourhood in clockwise screen order: E, SE, S, SW, W, NW, N, NE.
var (
	ndx = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// Component describes one 8-connected group of opaque pixels.
type Component struct {
	Label      int
	PixelCount int
	Bounds     image.Rectangle
}

// labelling holds the per-pixel component labels of a mask. Label 0 is
// transparent; components are numbered from 1 in scan order.
type labelling struct {
	width, height int
	labels        []int
	components    []Component
}

// Label finds the 8-connected components of m in discovery order.
func Label(m *mask.Mask) []Component {
	return label(m).components
}

func label(m *mask.Mask) *labelling {
	w, h := m.Width(), m.Height()
	l := &labelling{width: w, height: h, labels: make([]int, w*h)}

	var queue []int
	for y := range h {
		for x := range w {
			if !m.Opaque(x, y) || l.labels[y*w+x] != 0 {
				continue
			}

			id := len(l.components) + 1
			comp := Component{Label: id, Bounds: image.Rect(x, y, x+1, y+1)}
			l.labels[y*w+x] = id
			queue = append(queue[:0], y*w+x)

			for len(queue) > 0 {
				i := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				cx, cy := i%w, i/w
				comp.PixelCount++
				comp.Bounds = comp.Bounds.Union(image.Rect(cx, cy, cx+1, cy+1))

				for d := range 8 {
					nx, ny := cx+ndx[d], cy+ndy[d]
					if !m.Opaque(nx, ny) || l.labels[ny*w+nx] != 0 {
						continue
					}
					l.labels[ny*w+nx] = id
					queue = append(queue, ny*w+nx)
				}
			}
			l.components = append(l.components, comp)
		}
	}
	return l
}

// at returns the label at (x, y), 0 outside the grid.
func (l *labelling) at(x, y int) int {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0
	}
	return l.labels[y*l.width+x]
}

// isBoundary reports whether (x, y) is opaque and has a transparent or
// out-of-grid 4-neighbour.
func (l *labelling) isBoundary(x, y int) bool {
	if l.at(x, y) == 0 {
		return false
	}
	return l.at(x+1, y) == 0 || l.at(x-1, y) == 0 ||
		l.at(x, y+1) == 0 || l.at(x, y-1) == 0
}

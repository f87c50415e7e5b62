package collider

import (
	"github.com/Faultbox/collidergen/pkg/math"
)

// BuildHeightfield reduces points to one height per distinct x column.
//
// Columns are matched by exact x equality and keep the smallest y, which is
// the top of the sprite since image y grows downward. Heights are emitted in
// the order columns are first met in points; callers that need a left-to-right
// field must pass points in x order. XScale is the column count minus one.
//
// ok is false for fewer than two columns, which cannot span any width.
func BuildHeightfield(points []math.Vec2) (hf Heightfield, ok bool) {
	column := make(map[float32]int)
	var heights []float32
	for _, p := range points {
		i, seen := column[p.X]
		if !seen {
			column[p.X] = len(heights)
			heights = append(heights, p.Y)
			continue
		}
		if p.Y < heights[i] {
			heights[i] = p.Y
		}
	}

	if len(heights) < 2 {
		return Heightfield{}, false
	}
	return Heightfield{Heights: heights, XScale: float32(len(heights) - 1)}, true
}

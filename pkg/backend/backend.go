// Package backend holds what the physics adapters under it share.
//
// Each adapter package (resolvbackend, cpbackend, box2dbackend) converts
// collider descriptors into engine-native shapes through a type switch on
// collider.Shape. Descriptors that the engine cannot represent are reported
// with ErrDegenerate instead of being passed on to engine assertions.
package backend

import (
	"errors"
	"fmt"

	"github.com/Faultbox/collidergen/pkg/collider"
	"github.com/Faultbox/collidergen/pkg/math"
)

// ErrDegenerate is returned for a nil descriptor or one too small for the
// target engine to build.
var ErrDegenerate = errors.New("degenerate collider")

// Degenerate wraps ErrDegenerate with the kind of the rejected shape.
func Degenerate(s collider.Shape, reason string) error {
	if s == nil {
		return fmt.Errorf("%w: absent shape", ErrDegenerate)
	}
	return fmt.Errorf("%w: %s: %s", ErrDegenerate, s.Kind(), reason)
}

// Segments returns the edges of a polyline. Outlines with three or more
// points are closed back to their first point; a two-point polyline is a
// single open edge. Zero-length edges are skipped.
func Segments(points []math.Vec2) [][2]math.Vec2 {
	n := len(points)
	if n < 2 {
		return nil
	}
	edges := n - 1
	if n > 2 {
		edges = n
	}
	out := make([][2]math.Vec2, 0, edges)
	for i := 0; i < edges; i++ {
		a, b := points[i], points[(i+1)%n]
		if a == b {
			continue
		}
		out = append(out, [2]math.Vec2{a, b})
	}
	return out
}

// Floor returns the y one unit below the lowest heightfield sample. Image y
// grows downward, so that is the largest height plus one.
func Floor(h collider.Heightfield) float32 {
	var floor float32
	for i, y := range h.Heights {
		if i == 0 || y > floor {
			floor = y
		}
	}
	return floor + 1
}

// Package math provides the small vector toolkit shared by the mask, contour
// and collider packages.
package math

import (
	"fmt"
	"math"
)

// Vec2 is a 2D point or vector. Image-space values grow right and down.
type Vec2 struct {
	X, Y float32
}

// V2 returns the vector (x, y).
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// String returns the vector as "(x, y)".
func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// DistanceSquared returns the squared distance to another point.
func (v Vec2) DistanceSquared(other Vec2) float32 {
	d := v.Sub(other)
	return d.X*d.X + d.Y*d.Y
}

// Less orders points lexicographically: by X, then by Y.
func (v Vec2) Less(other Vec2) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	return v.Y < other.Y
}

// Cross returns the z component of (a-o) x (b-o), computed in float64 so
// that pixel coordinates of large images stay exact.
func Cross(o, a, b Vec2) float64 {
	ax, ay := float64(a.X)-float64(o.X), float64(a.Y)-float64(o.Y)
	bx, by := float64(b.X)-float64(o.X), float64(b.Y)-float64(o.Y)
	return ax*by - ay*bx
}

// Bounds returns the component-wise minimum and maximum of points.
// ok is false for an empty slice.
func Bounds(points []Vec2) (lo, hi Vec2, ok bool) {
	if len(points) == 0 {
		return Vec2{}, Vec2{}, false
	}
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi, true
}

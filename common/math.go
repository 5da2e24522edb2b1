package common

import "math"

// PixelsPerUnit converts between screen pixels and physics units. Everything
// outside the physics package speaks pixels.
const PixelsPerUnit = 32.0

// Vec is a 2D vector in pixel space.
type Vec struct {
	X float64
	Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{X: v.X * s, Y: v.Y * s} }
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }
func (v Vec) Near(o Vec, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Rect is an axis aligned rectangle. X/Y is the top-left corner.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func RectAround(center Vec, w, h float64) Rect {
	return Rect{X: center.X - w/2, Y: center.Y - h/2, W: w, H: h}
}

func (r Rect) Center() Vec { return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2} }
func (r Rect) Max() Vec { return Vec{X: r.X + r.W, Y: r.Y + r.H} }
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether r fully contains o.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Union returns the smallest rect covering both. An empty r is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func ToPhysics(v float64) float64 { return v / PixelsPerUnit }
func FromPhysics(v float64) float64 { return v * PixelsPerUnit }

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

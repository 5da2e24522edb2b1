package component

import (
	"math"

	"github.com/milk9111/physcene/common"
)

// Geometry is the closed set of collision shapes a BodyShape can carry.
// Coordinates are pixels, relative to the owning body for dynamic bodies and
// in world space for static map geometry.
type Geometry interface {
	Bounds() common.Rect
	isGeometry()
}

// Box is an axis aligned rectangle centred on Center.
type Box struct {
	Center common.Vec
	W      float64
	H      float64
}

type Circle struct {
	Center common.Vec
	Radius float64
}

// Polygon is a convex outline. Winding is normalised when the shape is built.
type Polygon struct {
	Points []common.Vec
}

// Capsule is a segment from A to B swept by Radius.
type Capsule struct {
	A      common.Vec
	B      common.Vec
	Radius float64
}

func (Box) isGeometry()     {}
func (Circle) isGeometry()  {}
func (Polygon) isGeometry() {}
func (Capsule) isGeometry() {}

func (g Box) Bounds() common.Rect {
	return common.RectAround(g.Center, g.W, g.H)
}

func (g Circle) Bounds() common.Rect {
	return common.RectAround(g.Center, g.Radius*2, g.Radius*2)
}

func (g Polygon) Bounds() common.Rect {
	if len(g.Points) == 0 {
		return common.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range g.Points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return common.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (g Capsule) Bounds() common.Rect {
	minX := math.Min(g.A.X, g.B.X) - g.Radius
	minY := math.Min(g.A.Y, g.B.Y) - g.Radius
	maxX := math.Max(g.A.X, g.B.X) + g.Radius
	maxY := math.Max(g.A.Y, g.B.Y) + g.Radius
	return common.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Translate returns g moved by d.
func Translate(g Geometry, d common.Vec) Geometry {
	switch s := g.(type) {
	case Box:
		s.Center = s.Center.Add(d)
		return s
	case Circle:
		s.Center = s.Center.Add(d)
		return s
	case Polygon:
		pts := make([]common.Vec, len(s.Points))
		for i, p := range s.Points {
			pts[i] = p.Add(d)
		}
		return Polygon{Points: pts}
	case Capsule:
		s.A = s.A.Add(d)
		s.B = s.B.Add(d)
		return s
	}
	return g
}

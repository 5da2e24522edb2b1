package tilemap

import (
	"math"
	"strings"

	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

const ellipseSegments = 12

// StaticDescriptors turns collision layers and objects into static geometry.
// Collision tiles are merged into as few boxes as possible, one descriptor per
// layer. Objects become one descriptor each and keep their id.
func (m *Map) StaticDescriptors() []component.StaticDescriptor {
	if m == nil {
		return nil
	}
	var out []component.StaticDescriptor
	for _, l := range m.Layers {
		if !l.Collision {
			continue
		}
		boxes := m.mergeTiles(l.Tiles)
		if len(boxes) == 0 {
			continue
		}
		desc := component.StaticDescriptor{Name: l.Name, Class: "tiles", Kind: component.StaticObstacle}
		if l.Sensor {
			desc.Kind = component.StaticSensor
		}
		for _, r := range boxes {
			desc.Shapes = append(desc.Shapes, component.Box{Center: r.Center(), W: r.W, H: r.H})
		}
		out = append(out, desc)
	}

	for _, o := range m.Objects {
		g, ok := o.Geometry()
		if !ok {
			continue
		}
		desc := component.StaticDescriptor{
			ObjectID:    component.MapObjectID(o.ID),
			HasObjectID: true,
			Name:        o.Name,
			Class:       o.Class,
			Kind:        component.StaticObstacle,
			Shapes:      []component.Geometry{g},
		}
		if o.IsSensor() {
			desc.Kind = component.StaticSensor
		}
		out = append(out, desc)
	}
	return out
}

// IsSensor reports whether the object only detects overlap.
func (o Object) IsSensor() bool {
	switch strings.ToLower(o.Class) {
	case "sensor", "trigger", "zone":
		return true
	}
	return false
}

// Geometry returns the collision shape of the object in world pixels. Point
// objects and degenerate shapes have none.
func (o Object) Geometry() (component.Geometry, bool) {
	switch strings.ToLower(o.Shape) {
	case "", "rect":
		if o.W <= 0 || o.H <= 0 {
			return nil, false
		}
		return component.Box{Center: common.Vec{X: o.X + o.W/2, Y: o.Y + o.H/2}, W: o.W, H: o.H}, true
	case "ellipse":
		if o.W <= 0 || o.H <= 0 {
			return nil, false
		}
		c := common.Vec{X: o.X + o.W/2, Y: o.Y + o.H/2}
		if o.W == o.H {
			return component.Circle{Center: c, Radius: o.W / 2}, true
		}
		pts := make([]common.Vec, 0, ellipseSegments)
		for i := 0; i < ellipseSegments; i++ {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			pts = append(pts, common.Vec{X: c.X + math.Cos(a)*o.W/2, Y: c.Y + math.Sin(a)*o.H/2})
		}
		return component.Polygon{Points: pts}, true
	case "polygon":
		if len(o.Points) < 3 {
			return nil, false
		}
		pts := make([]common.Vec, len(o.Points))
		for i, p := range o.Points {
			pts[i] = common.Vec{X: o.X + p.X, Y: o.Y + p.Y}
		}
		return component.Polygon{Points: pts}, true
	case "capsule":
		if o.W <= 0 || o.H <= 0 {
			return nil, false
		}
		if o.W >= o.H {
			r := o.H / 2
			cy := o.Y + r
			return component.Capsule{A: common.Vec{X: o.X + r, Y: cy}, B: common.Vec{X: o.X + o.W - r, Y: cy}, Radius: r}, true
		}
		r := o.W / 2
		cx := o.X + r
		return component.Capsule{A: common.Vec{X: cx, Y: o.Y + r}, B: common.Vec{X: cx, Y: o.Y + o.H - r}, Radius: r}, true
	}
	return nil, false
}

// mergeTiles greedily grows rectangles over non-zero tiles, first along the
// row and then down, so a solid region becomes few large boxes.
func (m *Map) mergeTiles(tiles []int) []common.Rect {
	if len(tiles) != m.Width*m.Height {
		return nil
	}
	tw, th := float64(m.TileWidth), float64(m.TileHeight)
	processed := make([]bool, len(tiles))
	var out []common.Rect
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx := y*m.Width + x
			if processed[idx] {
				continue
			}
			if tiles[idx] == 0 {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < m.Width {
				idx2 := y*m.Width + x + w
				if processed[idx2] || tiles[idx2] == 0 {
					break
				}
				w++
			}

			h := 1
		heightLoop:
			for y+h < m.Height {
				for xi := x; xi < x+w; xi++ {
					idx2 := (y+h)*m.Width + xi
					if processed[idx2] || tiles[idx2] == 0 {
						break heightLoop
					}
				}
				h++
			}

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*m.Width+xx] = true
				}
			}
			out = append(out, common.Rect{X: float64(x) * tw, Y: float64(y) * th, W: float64(w) * tw, H: float64(h) * th})
		}
	}
	return out
}

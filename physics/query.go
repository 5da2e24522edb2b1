package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

// queryEpsilon keeps exactly touching shapes from counting as overlap.
const queryEpsilon = 1e-6

// Footprint returns the world space bounding box of the body's solid shapes.
func (w *World) Footprint(owner component.BodyID) (common.Rect, bool) {
	if w == nil {
		return common.Rect{}, false
	}
	entry, ok := w.bodies.Get(owner)
	if !ok || entry.footprint.Empty() {
		return common.Rect{}, false
	}
	if entry.static {
		return entry.footprint, true
	}
	pos := fromCP(entry.body.Position())
	fp := entry.footprint
	fp.X += pos.X
	fp.Y += pos.Y
	return fp, true
}

// Obstructed reports whether a body occupying area would overlap any shape
// in the live space. Shapes of ignore never count. Sensors only count when
// sensorsBlock is set.
//
// The area is collided as a box against the space's shapes. Touching without
// penetration does not block.
func (w *World) Obstructed(area common.Rect, ignore component.BodyID, sensorsBlock bool) bool {
	if w == nil || area.Empty() {
		return false
	}
	lo := toCP(common.Vec{X: area.X, Y: area.Y})
	hi := toCP(area.Max())
	bb := cp.BB{L: lo.X + queryEpsilon, B: lo.Y + queryEpsilon, R: hi.X - queryEpsilon, T: hi.Y - queryEpsilon}
	if bb.L >= bb.R || bb.B >= bb.T {
		return false
	}
	if w.queryBody == nil {
		w.queryBody = cp.NewStaticBody()
	}
	box := cp.NewBox2(w.queryBody, bb, 0)

	hit := false
	w.space.ShapeQuery(box, func(shape *cp.Shape, points *cp.ContactPointSet) {
		if hit {
			return
		}
		if ref, ok := w.shapes[shape]; ok && ref.owner == ignore {
			return
		}
		if shape.Sensor() && !sensorsBlock {
			return
		}
		for i := 0; i < points.Count; i++ {
			if points.Points[i].Distance < -queryEpsilon {
				hit = true
				return
			}
		}
	})
	return hit
}

// BodiesAt returns the owners of registered shapes overlapping area, without
// duplicates, in the order the index reports them.
func (w *World) BodiesAt(area common.Rect) []component.BodyID {
	if w == nil || area.Empty() {
		return nil
	}
	lo := toCP(common.Vec{X: area.X, Y: area.Y})
	hi := toCP(area.Max())
	seen := map[component.BodyID]bool{}
	var out []component.BodyID
	w.space.BBQuery(cp.BB{L: lo.X, B: lo.Y, R: hi.X, T: hi.Y}, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, data interface{}) {
		ref, ok := w.shapes[shape]
		if !ok || seen[ref.owner] {
			return
		}
		seen[ref.owner] = true
		out = append(out, ref.owner)
	}, nil)
	return out
}

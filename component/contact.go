package component

import "github.com/milk9111/physcene/common"

// ContactSide identifies one participant of a contact. A side whose shape is
// not registered (world bounds, a shape mid-removal) has an empty ShapeKey
// and a zero Body.
type ContactSide struct {
	Body         BodyID
	ShapeKey     string
	MapObject    MapObjectID
	HasMapObject bool
}

func (s ContactSide) Resolved() bool { return s.ShapeKey != "" }

// Contact is a solid contact between two shapes.
type Contact struct {
	A ContactSide
	B ContactSide
}

// Involves reports whether either side belongs to body.
func (c Contact) Involves(body BodyID) bool {
	return c.A.Body == body || c.B.Body == body
}

// Other returns the side that is not body.
func (c Contact) Other(body BodyID) (ContactSide, bool) {
	switch body {
	case c.A.Body:
		return c.B, true
	case c.B.Body:
		return c.A, true
	}
	return ContactSide{}, false
}

// SensorContact is an overlap with a sensor shape.
type SensorContact struct {
	Visitor ContactSide
	Sensor  ContactSide
}

// ContactPoint is one point of a contact manifold, in pixels. Depth is the
// penetration and is positive while the shapes overlap.
type ContactPoint struct {
	A     common.Vec
	B     common.Vec
	Depth float64
}

// PreSolveContact carries the manifold of a contact about to be resolved.
// Normal points from A to B.
type PreSolveContact struct {
	Contact
	Normal common.Vec
	Points []ContactPoint
}

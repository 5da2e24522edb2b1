package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

// CreateDynamicBody creates the physics body for owner at position. While the
// world is locked the creation is queued and true is returned.
func (w *World) CreateDynamicBody(owner component.BodyID, position common.Vec, proto component.BodyPrototype) bool {
	if w == nil || !owner.Valid() {
		return false
	}
	if w.IsLocked() {
		w.Defer(Action{Kind: ActionCreateBody, Body: owner, Vec: position, Prototype: proto})
		return true
	}
	if w.bodies.Has(owner) {
		w.logger.Warn("body already exists", "body", owner)
		return false
	}

	var body *cp.Body
	switch proto.Kind {
	case component.BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		mass := proto.Mass
		if mass <= 0 {
			mass = 1
		}
		moment := math.Inf(1)
		if !proto.FixedRotation {
			moment = bodyMoment(mass, proto.Shapes)
		}
		body = cp.NewBody(mass, moment)
	}
	body.SetPosition(toCP(position))
	if proto.IgnoreGravity {
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
			cp.BodyUpdateVelocity(body, cp.Vector{}, damping, dt)
		})
	}
	w.space.AddBody(body)

	entry := &bodyEntry{owner: owner, body: body}
	for _, sp := range proto.Shapes {
		shape := newShape(body, sp.Geometry, cp.Vector{})
		if shape == nil {
			w.logger.Warn("shape skipped", "body", owner, "shape", sp.Key)
			continue
		}
		friction := sp.Friction
		if friction == 0 {
			friction = defaultFriction
		}
		shape.SetFriction(friction)
		shape.SetElasticity(sp.Elasticity)
		shape.SetSensor(sp.Sensor)
		if sp.PreSolve {
			shape.SetCollisionType(collisionTypePreSolve)
		} else {
			shape.SetCollisionType(collisionTypeShape)
		}
		w.space.AddShape(shape)
		w.shapes[shape] = shapeRef{owner: owner, key: sp.Key}
		entry.shapes = append(entry.shapes, shape)
		if !sp.Sensor {
			entry.footprint = entry.footprint.Union(sp.Geometry.Bounds())
		}
	}
	if entry.footprint.Empty() {
		for _, sp := range proto.Shapes {
			entry.footprint = entry.footprint.Union(sp.Geometry.Bounds())
		}
	}
	w.bodies.Set(owner, entry)
	w.logger.Debug("dynamic body created", "body", owner, "prototype", proto.Name, "kind", proto.Kind, "shapes", len(entry.shapes))
	return true
}

// CreateStaticBody adds the shapes of a map descriptor to the static body.
// Sensor descriptors only ever produce sensor contacts.
func (w *World) CreateStaticBody(owner component.BodyID, desc component.StaticDescriptor) bool {
	if w == nil || !owner.Valid() {
		return false
	}
	if w.IsLocked() {
		w.Defer(Action{Kind: ActionCreateStatic, Body: owner, Static: desc})
		return true
	}
	if w.bodies.Has(owner) {
		w.logger.Warn("body already exists", "body", owner)
		return false
	}

	entry := &bodyEntry{owner: owner, body: w.space.StaticBody, static: true}
	sensor := desc.Kind == component.StaticSensor
	for i, g := range desc.Shapes {
		shape := newShape(w.space.StaticBody, g, cp.Vector{})
		if shape == nil {
			w.logger.Warn("static shape skipped", "object", desc.ObjectID, "index", i)
			continue
		}
		shape.SetFriction(defaultFriction)
		shape.SetSensor(sensor)
		shape.SetCollisionType(collisionTypeShape)
		w.space.AddShape(shape)
		w.shapes[shape] = shapeRef{
			owner:        owner,
			key:          desc.ShapeKey(i),
			mapObject:    desc.ObjectID,
			hasMapObject: desc.HasObjectID,
		}
		entry.shapes = append(entry.shapes, shape)
		entry.footprint = entry.footprint.Union(g.Bounds())
	}
	if len(entry.shapes) == 0 {
		return false
	}
	w.bodies.Set(owner, entry)
	return true
}

// DestroyBody removes the body and its shapes. Shapes leave the space before
// they leave the registry so separation callbacks still resolve them.
func (w *World) DestroyBody(owner component.BodyID) bool {
	if w == nil {
		return false
	}
	if w.IsLocked() {
		if !w.bodies.Has(owner) && !w.pendingCreate(owner) {
			return false
		}
		w.Defer(Action{Kind: ActionDestroyBody, Body: owner})
		return true
	}
	entry, ok := w.bodies.Get(owner)
	if !ok {
		return false
	}
	for _, shape := range entry.shapes {
		w.space.RemoveShape(shape)
	}
	for _, shape := range entry.shapes {
		delete(w.shapes, shape)
	}
	if !entry.static {
		w.space.RemoveBody(entry.body)
	}
	w.bodies.Remove(owner)
	return true
}

// HasBody reports whether owner has a live physics body.
func (w *World) HasBody(owner component.BodyID) bool {
	return w != nil && w.bodies.Has(owner)
}

// IsStatic reports whether owner is map geometry.
func (w *World) IsStatic(owner component.BodyID) bool {
	if w == nil {
		return false
	}
	entry, ok := w.bodies.Get(owner)
	return ok && entry.static
}

func (w *World) pendingCreate(owner component.BodyID) bool {
	for _, a := range w.actions.items {
		if a.Body == owner && (a.Kind == ActionCreateBody || a.Kind == ActionCreateStatic) {
			return true
		}
	}
	return false
}

func (w *World) dynamicBody(owner component.BodyID) (*cp.Body, bool) {
	entry, ok := w.bodies.Get(owner)
	if !ok || entry.static || entry.body == nil {
		return nil, false
	}
	return entry.body, true
}

// Position returns the body position in pixels. Static bodies report the
// centre of their geometry. Safe while locked.
func (w *World) Position(owner component.BodyID) (common.Vec, bool) {
	if w == nil {
		return common.Vec{}, false
	}
	entry, ok := w.bodies.Get(owner)
	if !ok {
		return common.Vec{}, false
	}
	if entry.static {
		return entry.footprint.Center(), true
	}
	return fromCP(entry.body.Position()), true
}

// Angle returns the body rotation in radians.
func (w *World) Angle(owner component.BodyID) (float64, bool) {
	if w == nil {
		return 0, false
	}
	body, ok := w.dynamicBody(owner)
	if !ok {
		return 0, false
	}
	return body.Angle(), true
}

// SetPosition teleports a dynamic or kinematic body.
func (w *World) SetPosition(owner component.BodyID, p common.Vec) bool {
	if w == nil {
		return false
	}
	if w.IsLocked() {
		return w.deferMutation(ActionSetPosition, owner, p)
	}
	body, ok := w.dynamicBody(owner)
	if !ok {
		return false
	}
	body.SetPosition(toCP(p))
	body.EachShape(func(s *cp.Shape) { s.CacheBB() })
	return true
}

func (w *World) Velocity(owner component.BodyID) (common.Vec, bool) {
	if w == nil {
		return common.Vec{}, false
	}
	body, ok := w.dynamicBody(owner)
	if !ok {
		return common.Vec{}, false
	}
	return fromCP(body.Velocity()), true
}

// SetVelocity sets the linear velocity in pixels per second.
func (w *World) SetVelocity(owner component.BodyID, v common.Vec) bool {
	if w == nil {
		return false
	}
	if w.IsLocked() {
		return w.deferMutation(ActionSetVelocity, owner, v)
	}
	body, ok := w.dynamicBody(owner)
	if !ok {
		return false
	}
	cv := toCP(v)
	body.SetVelocity(cv.X, cv.Y)
	return true
}

// ApplyForce applies a force at the body centre until the next step ends.
func (w *World) ApplyForce(owner component.BodyID, force common.Vec) bool {
	if w == nil {
		return false
	}
	if w.IsLocked() {
		return w.deferMutation(ActionApplyForce, owner, force)
	}
	body, ok := w.dynamicBody(owner)
	if !ok {
		return false
	}
	body.ApplyForceAtWorldPoint(toCP(force), body.Position())
	return true
}

// ApplyImpulse applies an instantaneous impulse at the body centre.
func (w *World) ApplyImpulse(owner component.BodyID, impulse common.Vec) bool {
	if w == nil {
		return false
	}
	if w.IsLocked() {
		return w.deferMutation(ActionApplyImpulse, owner, impulse)
	}
	body, ok := w.dynamicBody(owner)
	if !ok {
		return false
	}
	body.ApplyImpulseAtWorldPoint(toCP(impulse), body.Position())
	return true
}

func (w *World) deferMutation(kind ActionKind, owner component.BodyID, v common.Vec) bool {
	if !w.bodies.Has(owner) && !w.pendingCreate(owner) {
		return false
	}
	w.Defer(Action{Kind: kind, Body: owner, Vec: v})
	return true
}

// newShape builds a Chipmunk shape from pixel geometry, offset in physics
// units. Returns nil for degenerate geometry.
func newShape(body *cp.Body, g component.Geometry, offset cp.Vector) *cp.Shape {
	switch s := g.(type) {
	case component.Box:
		if s.W <= 0 || s.H <= 0 {
			return nil
		}
		c := toCP(s.Center).Add(offset)
		hw, hh := common.ToPhysics(s.W)/2, common.ToPhysics(s.H)/2
		return cp.NewBox2(body, cp.BB{L: c.X - hw, B: c.Y - hh, R: c.X + hw, T: c.Y + hh}, 0)
	case component.Circle:
		if s.Radius <= 0 {
			return nil
		}
		return cp.NewCircle(body, common.ToPhysics(s.Radius), toCP(s.Center).Add(offset))
	case component.Polygon:
		hull := convexHull(s.Points)
		if len(hull) < 3 {
			return nil
		}
		verts := make([]cp.Vector, len(hull))
		for i, p := range hull {
			verts[i] = toCP(p).Add(offset)
		}
		return cp.NewPolyShapeRaw(body, len(verts), verts, 0)
	case component.Capsule:
		return cp.NewSegment(body, toCP(s.A).Add(offset), toCP(s.B).Add(offset), common.ToPhysics(s.Radius))
	}
	return nil
}

// bodyMoment sums the moments of the prototype shapes, splitting the mass
// evenly between them.
func bodyMoment(mass float64, shapes []component.ShapePrototype) float64 {
	if len(shapes) == 0 {
		return cp.MomentForCircle(mass, 0, 1, cp.Vector{})
	}
	m := mass / float64(len(shapes))
	total := 0.0
	for _, sp := range shapes {
		switch s := sp.Geometry.(type) {
		case component.Box:
			c := toCP(s.Center)
			total += cp.MomentForBox(m, common.ToPhysics(s.W), common.ToPhysics(s.H)) + m*c.LengthSq()
		case component.Circle:
			total += cp.MomentForCircle(m, 0, common.ToPhysics(s.Radius), toCP(s.Center))
		case component.Polygon:
			hull := convexHull(s.Points)
			if len(hull) < 3 {
				continue
			}
			verts := make([]cp.Vector, len(hull))
			for i, p := range hull {
				verts[i] = toCP(p)
			}
			total += cp.MomentForPoly(m, len(verts), verts, cp.Vector{}, 0)
		case component.Capsule:
			total += cp.MomentForSegment(m, toCP(s.A), toCP(s.B), common.ToPhysics(s.Radius))
		}
	}
	if total <= 0 || math.IsNaN(total) {
		return cp.MomentForCircle(mass, 0, 1, cp.Vector{})
	}
	return total
}

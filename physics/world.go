package physics

import (
	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/registry"
)

const (
	collisionTypeShape cp.CollisionType = iota + 1
	collisionTypePreSolve
)

const (
	defaultIterations = 10
	defaultFriction   = 0.8
)

// Options configures a World. Gravity is in pixels per second squared.
type Options struct {
	Gravity common.Vec
	Damping float64
	Logger  *log.Logger
}

// World owns the Chipmunk space. All coordinates crossing its API are pixels;
// the space itself runs in physics units (see common.PixelsPerUnit).
//
// The world is locked while it steps and while contact callbacks run. Every
// mutator called while locked is queued and replayed after the step.
type World struct {
	space  *cp.Space
	logger *log.Logger

	locked  int
	actions actionQueue
	custom  func(Action)

	bodies registry.SparseSet[component.BodyID, *bodyEntry]
	shapes map[*cp.Shape]shapeRef

	observers []*Subscription

	bounds      common.Rect
	hasBounds   bool
	boundShapes []*cp.Shape

	// queryBody anchors the throwaway shapes built by Obstructed. It is
	// never added to the space.
	queryBody *cp.Body
}

// bodyEntry is the physics side of a Body.
type bodyEntry struct {
	owner  component.BodyID
	body   *cp.Body
	shapes []*cp.Shape
	static bool
	// footprint is the union of the solid shapes, relative to the body
	// position for dynamic bodies and in world pixels for static ones.
	footprint common.Rect
}

// shapeRef maps a Chipmunk shape back to the domain shape that owns it.
type shapeRef struct {
	owner        component.BodyID
	key          string
	mapObject    component.MapObjectID
	hasMapObject bool
}

func (r shapeRef) side() component.ContactSide {
	return component.ContactSide{
		Body:         r.owner,
		ShapeKey:     r.key,
		MapObject:    r.mapObject,
		HasMapObject: r.hasMapObject,
	}
}

func NewWorld(opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithPrefix("physics")
	}

	space := cp.NewSpace()
	space.Iterations = defaultIterations
	space.SetGravity(toCP(opts.Gravity))
	if opts.Damping > 0 {
		space.SetDamping(opts.Damping)
	}

	w := &World{
		space:  space,
		logger: logger,
		shapes: make(map[*cp.Shape]shapeRef),
	}
	w.setupHandlers()
	return w
}

// Step advances the simulation by dt seconds and then runs the actions queued
// while the world was locked. Chipmunk has a single solver iteration count, so
// the larger of the two iteration arguments is used.
func (w *World) Step(dt float64, velocityIterations, positionIterations int) {
	if w == nil || w.space == nil {
		return
	}
	if iters := max(velocityIterations, positionIterations); iters > 0 {
		w.space.Iterations = uint(iters)
	}
	if dt > 0 {
		w.lock()
		w.space.Step(dt)
		w.unlock()
	}
	w.flushActions()
}

// IsLocked reports whether the world is stepping or dispatching contacts.
func (w *World) IsLocked() bool {
	return w != nil && w.locked > 0
}

func (w *World) lock() { w.locked++ }

func (w *World) unlock() {
	if w.locked > 0 {
		w.locked--
	}
}

// SetGravity changes gravity, in pixels per second squared.
func (w *World) SetGravity(g common.Vec) {
	if w == nil {
		return
	}
	w.space.SetGravity(toCP(g))
}

// SetBounds walls the world in with four segments around r. Calling it again
// replaces the previous walls; an empty r removes them.
func (w *World) SetBounds(r common.Rect) {
	if w == nil {
		return
	}
	if w.IsLocked() {
		w.logger.Warn("SetBounds ignored while locked")
		return
	}
	for _, shape := range w.boundShapes {
		w.space.RemoveShape(shape)
	}
	w.boundShapes = nil
	w.bounds = r
	w.hasBounds = !r.Empty()
	if !w.hasBounds {
		return
	}

	maxX, maxY := r.X+r.W, r.Y+r.H
	segments := []struct {
		a common.Vec
		b common.Vec
	}{
		{a: common.Vec{X: r.X, Y: r.Y}, b: common.Vec{X: maxX, Y: r.Y}},   // top
		{a: common.Vec{X: r.X, Y: maxY}, b: common.Vec{X: maxX, Y: maxY}}, // bottom
		{a: common.Vec{X: r.X, Y: r.Y}, b: common.Vec{X: r.X, Y: maxY}},   // left
		{a: common.Vec{X: maxX, Y: r.Y}, b: common.Vec{X: maxX, Y: maxY}}, // right
	}
	for _, seg := range segments {
		shape := cp.NewSegment(w.space.StaticBody, toCP(seg.a), toCP(seg.b), 0)
		shape.SetFriction(defaultFriction)
		shape.SetCollisionType(collisionTypeShape)
		w.space.AddShape(shape)
		w.boundShapes = append(w.boundShapes, shape)
	}
}

// Bounds returns the rect set by SetBounds.
func (w *World) Bounds() (common.Rect, bool) {
	if w == nil {
		return common.Rect{}, false
	}
	return w.bounds, w.hasBounds
}

// BodyCount returns the number of bodies with a physics handle.
func (w *World) BodyCount() int {
	if w == nil {
		return 0
	}
	return w.bodies.Len()
}

func toCP(v common.Vec) cp.Vector {
	return cp.Vector{X: common.ToPhysics(v.X), Y: common.ToPhysics(v.Y)}
}

func fromCP(v cp.Vector) common.Vec {
	return common.Vec{X: common.FromPhysics(v.X), Y: common.FromPhysics(v.Y)}
}

package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

// ContactObserver receives contact notifications. Calls happen while the
// world is locked; mutate the world through Defer or the world's own
// mutators, which queue automatically.
type ContactObserver interface {
	BeginContact(component.Contact)
	EndContact(component.Contact)
	BeginSensorContact(component.SensorContact)
	EndSensorContact(component.SensorContact)
	// PreSolveContact is only called for pairs where a shape opted in.
	// Returning false skips collision response for this step.
	PreSolveContact(component.PreSolveContact) bool
}

// ContactFuncs adapts plain functions to ContactObserver. Nil fields are
// ignored; a nil OnPreSolve accepts the contact.
type ContactFuncs struct {
	OnBegin       func(component.Contact)
	OnEnd         func(component.Contact)
	OnBeginSensor func(component.SensorContact)
	OnEndSensor   func(component.SensorContact)
	OnPreSolve    func(component.PreSolveContact) bool
}

func (f ContactFuncs) BeginContact(c component.Contact) {
	if f.OnBegin != nil {
		f.OnBegin(c)
	}
}

func (f ContactFuncs) EndContact(c component.Contact) {
	if f.OnEnd != nil {
		f.OnEnd(c)
	}
}

func (f ContactFuncs) BeginSensorContact(c component.SensorContact) {
	if f.OnBeginSensor != nil {
		f.OnBeginSensor(c)
	}
}

func (f ContactFuncs) EndSensorContact(c component.SensorContact) {
	if f.OnEndSensor != nil {
		f.OnEndSensor(c)
	}
}

func (f ContactFuncs) PreSolveContact(c component.PreSolveContact) bool {
	if f.OnPreSolve == nil {
		return true
	}
	return f.OnPreSolve(c)
}

// Subscription is a registered observer. Close deregisters it.
type Subscription struct {
	world    *World
	observer ContactObserver
	closed   bool
}

// Close stops notifications. It is safe to call more than once and from
// inside a notification.
func (s *Subscription) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	w := s.world
	if w == nil {
		return
	}
	kept := make([]*Subscription, 0, len(w.observers))
	for _, o := range w.observers {
		if o != s {
			kept = append(kept, o)
		}
	}
	w.observers = kept
}

// Subscribe registers an observer. Observers are notified in registration
// order.
func (w *World) Subscribe(o ContactObserver) *Subscription {
	if w == nil || o == nil {
		return nil
	}
	sub := &Subscription{world: w, observer: o}
	w.observers = append(w.observers, sub)
	return sub
}

func (w *World) setupHandlers() {
	pairs := []struct {
		a, b     cp.CollisionType
		preSolve bool
	}{
		{a: collisionTypeShape, b: collisionTypeShape},
		{a: collisionTypeShape, b: collisionTypePreSolve, preSolve: true},
		{a: collisionTypePreSolve, b: collisionTypePreSolve, preSolve: true},
	}
	for _, p := range pairs {
		h := w.space.NewCollisionHandler(p.a, p.b)
		h.UserData = w
		h.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			world, ok := userData.(*World)
			if !ok || world == nil {
				return true
			}
			world.dispatch(arb, true)
			return true
		}
		h.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
			world, ok := userData.(*World)
			if !ok || world == nil {
				return
			}
			world.dispatch(arb, false)
		}
		if p.preSolve {
			h.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
				world, ok := userData.(*World)
				if !ok || world == nil {
					return true
				}
				return world.preSolve(arb)
			}
		}
	}
}

// resolve looks a shape up in the registry. Unknown shapes produce an empty
// side instead of failing.
func (w *World) resolve(shape *cp.Shape) component.ContactSide {
	ref, ok := w.shapes[shape]
	if !ok {
		return component.ContactSide{}
	}
	return ref.side()
}

func (w *World) dispatch(arb *cp.Arbiter, begin bool) {
	a, b := arb.Shapes()
	sideA, sideB := w.resolve(a), w.resolve(b)

	w.lock()
	defer w.unlock()

	observers := append([]*Subscription(nil), w.observers...)
	if a.Sensor() || b.Sensor() {
		var events []component.SensorContact
		if a.Sensor() {
			events = append(events, component.SensorContact{Visitor: sideB, Sensor: sideA})
		}
		if b.Sensor() {
			events = append(events, component.SensorContact{Visitor: sideA, Sensor: sideB})
		}
		for _, ev := range events {
			for _, sub := range observers {
				if sub.closed {
					continue
				}
				if begin {
					sub.observer.BeginSensorContact(ev)
				} else {
					sub.observer.EndSensorContact(ev)
				}
			}
		}
		return
	}

	c := component.Contact{A: sideA, B: sideB}
	for _, sub := range observers {
		if sub.closed {
			continue
		}
		if begin {
			sub.observer.BeginContact(c)
		} else {
			sub.observer.EndContact(c)
		}
	}
}

// preSolve asks every observer about a solid contact. All must accept it.
func (w *World) preSolve(arb *cp.Arbiter) bool {
	a, b := arb.Shapes()
	if a.Sensor() || b.Sensor() {
		return true
	}

	rec := component.PreSolveContact{
		Contact: component.Contact{A: w.resolve(a), B: w.resolve(b)},
		Normal:  common.Vec{X: arb.Normal().X, Y: arb.Normal().Y},
	}
	set := arb.ContactPointSet()
	for i := 0; i < set.Count; i++ {
		rec.Points = append(rec.Points, component.ContactPoint{
			A:     fromCP(set.Points[i].PointA),
			B:     fromCP(set.Points[i].PointB),
			Depth: -common.FromPhysics(set.Points[i].Distance),
		})
	}

	w.lock()
	defer w.unlock()

	accept := true
	for _, sub := range append([]*Subscription(nil), w.observers...) {
		if sub.closed {
			continue
		}
		if !sub.observer.PreSolveContact(rec) {
			accept = false
		}
	}
	return accept
}

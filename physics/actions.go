package physics

import (
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

// ActionKind identifies a deferred world mutation.
type ActionKind int

const (
	ActionCreateBody ActionKind = iota + 1
	ActionCreateStatic
	ActionDestroyBody
	ActionSetPosition
	ActionSetVelocity
	ActionApplyForce
	ActionApplyImpulse
	// ActionCustom is handed to the handler set with SetActionHandler.
	ActionCustom
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreateBody:
		return "create_body"
	case ActionCreateStatic:
		return "create_static"
	case ActionDestroyBody:
		return "destroy_body"
	case ActionSetPosition:
		return "set_position"
	case ActionSetVelocity:
		return "set_velocity"
	case ActionApplyForce:
		return "apply_force"
	case ActionApplyImpulse:
		return "apply_impulse"
	case ActionCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Action is a queued world mutation. Which fields matter depends on Kind.
type Action struct {
	Kind      ActionKind
	Body      component.BodyID
	Vec       common.Vec
	Prototype component.BodyPrototype
	Static    component.StaticDescriptor
	Tag       string
}

// actionQueue is a FIFO of pending actions.
type actionQueue struct {
	items []Action
}

func (q *actionQueue) push(a Action) {
	q.items = append(q.items, a)
}

// drain returns all actions and clears the queue. Actions pushed while the
// caller works through the result land in the next drain.
func (q *actionQueue) drain() []Action {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Defer queues an action to run after the current or next step, in
// submission order.
func (w *World) Defer(a Action) {
	if w == nil {
		return
	}
	w.actions.push(a)
}

// Pending returns a copy of the queued actions.
func (w *World) Pending() []Action {
	if w == nil {
		return nil
	}
	return append([]Action(nil), w.actions.items...)
}

// SetActionHandler sets the receiver of ActionCustom actions.
func (w *World) SetActionHandler(fn func(Action)) {
	if w == nil {
		return
	}
	w.custom = fn
}

// Flush runs queued actions now. It is a no-op while locked.
func (w *World) Flush() {
	if w == nil || w.IsLocked() {
		return
	}
	w.flushActions()
}

func (w *World) flushActions() {
	for _, a := range w.actions.drain() {
		w.apply(a)
	}
}

func (w *World) apply(a Action) {
	switch a.Kind {
	case ActionCreateBody:
		w.CreateDynamicBody(a.Body, a.Vec, a.Prototype)
	case ActionCreateStatic:
		w.CreateStaticBody(a.Body, a.Static)
	case ActionDestroyBody:
		w.DestroyBody(a.Body)
	case ActionSetPosition:
		w.SetPosition(a.Body, a.Vec)
	case ActionSetVelocity:
		w.SetVelocity(a.Body, a.Vec)
	case ActionApplyForce:
		w.ApplyForce(a.Body, a.Vec)
	case ActionApplyImpulse:
		w.ApplyImpulse(a.Body, a.Vec)
	case ActionCustom:
		if w.custom != nil {
			w.custom(a)
		}
	default:
		w.logger.Warn("unknown action", "kind", a.Kind)
	}
}

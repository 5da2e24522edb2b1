package script

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/physics"
)

type binding func(args ...tengo.Object) (tengo.Object, error)

// buildEngine exposes the scene to scripts. Every function returns a bool or
// undefined on bad input instead of raising.
func (rt *Runtime) buildEngine() *tengo.ImmutableMap {
	sc := rt.scene
	values := map[string]tengo.Object{}
	add := func(name string, fn binding) {
		values[name] = &tengo.UserFunction{Name: name, Value: tengo.CallableFunc(fn)}
	}

	add("create_body", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.UndefinedValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		pos, ok := vecArgs(args[1], args[2])
		if name == "" || !ok {
			return tengo.UndefinedValue, nil
		}
		proto, ok := rt.prototype(name)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		id := sc.CreateBody(pos, proto)
		if !id.Valid() {
			return tengo.UndefinedValue, nil
		}
		return idObject(id), nil
	})

	add("destroy_body", func(args ...tengo.Object) (tengo.Object, error) {
		id, ok := idArg(args, 0)
		return boolObject(ok && sc.DestroyBody(id)), nil
	})

	add("set_layer", func(args ...tengo.Object) (tengo.Object, error) {
		id, ok := idArg(args, 0)
		if !ok || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		return boolObject(sc.SetBodyLayer(id, objectAsString(args[1]))), nil
	})

	add("set_graphic", func(args ...tengo.Object) (tengo.Object, error) {
		id, ok := idArg(args, 0)
		if !ok || len(args) < 3 {
			return tengo.FalseValue, nil
		}
		return boolObject(sc.SetBodyShapeCurrentGraphic(id, objectAsString(args[1]), objectAsString(args[2]))), nil
	})

	add("flip_graphic", func(args ...tengo.Object) (tengo.Object, error) {
		id, ok := idArg(args, 0)
		if !ok || len(args) < 5 {
			return tengo.FalseValue, nil
		}
		h := !args[3].IsFalsy()
		v := !args[4].IsFalsy()
		return boolObject(sc.FlipBodyShapeGraphic(id, objectAsString(args[1]), objectAsString(args[2]), h, v)), nil
	})

	vecSetter := func(fn func(component.BodyID, common.Vec) bool) binding {
		return func(args ...tengo.Object) (tengo.Object, error) {
			id, ok := idArg(args, 0)
			if !ok || len(args) < 3 {
				return tengo.FalseValue, nil
			}
			v, ok := vecArgs(args[1], args[2])
			if !ok {
				return tengo.FalseValue, nil
			}
			return boolObject(fn(id, v)), nil
		}
	}
	add("apply_force", vecSetter(sc.ApplyForce))
	add("apply_impulse", vecSetter(sc.ApplyImpulse))
	add("set_position", vecSetter(sc.SetBodyPosition))
	add("set_velocity", vecSetter(sc.SetBodyVelocity))

	vecGetter := func(fn func(component.BodyID) (common.Vec, bool)) binding {
		return func(args ...tengo.Object) (tengo.Object, error) {
			id, ok := idArg(args, 0)
			if !ok {
				return tengo.UndefinedValue, nil
			}
			v, ok := fn(id)
			if !ok {
				return tengo.UndefinedValue, nil
			}
			return vecObject(v), nil
		}
	}
	add("get_position", vecGetter(sc.BodyPosition))
	add("get_velocity", vecGetter(sc.BodyVelocity))

	add("find_path", func(args ...tengo.Object) (tengo.Object, error) {
		id, ok := idArg(args, 0)
		if !ok || len(args) < 3 {
			return tengo.UndefinedValue, nil
		}
		dest, ok := vecArgs(args[1], args[2])
		if !ok {
			return tengo.UndefinedValue, nil
		}
		diagonal := len(args) > 3 && !args[3].IsFalsy()
		avoidSensors := len(args) > 4 && !args[4].IsFalsy()
		path, ok := sc.FindPath(id, dest, diagonal, avoidSensors)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		out := make([]tengo.Object, 0, len(path))
		for _, p := range path {
			out = append(out, vecObject(p))
		}
		return &tengo.Array{Value: out}, nil
	})

	add("load_map", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		path := strings.TrimSpace(objectAsString(args[0]))
		if path == "" {
			return tengo.FalseValue, nil
		}
		if err := sc.LoadTileMap(path); err != nil {
			rt.logger.Warn("load_map failed", "map", path, "err", err)
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	})

	add("follow", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		if _, isUndefined := args[0].(*tengo.Undefined); isUndefined {
			return boolObject(sc.Follow(0)), nil
		}
		id, ok := idArg(args, 0)
		if !ok {
			return tengo.FalseValue, nil
		}
		return boolObject(sc.Follow(id)), nil
	})

	add("static_body", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		obj, ok := tengo.ToInt(args[0])
		if !ok {
			return tengo.UndefinedValue, nil
		}
		id, ok := sc.StaticBodyForMapObject(component.MapObjectID(obj))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return idObject(id), nil
	})

	add("defer", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		tag := strings.TrimSpace(objectAsString(args[0]))
		if tag == "" {
			return tengo.FalseValue, nil
		}
		id, _ := idArg(args, 1)
		sc.Defer(tag, id)
		return tengo.TrueValue, nil
	})

	add("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		rt.logger.Info(strings.Join(parts, " "), "script", rt.path)
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

// prototype loads and caches a prefab by name.
func (rt *Runtime) prototype(name string) (component.BodyPrototype, bool) {
	if p, ok := rt.protos[name]; ok {
		return p, true
	}
	p, err := rt.loader(name)
	if err != nil {
		rt.logger.Warn("prefab failed", "prefab", name, "err", err)
		return component.BodyPrototype{}, false
	}
	rt.protos[name] = p
	return p, true
}

func contactEvent(kind string, c component.Contact) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"type": &tengo.String{Value: kind},
		"a":    sideObject(c.A),
		"b":    sideObject(c.B),
	}}
}

func sensorEvent(kind string, c component.SensorContact) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"type":    &tengo.String{Value: kind},
		"visitor": sideObject(c.Visitor),
		"sensor":  sideObject(c.Sensor),
	}}
}

func deferredEvent(a physics.Action) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"type": &tengo.String{Value: "deferred"},
		"tag":  &tengo.String{Value: a.Tag},
		"body": idObject(a.Body),
	}}
}

func sideObject(s component.ContactSide) tengo.Object {
	side := map[string]tengo.Object{
		"body":       idObject(s.Body),
		"shape":      &tengo.String{Value: s.ShapeKey},
		"has_object": boolObject(s.HasMapObject),
	}
	if s.HasMapObject {
		side["object"] = &tengo.Int{Value: int64(s.MapObject)}
	} else {
		side["object"] = tengo.UndefinedValue
	}
	return &tengo.ImmutableMap{Value: side}
}

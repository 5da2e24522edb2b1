package script

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// objectToAny converts a script value into plain Go values.
func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}

// idArg reads a body id. Ids are positive ints; floats are truncated.
func idArg(args []tengo.Object, i int) (component.BodyID, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch args[i].(type) {
	case *tengo.Int, *tengo.Float:
	default:
		return 0, false
	}
	n, ok := tengo.ToInt64(args[i])
	if !ok || n <= 0 {
		return 0, false
	}
	return component.BodyID(n), true
}

func numberArg(o tengo.Object) (float64, bool) {
	switch v := o.(type) {
	case *tengo.Int:
		return float64(v.Value), true
	case *tengo.Float:
		return v.Value, true
	}
	return 0, false
}

func vecArgs(x, y tengo.Object) (common.Vec, bool) {
	fx, ok := numberArg(x)
	if !ok {
		return common.Vec{}, false
	}
	fy, ok := numberArg(y)
	if !ok {
		return common.Vec{}, false
	}
	return common.Vec{X: fx, Y: fy}, true
}

func vecObject(v common.Vec) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

func idObject(id component.BodyID) tengo.Object {
	return &tengo.Int{Value: int64(id)}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

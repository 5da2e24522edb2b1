package component

import (
	"strconv"

	"github.com/milk9111/physcene/common"
)

type BodyKind int

const (
	BodyDynamic BodyKind = iota
	BodyKinematic
)

func (k BodyKind) String() string {
	switch k {
	case BodyKinematic:
		return "kinematic"
	default:
		return "dynamic"
	}
}

// ShapePrototype describes one shape of a body prototype.
type ShapePrototype struct {
	Key        string
	Geometry   Geometry
	Sensor     bool
	PreSolve   bool
	Friction   float64
	Elasticity float64
	Graphics   map[string]GraphicsDef
	Current    string
}

// BodyPrototype is the template CreateBody instantiates.
type BodyPrototype struct {
	Name          string
	Kind          BodyKind
	Mass          float64
	FixedRotation bool
	IgnoreGravity bool
	Layer         string
	Shapes        []ShapePrototype
}

// Instantiate builds the domain side of a body from the prototype.
func (p BodyPrototype) Instantiate(id BodyID, spawn common.Vec) *Body {
	b := NewBody(id)
	b.Name = p.Name
	b.Layer = p.Layer
	b.Spawn = spawn
	for _, sp := range p.Shapes {
		s := NewBodyShape(sp.Key, sp.Geometry, sp.Sensor, sp.PreSolve)
		for key, def := range sp.Graphics {
			s.AddGraphics(key, def)
		}
		if sp.Current != "" {
			s.SetCurrentGraphics(sp.Current)
		}
		b.AddShape(s)
	}
	return b
}

type StaticKind int

const (
	StaticObstacle StaticKind = iota
	StaticSensor
)

// StaticDescriptor is one piece of map geometry. Shapes are in world pixels.
type StaticDescriptor struct {
	ObjectID    MapObjectID
	HasObjectID bool
	Name        string
	Class       string
	Kind        StaticKind
	Shapes      []Geometry
}

// ShapeKey names the i-th shape of a static descriptor.
func (d StaticDescriptor) ShapeKey(i int) string {
	if len(d.Shapes) == 1 && d.Name != "" {
		return d.Name
	}
	if d.Name != "" {
		return d.Name + "#" + strconv.Itoa(i)
	}
	return "static#" + strconv.Itoa(i)
}

// Instantiate builds the domain side of a static body.
func (d StaticDescriptor) Instantiate(id BodyID) *Body {
	b := NewBody(id)
	b.Name = d.Name
	b.Static = true
	b.MapObject = d.ObjectID
	b.HasMapObject = d.HasObjectID
	for i, g := range d.Shapes {
		b.AddShape(NewBodyShape(d.ShapeKey(i), g, d.Kind == StaticSensor, false))
	}
	return b
}

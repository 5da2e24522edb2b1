package prefabs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadBodyPrototype loads a body prefab and converts it.
func LoadBodyPrototype(filename string) (component.BodyPrototype, error) {
	spec, err := LoadSpec[BodySpec](filename)
	if err != nil {
		return component.BodyPrototype{}, err
	}
	proto, err := spec.Prototype()
	if err != nil {
		return component.BodyPrototype{}, fmt.Errorf("prefabs: build %s: %w", filename, err)
	}
	return proto, nil
}

// ParseBodyPrototype converts prefab YAML that does not come from the
// prefab directory.
func ParseBodyPrototype(data []byte) (component.BodyPrototype, error) {
	var spec BodySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return component.BodyPrototype{}, fmt.Errorf("prefabs: unmarshal: %w", err)
	}
	return spec.Prototype()
}

type BodySpec struct {
	Name          string               `yaml:"name"`
	Kind          string               `yaml:"kind"`
	Mass          float64              `yaml:"mass"`
	FixedRotation bool                 `yaml:"fixed_rotation"`
	IgnoreGravity bool                 `yaml:"ignore_gravity"`
	Layer         string               `yaml:"layer"`
	Sheets        map[string]SheetSpec `yaml:"sheets"`
	Shapes        []ShapeSpec          `yaml:"shapes"`
}

type SheetSpec struct {
	Texture string  `yaml:"texture"`
	Columns int     `yaml:"columns"`
	Rows    int     `yaml:"rows"`
	CellW   float64 `yaml:"cell_w"`
	CellH   float64 `yaml:"cell_h"`
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p PointSpec) vec() common.Vec { return common.Vec{X: p.X, Y: p.Y} }

// ShapeSpec describes one shape. Type is box, circle, polygon or capsule.
// X/Y offset the shape from the body origin.
type ShapeSpec struct {
	Key        string                  `yaml:"key"`
	Type       string                  `yaml:"type"`
	X          float64                 `yaml:"x"`
	Y          float64                 `yaml:"y"`
	Width      float64                 `yaml:"width"`
	Height     float64                 `yaml:"height"`
	Radius     float64                 `yaml:"radius"`
	Points     []PointSpec             `yaml:"points"`
	A          PointSpec               `yaml:"a"`
	B          PointSpec               `yaml:"b"`
	Sensor     bool                    `yaml:"sensor"`
	PreSolve   bool                    `yaml:"pre_solve"`
	Friction   float64                 `yaml:"friction"`
	Elasticity float64                 `yaml:"elasticity"`
	Current    string                  `yaml:"current"`
	Graphics   map[string]GraphicsSpec `yaml:"graphics"`
}

// GraphicsSpec is either a run of sprite sheet cells or an explicit frame
// list.
type GraphicsSpec struct {
	Sheet      string      `yaml:"sheet"`
	Cells      []int       `yaml:"cells"`
	FrameMS    int         `yaml:"frame_ms"`
	Iterations int         `yaml:"iterations"`
	Frames     []FrameSpec `yaml:"frames"`
}

// FrameSpec is one explicit frame. The sprite is centred on the shape origin
// and then moved by OffsetX/OffsetY.
type FrameSpec struct {
	Texture    string  `yaml:"texture"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	W          float64 `yaml:"w"`
	H          float64 `yaml:"h"`
	OffsetX    float64 `yaml:"offset_x"`
	OffsetY    float64 `yaml:"offset_y"`
	Rotation   float64 `yaml:"rotation"`
	DurationMS int     `yaml:"duration_ms"`
	Hidden     bool    `yaml:"hidden"`
}

// Prototype validates the spec and converts it into a body prototype.
func (s BodySpec) Prototype() (component.BodyPrototype, error) {
	proto := component.BodyPrototype{
		Name:          s.Name,
		Mass:          s.Mass,
		FixedRotation: s.FixedRotation,
		IgnoreGravity: s.IgnoreGravity,
		Layer:         s.Layer,
	}
	switch strings.ToLower(s.Kind) {
	case "", "dynamic":
		proto.Kind = component.BodyDynamic
	case "kinematic":
		proto.Kind = component.BodyKinematic
	default:
		return component.BodyPrototype{}, fmt.Errorf("unknown body kind %q", s.Kind)
	}

	sheets := make(map[string]component.SpriteSheet, len(s.Sheets))
	for name, sh := range s.Sheets {
		grid, err := component.NewSpriteSheet(sh.Texture, sh.Columns, sh.Rows, sh.CellW, sh.CellH)
		if err != nil {
			return component.BodyPrototype{}, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets[name] = grid
	}

	seen := map[string]bool{}
	for i, ss := range s.Shapes {
		key := ss.Key
		if key == "" {
			key = fmt.Sprintf("shape%d", i)
		}
		if seen[key] {
			return component.BodyPrototype{}, fmt.Errorf("duplicate shape key %q", key)
		}
		seen[key] = true

		geom, err := ss.geometry()
		if err != nil {
			return component.BodyPrototype{}, fmt.Errorf("shape %s: %w", key, err)
		}
		sp := component.ShapePrototype{
			Key:        key,
			Geometry:   geom,
			Sensor:     ss.Sensor,
			PreSolve:   ss.PreSolve,
			Friction:   ss.Friction,
			Elasticity: ss.Elasticity,
			Current:    ss.Current,
		}

		if len(ss.Graphics) > 0 {
			sp.Graphics = make(map[string]component.GraphicsDef, len(ss.Graphics))
			names := make([]string, 0, len(ss.Graphics))
			for name := range ss.Graphics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				def, err := ss.Graphics[name].definition(sheets)
				if err != nil {
					return component.BodyPrototype{}, fmt.Errorf("shape %s graphics %s: %w", key, name, err)
				}
				sp.Graphics[name] = def
			}
		}
		if sp.Current != "" {
			if _, ok := sp.Graphics[sp.Current]; !ok {
				return component.BodyPrototype{}, fmt.Errorf("shape %s: current graphics %q not defined", key, sp.Current)
			}
		}
		proto.Shapes = append(proto.Shapes, sp)
	}
	return proto, nil
}

func (s ShapeSpec) geometry() (component.Geometry, error) {
	offset := common.Vec{X: s.X, Y: s.Y}
	switch strings.ToLower(s.Type) {
	case "", "box":
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("box needs a positive size, got %vx%v", s.Width, s.Height)
		}
		return component.Box{Center: offset, W: s.Width, H: s.Height}, nil
	case "circle":
		if s.Radius <= 0 {
			return nil, fmt.Errorf("circle needs a positive radius")
		}
		return component.Circle{Center: offset, Radius: s.Radius}, nil
	case "polygon":
		if len(s.Points) < 3 {
			return nil, fmt.Errorf("polygon needs at least 3 points, got %d", len(s.Points))
		}
		pts := make([]common.Vec, len(s.Points))
		for i, p := range s.Points {
			pts[i] = p.vec().Add(offset)
		}
		return component.Polygon{Points: pts}, nil
	case "capsule":
		if s.Radius <= 0 {
			return nil, fmt.Errorf("capsule needs a positive radius")
		}
		return component.Capsule{A: s.A.vec().Add(offset), B: s.B.vec().Add(offset), Radius: s.Radius}, nil
	}
	return nil, fmt.Errorf("unknown shape type %q", s.Type)
}

func (g GraphicsSpec) definition(sheets map[string]component.SpriteSheet) (component.GraphicsDef, error) {
	def := component.GraphicsDef{Iterations: g.Iterations}
	if g.Sheet != "" {
		sheet, ok := sheets[g.Sheet]
		if !ok {
			return component.GraphicsDef{}, fmt.Errorf("unknown sheet %q", g.Sheet)
		}
		cells := g.Cells
		if len(cells) == 0 {
			cells = make([]int, sheet.Columns*sheet.Rows)
			for i := range cells {
				cells[i] = i
			}
		}
		def.Frames = sheet.Frames(cells, time.Duration(g.FrameMS)*time.Millisecond)
		return def, nil
	}

	for _, f := range g.Frames {
		frame := component.Frame{
			Duration: time.Duration(f.DurationMS) * time.Millisecond,
			Visible:  !f.Hidden,
		}
		if f.Texture != "" {
			frame.Sprites = []component.SpritePlacement{{
				Texture:  f.Texture,
				Source:   common.Rect{X: f.X, Y: f.Y, W: f.W, H: f.H},
				Offset:   common.Vec{X: -f.W/2 + f.OffsetX, Y: -f.H/2 + f.OffsetY},
				Rotation: f.Rotation,
			}}
		}
		def.Frames = append(def.Frames, frame)
	}
	if len(def.Frames) == 0 {
		return component.GraphicsDef{}, fmt.Errorf("no frames")
	}
	return def, nil
}

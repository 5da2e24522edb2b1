package component

import (
	"sort"
	"time"

	"github.com/milk9111/physcene/common"
)

// Body is the engine-facing side of a physics body. The physics handle lives
// in the physics package and is looked up by ID.
type Body struct {
	ID     BodyID
	Name   string
	Layer  string
	Static bool

	MapObject    MapObjectID
	HasMapObject bool

	// Spawn is where the body was requested. It is reported as the body
	// position until the physics body exists.
	Spawn common.Vec

	shapes map[string]*BodyShape
	order  []string
}

func NewBody(id BodyID) *Body {
	return &Body{ID: id, shapes: make(map[string]*BodyShape)}
}

// AddShape registers a shape under its key, replacing any previous one.
func (b *Body) AddShape(s *BodyShape) {
	if b == nil || s == nil {
		return
	}
	if b.shapes == nil {
		b.shapes = make(map[string]*BodyShape)
	}
	s.Owner = b.ID
	if _, exists := b.shapes[s.Key]; !exists {
		b.order = append(b.order, s.Key)
	}
	b.shapes[s.Key] = s
}

func (b *Body) Shape(key string) (*BodyShape, bool) {
	if b == nil {
		return nil, false
	}
	s, ok := b.shapes[key]
	return s, ok
}

// Shapes returns shapes in the order they were added.
func (b *Body) Shapes() []*BodyShape {
	if b == nil {
		return nil
	}
	out := make([]*BodyShape, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.shapes[k])
	}
	return out
}

// Advance steps the current graphics of every shape.
func (b *Body) Advance(dt time.Duration) {
	for _, s := range b.Shapes() {
		s.Advance(dt)
	}
}

// BodyShape is a named collision shape plus its visual state.
type BodyShape struct {
	Owner    BodyID
	Key      string
	Sensor   bool
	PreSolve bool
	Geometry Geometry

	graphics map[string]*GraphicsPack
	current  string
}

func NewBodyShape(key string, geom Geometry, sensor, preSolve bool) *BodyShape {
	return &BodyShape{
		Key:      key,
		Geometry: geom,
		Sensor:   sensor,
		PreSolve: preSolve,
		graphics: make(map[string]*GraphicsPack),
	}
}

// AddGraphics inserts or replaces the pack under key. Replacing the selected
// pack restarts its playback.
func (s *BodyShape) AddGraphics(key string, def GraphicsDef) {
	if s == nil {
		return
	}
	if s.graphics == nil {
		s.graphics = make(map[string]*GraphicsPack)
	}
	pack := NewGraphicsPack(def)
	if old, ok := s.graphics[key]; ok {
		pack.FlipH = old.FlipH
		pack.FlipV = old.FlipV
	}
	s.graphics[key] = pack
}

// SetCurrentGraphics selects the pack under key. Unknown keys leave the
// selection untouched.
func (s *BodyShape) SetCurrentGraphics(key string) bool {
	if s == nil {
		return false
	}
	pack, ok := s.graphics[key]
	if !ok {
		return false
	}
	if s.current != key {
		pack.Reset()
		s.current = key
	}
	return true
}

// FlipGraphics sets the flip flags of any pack, selected or not.
func (s *BodyShape) FlipGraphics(key string, horizontal, vertical bool) bool {
	if s == nil {
		return false
	}
	pack, ok := s.graphics[key]
	if !ok {
		return false
	}
	pack.FlipH = horizontal
	pack.FlipV = vertical
	return true
}

// CurrentGraphics returns the selected pack and its key.
func (s *BodyShape) CurrentGraphics() (string, *GraphicsPack, bool) {
	if s == nil || s.current == "" {
		return "", nil, false
	}
	pack, ok := s.graphics[s.current]
	if !ok {
		return "", nil, false
	}
	return s.current, pack, true
}

func (s *BodyShape) Graphics(key string) (*GraphicsPack, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.graphics[key]
	return p, ok
}

// GraphicsKeys returns the pack keys sorted.
func (s *BodyShape) GraphicsKeys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.graphics))
	for k := range s.graphics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Advance steps the selected pack only.
func (s *BodyShape) Advance(dt time.Duration) {
	if _, pack, ok := s.CurrentGraphics(); ok {
		pack.Advance(dt)
	}
}

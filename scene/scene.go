package scene

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/pathfinding"
	"github.com/milk9111/physcene/physics"
	"github.com/milk9111/physcene/registry"
	"github.com/milk9111/physcene/tilemap"
)

const (
	defaultViewW = 640
	defaultViewH = 360
)

type Options struct {
	Gravity            common.Vec
	Damping            float64
	VelocityIterations int
	PositionIterations int

	// CellSize and MaxExpansions configure path queries.
	CellSize      float64
	MaxExpansions int

	ViewportW float64
	ViewportH float64
	Debug     bool

	// MapDir is searched after the literal path and before the bundled levels.
	MapDir string
	Logger *log.Logger
}

// FrameState is what Render needs to know about the frame being drawn.
type FrameState struct {
	Elapsed time.Duration
	Debug   bool
}

// Scene ties the physics world, the body registry, the loaded map and path
// queries together. It is not safe for concurrent use; call it from the frame
// loop only.
type Scene struct {
	world  *physics.World
	finder *pathfinding.Finder
	logger *log.Logger

	bodies registry.SparseSet[component.BodyID, *component.Body]

	tiles       *tilemap.Map
	static      []component.BodyID
	mapObjects  map[component.MapObjectID]component.BodyID
	pendingMap  *tilemap.Map
	pendingPath string
	mapPath     string
	mapDir      string

	camera *Camera
	follow component.BodyID

	velIters int
	posIters int
	debug    bool

	deferred []func(physics.Action)
}

func New(opts Options) *Scene {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithPrefix("scene")
	}
	viewW, viewH := opts.ViewportW, opts.ViewportH
	if viewW <= 0 || viewH <= 0 {
		viewW, viewH = defaultViewW, defaultViewH
	}

	world := physics.NewWorld(physics.Options{
		Gravity: opts.Gravity,
		Damping: opts.Damping,
		Logger:  logger.WithPrefix("physics"),
	})
	s := &Scene{
		world:      world,
		logger:     logger,
		mapObjects: make(map[component.MapObjectID]component.BodyID),
		mapDir:     opts.MapDir,
		camera:     NewCamera(viewW, viewH),
		velIters:   opts.VelocityIterations,
		posIters:   opts.PositionIterations,
		debug:      opts.Debug,
	}
	s.finder = pathfinding.NewFinder(world, pathfinding.Options{
		CellSize:      opts.CellSize,
		MaxExpansions: opts.MaxExpansions,
	}, logger.WithPrefix("pathfinding"))
	world.SetActionHandler(s.runCustom)
	return s
}

// Step advances the simulation. Mutations queued during the step, including
// those made by contact observers, are applied before it returns.
func (s *Scene) Step(dt float64) {
	if s == nil {
		return
	}
	s.world.Step(dt, s.velIters, s.posIters)
	if m := s.pendingMap; m != nil {
		s.pendingMap = nil
		s.applyMap(m, s.pendingPath)
	}
}

// CreateBody registers a body built from proto at position and returns its
// id. While the world is locked the physics body is created after the step;
// the id is valid immediately. Zero means the body could not be created.
func (s *Scene) CreateBody(position common.Vec, proto component.BodyPrototype) component.BodyID {
	if s == nil {
		return 0
	}
	id := component.NextBodyID()
	body := proto.Instantiate(id, position)
	if !s.world.CreateDynamicBody(id, position, proto) {
		s.logger.Warn("create body failed", "prototype", proto.Name)
		return 0
	}
	s.bodies.Set(id, body)
	return id
}

// DestroyBody removes the body. Its id is never reused and later lookups
// fail.
func (s *Scene) DestroyBody(id component.BodyID) bool {
	if s == nil {
		return false
	}
	body, ok := s.bodies.Get(id)
	if !ok {
		return false
	}
	s.world.DestroyBody(id)
	s.bodies.Remove(id)
	if body.HasMapObject {
		if owner, ok := s.mapObjects[body.MapObject]; ok && owner == id {
			delete(s.mapObjects, body.MapObject)
		}
	}
	if s.follow == id {
		s.follow = 0
	}
	return true
}

// Body returns the registered body.
func (s *Scene) Body(id component.BodyID) (*component.Body, bool) {
	if s == nil {
		return nil, false
	}
	return s.bodies.Get(id)
}

// Bodies returns every body ordered by id.
func (s *Scene) Bodies() []*component.Body {
	if s == nil {
		return nil
	}
	out := append([]*component.Body(nil), s.bodies.Values()...)
	slices.SortFunc(out, func(a, b *component.Body) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (s *Scene) shape(id component.BodyID, key string) (*component.BodyShape, bool) {
	body, ok := s.Body(id)
	if !ok {
		return nil, false
	}
	return body.Shape(key)
}

func (s *Scene) SetBodyLayer(id component.BodyID, layer string) bool {
	body, ok := s.Body(id)
	if !ok {
		return false
	}
	body.Layer = layer
	return true
}

func (s *Scene) SetBodyShapeCurrentGraphic(id component.BodyID, shape, key string) bool {
	bs, ok := s.shape(id, shape)
	if !ok {
		return false
	}
	return bs.SetCurrentGraphics(key)
}

func (s *Scene) FlipBodyShapeGraphic(id component.BodyID, shape, key string, horizontal, vertical bool) bool {
	bs, ok := s.shape(id, shape)
	if !ok {
		return false
	}
	return bs.FlipGraphics(key, horizontal, vertical)
}

func (s *Scene) AddBodyShapeGraphic(id component.BodyID, shape, key string, def component.GraphicsDef) bool {
	bs, ok := s.shape(id, shape)
	if !ok {
		return false
	}
	bs.AddGraphics(key, def)
	return true
}

func (s *Scene) ApplyForce(id component.BodyID, force common.Vec) bool {
	if s == nil || !s.bodies.Has(id) {
		return false
	}
	return s.world.ApplyForce(id, force)
}

func (s *Scene) ApplyImpulse(id component.BodyID, impulse common.Vec) bool {
	if s == nil || !s.bodies.Has(id) {
		return false
	}
	return s.world.ApplyImpulse(id, impulse)
}

func (s *Scene) SetBodyVelocity(id component.BodyID, v common.Vec) bool {
	if s == nil || !s.bodies.Has(id) {
		return false
	}
	return s.world.SetVelocity(id, v)
}

// BodyVelocity is zero for bodies still waiting for their physics body.
func (s *Scene) BodyVelocity(id component.BodyID) (common.Vec, bool) {
	if s == nil || !s.bodies.Has(id) {
		return common.Vec{}, false
	}
	if v, ok := s.world.Velocity(id); ok {
		return v, true
	}
	return common.Vec{}, true
}

func (s *Scene) SetBodyPosition(id component.BodyID, p common.Vec) bool {
	body, ok := s.Body(id)
	if !ok {
		return false
	}
	if !s.world.SetPosition(id, p) {
		return false
	}
	if !s.world.HasBody(id) {
		body.Spawn = p
	}
	return true
}

// BodyPosition reports the spawn point until the physics body exists.
func (s *Scene) BodyPosition(id component.BodyID) (common.Vec, bool) {
	body, ok := s.Body(id)
	if !ok {
		return common.Vec{}, false
	}
	if p, ok := s.world.Position(id); ok {
		return p, true
	}
	return body.Spawn, true
}

// FindPath searches from the body's current position to destination.
func (s *Scene) FindPath(id component.BodyID, destination common.Vec, allowDiagonalSteps, avoidSensors bool) ([]common.Vec, bool) {
	if s == nil || !s.bodies.Has(id) {
		return nil, false
	}
	return s.finder.FindPath(id, destination, allowDiagonalSteps, avoidSensors)
}

// Follow keeps the camera centred on id. Zero stops following.
func (s *Scene) Follow(id component.BodyID) bool {
	if s == nil {
		return false
	}
	if id == 0 {
		s.follow = 0
		return true
	}
	if !s.bodies.Has(id) {
		return false
	}
	s.follow = id
	if p, ok := s.BodyPosition(id); ok {
		s.camera.SnapTo(p)
	}
	return true
}

// Camera is the world position of the top-left corner of the view.
func (s *Scene) Camera() common.Vec {
	if s == nil {
		return common.Vec{}
	}
	return s.camera.TopLeft()
}

func (s *Scene) Subscribe(o physics.ContactObserver) *physics.Subscription {
	if s == nil {
		return nil
	}
	return s.world.Subscribe(o)
}

// OnDeferred registers a receiver for actions queued with Defer.
func (s *Scene) OnDeferred(fn func(physics.Action)) {
	if s == nil || fn == nil {
		return
	}
	s.deferred = append(s.deferred, fn)
}

// Defer queues a tagged action that is handed to the OnDeferred receivers
// once the world is unlocked, after the current or next step.
func (s *Scene) Defer(tag string, id component.BodyID) {
	if s == nil {
		return
	}
	s.world.Defer(physics.Action{Kind: physics.ActionCustom, Tag: tag, Body: id})
}

func (s *Scene) runCustom(a physics.Action) {
	for _, fn := range s.deferred {
		fn(a)
	}
}

// StaticBodyForMapObject returns the static body built from a map object.
func (s *Scene) StaticBodyForMapObject(object component.MapObjectID) (component.BodyID, bool) {
	if s == nil {
		return 0, false
	}
	id, ok := s.mapObjects[object]
	return id, ok
}

func (s *Scene) TileMap() *tilemap.Map {
	if s == nil {
		return nil
	}
	return s.tiles
}

func (s *Scene) World() *physics.World {
	if s == nil {
		return nil
	}
	return s.world
}

func (s *Scene) SetDebug(on bool) {
	if s != nil {
		s.debug = on
	}
}

// Close destroys every body and drops the map.
func (s *Scene) Close() {
	if s == nil {
		return
	}
	for _, id := range append([]component.BodyID(nil), s.bodies.IDs()...) {
		s.DestroyBody(id)
	}
	s.world.Flush()
	s.tiles = nil
	s.static = nil
	s.pendingMap = nil
	s.mapPath = ""
	s.deferred = nil
	clear(s.mapObjects)
}

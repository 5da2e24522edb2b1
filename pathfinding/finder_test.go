package pathfinding

import (
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/physics"
)

const cell = 32.0

// gridSpace blocks whole cells of a 32px grid whose cell (0,0) is centred on
// (16,16). It is bounded to 10x10 cells unless hasBounds is cleared.
type gridSpace struct {
	bodies    map[component.BodyID]common.Vec
	blocked   map[gridPos]bool
	bounds    common.Rect
	hasBounds bool
	queries   int
}

func newGridSpace(blocked ...gridPos) *gridSpace {
	s := &gridSpace{
		bodies:    map[component.BodyID]common.Vec{1: {X: 16, Y: 16}},
		blocked:   map[gridPos]bool{},
		bounds:    common.Rect{W: 10 * cell, H: 10 * cell},
		hasBounds: true,
	}
	for _, b := range blocked {
		s.blocked[b] = true
	}
	return s
}

func (s *gridSpace) Footprint(body component.BodyID) (common.Rect, bool) {
	p, ok := s.bodies[body]
	if !ok {
		return common.Rect{}, false
	}
	return common.RectAround(p, cell, cell), true
}

func (s *gridSpace) Obstructed(area common.Rect, ignore component.BodyID, sensorsBlock bool) bool {
	s.queries++
	c := area.Center()
	p := gridPos{x: int(math.Floor(c.X / cell)), y: int(math.Floor(c.Y / cell))}
	return s.blocked[p]
}

func (s *gridSpace) Bounds() (common.Rect, bool) {
	return s.bounds, s.hasBounds
}

func newTestFinder(space Space, opts Options) *Finder {
	return NewFinder(space, opts, log.New(io.Discard))
}

func pt(x, y float64) common.Vec { return common.Vec{X: x, Y: y} }

func TestFindPath(t *testing.T) {
	cases := []struct {
		name     string
		blocked  []gridPos
		dest     common.Vec
		diagonal bool
		want     []common.Vec
		ok       bool
	}{
		{
			name: "straight line",
			dest: pt(112, 16),
			want: []common.Vec{pt(48, 16), pt(80, 16), pt(112, 16)},
			ok:   true,
		},
		{
			name:     "diagonal steps",
			dest:     pt(112, 112),
			diagonal: true,
			want:     []common.Vec{pt(48, 48), pt(80, 80), pt(112, 112)},
			ok:       true,
		},
		{
			name:     "no corner cutting",
			blocked:  []gridPos{{x: 1, y: 0}},
			dest:     pt(48, 48),
			diagonal: true,
			want:     []common.Vec{pt(16, 48), pt(48, 48)},
			ok:       true,
		},
		{
			name: "last point is the exact destination",
			dest: pt(110, 20),
			want: []common.Vec{pt(48, 16), pt(80, 16), pt(110, 20)},
			ok:   true,
		},
		{
			name: "already there",
			dest: pt(20, 18),
			want: []common.Vec{pt(20, 18)},
			ok:   true,
		},
		{
			name:    "blocked destination",
			blocked: []gridPos{{x: 3, y: 0}},
			dest:    pt(112, 16),
			ok:      false,
		},
		{
			name:    "detour around a wall",
			blocked: []gridPos{{x: 1, y: 0}, {x: 1, y: 1}},
			dest:    pt(80, 16),
			want:    []common.Vec{pt(16, 48), pt(16, 80), pt(48, 80), pt(80, 80), pt(80, 48), pt(80, 16)},
			ok:      true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newTestFinder(newGridSpace(c.blocked...), Options{CellSize: cell})
			got, ok := f.FindPath(1, c.dest, c.diagonal, true)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v (path %v)", ok, c.ok, got)
			}
			if diff := cmp.Diff(c.want, got, cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindPathMissingBody(t *testing.T) {
	f := newTestFinder(newGridSpace(), Options{CellSize: cell})
	if path, ok := f.FindPath(99, pt(100, 100), true, true); ok || path != nil {
		t.Fatalf("expected failure for unknown body, got %v %v", path, ok)
	}

	var nilFinder *Finder
	if _, ok := nilFinder.FindPath(1, pt(0, 0), false, false); ok {
		t.Fatalf("nil finder should fail")
	}
}

func TestFindPathExpansionLimit(t *testing.T) {
	space := newGridSpace()
	space.hasBounds = false
	f := newTestFinder(space, Options{CellSize: cell, MaxExpansions: 3})
	if _, ok := f.FindPath(1, pt(16+cell*40, 16), false, true); ok {
		t.Fatalf("expected search to give up")
	}
}

func TestFindPathMemoisesCells(t *testing.T) {
	// Enclose the goal so every reachable cell inside the bounds is visited.
	space := newGridSpace(gridPos{x: 4, y: 3}, gridPos{x: 3, y: 4}, gridPos{x: 4, y: 5}, gridPos{x: 5, y: 4})

	f := newTestFinder(space, Options{CellSize: cell})
	if _, ok := f.FindPath(1, pt(16+4*cell, 16+4*cell), true, true); ok {
		t.Fatalf("goal is enclosed, expected no path")
	}
	// One query per in-bounds cell at most, plus the exact destination test.
	if space.queries > 101 {
		t.Fatalf("queries = %d, want at most 101", space.queries)
	}
}

func TestFindPathDeterministic(t *testing.T) {
	blocked := []gridPos{{x: 2, y: 0}, {x: 2, y: 1}, {x: 2, y: 2}, {x: 4, y: 3}, {x: 4, y: 4}}
	dest := pt(16+6*cell, 16+2*cell)

	first, ok := newTestFinder(newGridSpace(blocked...), Options{CellSize: cell}).FindPath(1, dest, true, true)
	if !ok {
		t.Fatalf("expected a path")
	}
	for i := 0; i < 5; i++ {
		again, ok := newTestFinder(newGridSpace(blocked...), Options{CellSize: cell}).FindPath(1, dest, true, true)
		if !ok {
			t.Fatalf("run %d found no path", i)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func newWalledWorld(t *testing.T, wallKind component.StaticKind) (*physics.World, component.BodyID) {
	t.Helper()
	w := physics.NewWorld(physics.Options{Logger: log.New(io.Discard)})
	w.SetBounds(common.Rect{W: 320, H: 320})

	mover := component.NextBodyID()
	proto := component.BodyPrototype{
		Name: "mover",
		Shapes: []component.ShapePrototype{{
			Key:      "main",
			Geometry: component.Box{W: 32, H: 32},
		}},
	}
	if !w.CreateDynamicBody(mover, pt(16, 16), proto) {
		t.Fatalf("CreateDynamicBody failed")
	}

	wall := component.StaticDescriptor{
		Name:   "wall",
		Kind:   wallKind,
		Shapes: []component.Geometry{component.Box{Center: pt(176, 160), W: 32, H: 320}},
	}
	if !w.CreateStaticBody(component.NextBodyID(), wall) {
		t.Fatalf("CreateStaticBody failed")
	}
	return w, mover
}

func TestFindPathAgainstWorld(t *testing.T) {
	cases := []struct {
		name         string
		wall         component.StaticKind
		avoidSensors bool
		ok           bool
	}{
		{name: "solid wall splits the map", wall: component.StaticObstacle, avoidSensors: true, ok: false},
		{name: "sensor wall is passable", wall: component.StaticSensor, avoidSensors: true, ok: true},
		{name: "sensor wall blocks when sensors count", wall: component.StaticSensor, avoidSensors: false, ok: false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, mover := newWalledWorld(t, c.wall)
			f := newTestFinder(w, Options{CellSize: cell})
			dest := pt(304, 304)
			path, ok := f.FindPath(mover, dest, true, c.avoidSensors)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if !ok {
				return
			}
			if got := path[len(path)-1]; got != dest {
				t.Fatalf("last point = %v, want %v", got, dest)
			}
		})
	}
}

func TestFindPathOpenWorld(t *testing.T) {
	w := physics.NewWorld(physics.Options{Logger: log.New(io.Discard)})
	w.SetBounds(common.Rect{W: 320, H: 320})
	mover := component.NextBodyID()
	proto := component.BodyPrototype{Shapes: []component.ShapePrototype{{Key: "main", Geometry: component.Box{W: 32, H: 32}}}}
	if !w.CreateDynamicBody(mover, pt(16, 16), proto) {
		t.Fatalf("CreateDynamicBody failed")
	}

	f := newTestFinder(w, Options{})
	path, ok := f.FindPath(mover, pt(304, 304), true, true)
	if !ok {
		t.Fatalf("expected a path across an empty room")
	}
	if len(path) != 9 {
		t.Fatalf("len(path) = %d, want 9 diagonal steps", len(path))
	}

	if _, ok := f.FindPath(mover, pt(400, 16), false, true); ok {
		t.Fatalf("destination outside the bounds should fail")
	}
}

func TestFindPathWideBodyThroughGap(t *testing.T) {
	cases := []struct {
		name string
		gapL float64
		gapR float64
		ok   bool
	}{
		{name: "gap narrower than the body", gapL: 150, gapR: 170, ok: false},
		{name: "gap wider than the body", gapL: 120, gapR: 200, ok: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := physics.NewWorld(physics.Options{Logger: log.New(io.Discard)})
			w.SetBounds(common.Rect{W: 320, H: 320})

			mover := component.NextBodyID()
			proto := component.BodyPrototype{Shapes: []component.ShapePrototype{{Key: "main", Geometry: component.Box{W: 64, H: 16}}}}
			if !w.CreateDynamicBody(mover, pt(96, 40), proto) {
				t.Fatalf("CreateDynamicBody failed")
			}
			wall := component.StaticDescriptor{
				Name: "wall",
				Kind: component.StaticObstacle,
				Shapes: []component.Geometry{
					component.Box{Center: pt(c.gapL/2, 160), W: c.gapL, H: 20},
					component.Box{Center: pt((c.gapR+320)/2, 160), W: 320 - c.gapR, H: 20},
				},
			}
			if !w.CreateStaticBody(component.NextBodyID(), wall) {
				t.Fatalf("CreateStaticBody failed")
			}

			f := newTestFinder(w, Options{})
			path, ok := f.FindPath(mover, pt(96, 280), true, true)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v (path %v)", ok, c.ok, path)
			}
			for _, p := range path {
				if w.Obstructed(common.RectAround(p, 64, 16), mover, false) {
					t.Fatalf("path point %v overlaps the wall", p)
				}
			}
		})
	}
}

package pathfinding

import (
	"container/heap"
	"math"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

const defaultMaxExpansions = 4096

// Space is the live world the search runs against.
type Space interface {
	Footprint(body component.BodyID) (common.Rect, bool)
	Obstructed(area common.Rect, ignore component.BodyID, sensorsBlock bool) bool
	Bounds() (common.Rect, bool)
}

// Options tunes the search. A zero CellSize uses the larger side of the
// moving body's footprint.
type Options struct {
	CellSize      float64
	MaxExpansions int
}

// Finder runs A* over a grid anchored on the moving body. Every cell is
// tested against the live space, so dynamic bodies block as well as map
// geometry. Results are deterministic for a fixed world state.
type Finder struct {
	space  Space
	opts   Options
	logger *log.Logger
}

func NewFinder(space Space, opts Options, logger *log.Logger) *Finder {
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = defaultMaxExpansions
	}
	if logger == nil {
		logger = log.WithPrefix("pathfinding")
	}
	return &Finder{space: space, opts: opts, logger: logger}
}

type gridPos struct {
	x int
	y int
}

type neighbor struct {
	dx       int
	dy       int
	cost     float64
	diagonal bool
}

// Fixed order keeps expansion deterministic.
var neighborOffsets = []neighbor{
	{dx: 1, dy: 0, cost: 1},
	{dx: -1, dy: 0, cost: 1},
	{dx: 0, dy: 1, cost: 1},
	{dx: 0, dy: -1, cost: 1},
	{dx: 1, dy: -1, cost: math.Sqrt2, diagonal: true},
	{dx: 1, dy: 1, cost: math.Sqrt2, diagonal: true},
	{dx: -1, dy: 1, cost: math.Sqrt2, diagonal: true},
	{dx: -1, dy: -1, cost: math.Sqrt2, diagonal: true},
}

// search holds the state of one FindPath call. Cell tests are memoised for
// the duration of the call only.
type search struct {
	space        Space
	body         component.BodyID
	origin       common.Vec
	cell         float64
	size         common.Rect
	bounds       common.Rect
	hasBounds    bool
	sensorsBlock bool
	blocked      map[gridPos]bool
}

func (s *search) center(p gridPos) common.Vec {
	return common.Vec{X: s.origin.X + float64(p.x)*s.cell, Y: s.origin.Y + float64(p.y)*s.cell}
}

func (s *search) area(at common.Vec) common.Rect {
	return common.RectAround(at, s.size.W, s.size.H)
}

func (s *search) isBlocked(p gridPos) bool {
	if b, ok := s.blocked[p]; ok {
		return b
	}
	area := s.area(s.center(p))
	b := (s.hasBounds && !s.bounds.Contains(area)) || s.space.Obstructed(area, s.body, s.sensorsBlock)
	s.blocked[p] = b
	return b
}

// canTraverseDiagonal refuses diagonal steps that would clip a corner.
func (s *search) canTraverseDiagonal(from gridPos, n neighbor) bool {
	return !s.isBlocked(gridPos{x: from.x + n.dx, y: from.y}) && !s.isBlocked(gridPos{x: from.x, y: from.y + n.dy})
}

// FindPath returns the points a body should move through to reach
// destination, excluding its current position. The last point is destination
// itself. With avoidSensors set, sensor shapes never block.
func (f *Finder) FindPath(body component.BodyID, destination common.Vec, allowDiagonalSteps, avoidSensors bool) ([]common.Vec, bool) {
	if f == nil || f.space == nil {
		return nil, false
	}
	fp, ok := f.space.Footprint(body)
	if !ok {
		return nil, false
	}
	cell := f.opts.CellSize
	if cell <= 0 {
		cell = math.Max(fp.W, fp.H)
	}
	if cell <= 0 {
		return nil, false
	}

	s := &search{
		space:        f.space,
		body:         body,
		origin:       fp.Center(),
		cell:         cell,
		size:         fp,
		sensorsBlock: !avoidSensors,
		blocked:      make(map[gridPos]bool),
	}
	s.bounds, s.hasBounds = f.space.Bounds()

	start := gridPos{}
	rel := destination.Sub(s.origin)
	goal := gridPos{x: int(math.Round(rel.X / cell)), y: int(math.Round(rel.Y / cell))}

	if s.isBlocked(goal) {
		return nil, false
	}
	if destArea := s.area(destination); (s.hasBounds && !s.bounds.Contains(destArea)) || f.space.Obstructed(destArea, body, s.sensorsBlock) {
		return nil, false
	}
	if goal == start {
		return []common.Vec{destination}, true
	}

	cells, expanded, ok := f.astar(s, start, goal, allowDiagonalSteps)
	if !ok {
		f.logger.Debug("no path", "body", body, "expanded", expanded, "goal", destination)
		return nil, false
	}

	out := make([]common.Vec, 0, len(cells))
	for _, c := range cells[1:] {
		out = append(out, s.center(c))
	}
	out[len(out)-1] = destination
	return out, true
}

func heuristic(a, b gridPos, diagonal bool) float64 {
	dx := math.Abs(float64(a.x - b.x))
	dy := math.Abs(float64(a.y - b.y))
	if !diagonal {
		return dx + dy
	}
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

func (f *Finder) astar(s *search, start, goal gridPos, diagonal bool) ([]gridPos, int, bool) {
	open := &openSet{}
	heap.Init(open)

	gScore := map[gridPos]float64{start: 0}
	cameFrom := map[gridPos]gridPos{}
	closed := map[gridPos]bool{}
	seq := 0

	h := heuristic(start, goal, diagonal)
	heap.Push(open, &openItem{pos: start, f: h, h: h, seq: seq})

	expanded := 0
	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		cur := current.pos
		if closed[cur] {
			continue
		}
		if cur == goal {
			return reconstructPath(cameFrom, start, goal), expanded, true
		}
		closed[cur] = true
		expanded++
		if expanded > f.opts.MaxExpansions {
			return nil, expanded, false
		}

		for _, n := range neighborOffsets {
			if n.diagonal && !diagonal {
				continue
			}
			next := gridPos{x: cur.x + n.dx, y: cur.y + n.dy}
			if closed[next] || s.isBlocked(next) {
				continue
			}
			if n.diagonal && !s.canTraverseDiagonal(cur, n) {
				continue
			}
			tentative := gScore[cur] + n.cost
			if old, seen := gScore[next]; seen && tentative >= old {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur
			seq++
			nh := heuristic(next, goal, diagonal)
			heap.Push(open, &openItem{pos: next, f: tentative + nh, h: nh, seq: seq})
		}
	}
	return nil, expanded, false
}

func reconstructPath(cameFrom map[gridPos]gridPos, start, goal gridPos) []gridPos {
	path := []gridPos{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type openItem struct {
	pos   gridPos
	f     float64
	h     float64
	seq   int
	index int
}

// openSet orders by f, then h, then insertion order.
type openSet []*openItem

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}

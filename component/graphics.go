package component

import (
	"errors"
	"fmt"
	"time"

	"github.com/milk9111/physcene/common"
)

var ErrInvalidSpriteSheet = errors.New("invalid sprite sheet")

// SpritePlacement places one texture region relative to the shape origin.
type SpritePlacement struct {
	Texture  string
	Source   common.Rect
	Offset   common.Vec
	Rotation float64
}

// Frame is a single step of a graphics pack.
type Frame struct {
	Duration time.Duration
	Visible  bool
	Sprites  []SpritePlacement
}

// GraphicsDef describes an animation. Iterations of 0 loops forever.
type GraphicsDef struct {
	Frames     []Frame
	Iterations int
}

// SpriteSheet is a texture cut into a uniform grid of cells, read
// left-to-right, top-to-bottom.
type SpriteSheet struct {
	Texture string
	Columns int
	Rows    int
	CellW   float64
	CellH   float64
}

func NewSpriteSheet(texture string, columns, rows int, cellW, cellH float64) (SpriteSheet, error) {
	if columns <= 0 || rows <= 0 {
		return SpriteSheet{}, fmt.Errorf("%w: %s has %dx%d cells", ErrInvalidSpriteSheet, texture, columns, rows)
	}
	if cellW <= 0 || cellH <= 0 {
		return SpriteSheet{}, fmt.Errorf("%w: %s cell size %.0fx%.0f", ErrInvalidSpriteSheet, texture, cellW, cellH)
	}
	return SpriteSheet{Texture: texture, Columns: columns, Rows: rows, CellW: cellW, CellH: cellH}, nil
}

// Cell returns the source rect of the cell at index.
func (s SpriteSheet) Cell(index int) (common.Rect, bool) {
	if index < 0 || s.Columns <= 0 || index >= s.Columns*s.Rows {
		return common.Rect{}, false
	}
	col := index % s.Columns
	row := index / s.Columns
	return common.Rect{X: float64(col) * s.CellW, Y: float64(row) * s.CellH, W: s.CellW, H: s.CellH}, true
}

// Frames builds one visible frame per cell index. Out of range cells become
// invisible frames so the timing of the sequence is kept.
func (s SpriteSheet) Frames(cells []int, duration time.Duration) []Frame {
	frames := make([]Frame, 0, len(cells))
	for _, idx := range cells {
		src, ok := s.Cell(idx)
		if !ok {
			frames = append(frames, Frame{Duration: duration})
			continue
		}
		frames = append(frames, Frame{
			Duration: duration,
			Visible:  true,
			Sprites: []SpritePlacement{{
				Texture: s.Texture,
				Source:  src,
				Offset:  common.Vec{X: -s.CellW / 2, Y: -s.CellH / 2},
			}},
		})
	}
	return frames
}

// GraphicsPack is the playback state of one GraphicsDef.
type GraphicsPack struct {
	def       GraphicsDef
	frame     int
	elapsed   time.Duration
	iteration int
	finished  bool

	FlipH bool
	FlipV bool
}

func NewGraphicsPack(def GraphicsDef) *GraphicsPack {
	p := &GraphicsPack{def: def}
	p.Reset()
	return p
}

// Reset rewinds to the first visible frame. Flip flags are kept.
func (p *GraphicsPack) Reset() {
	if p == nil {
		return
	}
	p.elapsed = 0
	p.iteration = 0
	p.finished = false
	p.frame = 0
	if first, ok := p.nextVisible(-1); ok {
		p.frame = first
	}
}

// Advance moves playback forward by dt, crossing as many frame boundaries as
// dt covers. Each wrap back to the start counts one iteration.
func (p *GraphicsPack) Advance(dt time.Duration) {
	if p == nil || dt <= 0 || p.finished || !p.playable() {
		return
	}
	p.elapsed += dt
	for {
		cur := p.def.Frames[p.frame]
		if p.elapsed < cur.Duration {
			return
		}
		p.elapsed -= cur.Duration

		next, _ := p.nextVisible(p.frame)
		if next <= p.frame {
			p.iteration++
			if p.def.Iterations > 0 && p.iteration >= p.def.Iterations {
				p.finished = true
				p.elapsed = 0
				return
			}
		}
		p.frame = next
	}
}

// playable is false when no visible frame has a positive duration; such a
// pack would never leave its current frame.
func (p *GraphicsPack) playable() bool {
	for _, f := range p.def.Frames {
		if f.Visible && f.Duration > 0 {
			return true
		}
	}
	return false
}

// nextVisible returns the first visible frame after from, wrapping around.
func (p *GraphicsPack) nextVisible(from int) (int, bool) {
	n := len(p.def.Frames)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if idx < 0 {
			idx += n
		}
		if p.def.Frames[idx].Visible {
			return idx, true
		}
	}
	return from, false
}

// Frame returns the frame to draw, or false when there is nothing visible.
func (p *GraphicsPack) Frame() (Frame, bool) {
	if p == nil || p.frame >= len(p.def.Frames) {
		return Frame{}, false
	}
	f := p.def.Frames[p.frame]
	return f, f.Visible
}

func (p *GraphicsPack) FrameIndex() int {
	if p == nil {
		return 0
	}
	return p.frame
}

func (p *GraphicsPack) Iteration() int {
	if p == nil {
		return 0
	}
	return p.iteration
}

// Finished reports whether a finite pack has frozen on its last frame.
func (p *GraphicsPack) Finished() bool {
	return p != nil && p.finished
}

func (p *GraphicsPack) Def() GraphicsDef {
	if p == nil {
		return GraphicsDef{}
	}
	return p.def
}

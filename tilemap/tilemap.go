package tilemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
)

var ErrInvalidMap = errors.New("invalid map")

// Map is a tile map stored as JSON. Tiles hold global tile ids: 0 is empty,
// anything else resolves through the tileset whose FirstGID range contains it.
type Map struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	TileWidth  int `json:"tile_width"`
	TileHeight int `json:"tile_height"`

	// Layers are drawn in order, bottom first. Each is row-major with
	// Width*Height entries.
	Layers   []Layer   `json:"layers"`
	Tilesets []Tileset `json:"tilesets,omitempty"`
	Objects  []Object  `json:"objects,omitempty"`

	sheets []sheet
}

type Layer struct {
	Name  string `json:"name"`
	Tiles []int  `json:"tiles"`
	// Collision layers become merged static boxes.
	Collision bool `json:"collision,omitempty"`
	// Sensor makes the collision boxes of this layer sensors.
	Sensor bool `json:"sensor,omitempty"`
	Hidden bool `json:"hidden,omitempty"`
}

type Tileset struct {
	Texture  string `json:"texture"`
	Columns  int    `json:"columns"`
	Rows     int    `json:"rows"`
	TileW    int    `json:"tile_w"`
	TileH    int    `json:"tile_h"`
	FirstGID int    `json:"first_gid"`
}

// Object is a free-standing map feature. Shape is one of "rect" (default),
// "ellipse", "polygon", "capsule" or "point". Polygon points are relative to
// X/Y.
type Object struct {
	ID     int          `json:"id"`
	Name   string       `json:"name,omitempty"`
	Class  string       `json:"class,omitempty"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	W      float64      `json:"w,omitempty"`
	H      float64      `json:"h,omitempty"`
	Shape  string       `json:"shape,omitempty"`
	Points []common.Vec `json:"points,omitempty"`
	Layer  string       `json:"layer,omitempty"`
}

type sheet struct {
	firstGID int
	grid     component.SpriteSheet
}

// Load reads a map from disk.
func Load(path string, logger *log.Logger) (*Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tilemap: read %s: %w", path, err)
	}
	m, err := Parse(b, logger)
	if err != nil {
		return nil, fmt.Errorf("tilemap: load %s: %w", path, err)
	}
	return m, nil
}

// LoadFS reads a map from fsys, e.g. the embedded levels.
func LoadFS(fsys fs.FS, path string, logger *log.Logger) (*Map, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(path), "levels/")
	b, err := fs.ReadFile(fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("tilemap: read %s: %w", path, err)
	}
	m, err := Parse(b, logger)
	if err != nil {
		return nil, fmt.Errorf("tilemap: load %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a map. Tilesets with a bad grid are logged and
// skipped; their tiles then draw as missing.
func Parse(b []byte, logger *log.Logger) (*Map, error) {
	if logger == nil {
		logger = log.WithPrefix("tilemap")
	}
	var m Map
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMap, m.Width, m.Height)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidMap, m.TileWidth, m.TileHeight)
	}
	for i, l := range m.Layers {
		if len(l.Tiles) != m.Width*m.Height {
			return nil, fmt.Errorf("%w: layer %d (%q) has %d tiles, want %d", ErrInvalidMap, i, l.Name, len(l.Tiles), m.Width*m.Height)
		}
	}

	for _, ts := range m.Tilesets {
		grid, err := component.NewSpriteSheet(ts.Texture, ts.Columns, ts.Rows, float64(ts.TileW), float64(ts.TileH))
		if err != nil {
			logger.Warn("tileset skipped", "texture", ts.Texture, "err", err)
			continue
		}
		first := ts.FirstGID
		if first <= 0 {
			first = 1
		}
		m.sheets = append(m.sheets, sheet{firstGID: first, grid: grid})
	}
	return &m, nil
}

// PixelSize is the size of the map in pixels.
func (m *Map) PixelSize() (float64, float64) {
	if m == nil {
		return 0, 0
	}
	return float64(m.Width * m.TileWidth), float64(m.Height * m.TileHeight)
}

// Bounds is the map area in pixels, used for the world walls.
func (m *Map) Bounds() common.Rect {
	w, h := m.PixelSize()
	return common.Rect{W: w, H: h}
}

// LayerIndex returns the index of the layer called name.
func (m *Map) LayerIndex(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	for i, l := range m.Layers {
		if l.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Object returns the object with the given id.
func (m *Map) Object(id int) (Object, bool) {
	if m == nil {
		return Object{}, false
	}
	for _, o := range m.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return Object{}, false
}

// TileSource resolves a global tile id to a texture region.
func (m *Map) TileSource(gid int) (string, common.Rect, bool) {
	if m == nil || gid <= 0 {
		return "", common.Rect{}, false
	}
	var best *sheet
	for i := range m.sheets {
		s := &m.sheets[i]
		if gid >= s.firstGID && (best == nil || s.firstGID > best.firstGID) {
			best = s
		}
	}
	if best == nil {
		return "", common.Rect{}, false
	}
	src, ok := best.grid.Cell(gid - best.firstGID)
	if !ok {
		return "", common.Rect{}, false
	}
	return best.grid.Texture, src, true
}

// TileAt returns the gid at column x, row y of layer.
func (m *Map) TileAt(layer, x, y int) int {
	if m == nil || layer < 0 || layer >= len(m.Layers) || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Layers[layer].Tiles[y*m.Width+x]
}

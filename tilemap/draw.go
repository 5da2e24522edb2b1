package tilemap

import (
	"fmt"
	"math"

	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/render"
)

// DrawLayer emits the tiles of one layer that fall inside view. view and the
// emitted positions are in world pixels offset by camera (the view's top-left).
// Tiles whose gid resolves to no tileset draw as a missing-tile rect.
func (m *Map) DrawLayer(r render.Renderer, layer int, camera common.Vec, view common.Rect) {
	if m == nil || r == nil || layer < 0 || layer >= len(m.Layers) {
		return
	}
	l := m.Layers[layer]
	if l.Hidden {
		return
	}
	tw, th := float64(m.TileWidth), float64(m.TileHeight)

	x0, y0, x1, y1 := 0, 0, m.Width, m.Height
	if !view.Empty() {
		x0 = max(0, int(math.Floor(view.X/tw)))
		y0 = max(0, int(math.Floor(view.Y/th)))
		x1 = min(m.Width, int(math.Ceil((view.X+view.W)/tw)))
		y1 = min(m.Height, int(math.Ceil((view.Y+view.H)/th)))
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			gid := l.Tiles[y*m.Width+x]
			if gid == 0 {
				continue
			}
			pos := common.Vec{X: float64(x)*tw - camera.X, Y: float64(y)*th - camera.Y}
			tex, src, ok := m.TileSource(gid)
			if !ok {
				r.DrawRect(render.RectDraw{
					Rect:   common.Rect{X: pos.X, Y: pos.Y, W: tw, H: th},
					Color:  render.ColorMissing,
					Filled: true,
					Label:  fmt.Sprintf("%s:missing:%d", l.Name, gid),
				})
				continue
			}
			r.DrawTexture(render.TextureDraw{
				Texture:  tex,
				Source:   src,
				Position: pos,
				Label:    l.Name,
			})
		}
	}
}

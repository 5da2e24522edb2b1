package ebitenrender

import (
	"image"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/render"
)

// Backend draws render primitives onto an ebiten screen.
type Backend struct {
	images *Images
	screen *ebiten.Image
	logger *log.Logger
	warned map[string]bool
}

func NewBackend(images *Images) *Backend {
	return &Backend{
		images: images,
		logger: log.WithPrefix("render"),
		warned: map[string]bool{},
	}
}

// Begin targets the frame's screen. Call once per Draw.
func (b *Backend) Begin(screen *ebiten.Image) {
	b.screen = screen
}

func (b *Backend) DrawTexture(d render.TextureDraw) {
	if b.screen == nil {
		return
	}
	var img *ebiten.Image
	var err error
	if !b.warned[d.Texture] {
		img, err = b.images.Load(d.Texture)
		if err != nil {
			b.logger.Warn("texture missing", "texture", d.Texture, "err", err)
			b.warned[d.Texture] = true
		}
	}
	if img == nil {
		b.DrawRect(render.RectDraw{
			Rect:   common.Rect{X: d.Position.X, Y: d.Position.Y, W: d.Source.W, H: d.Source.H},
			Color:  render.ColorMissing,
			Filled: true,
		})
		return
	}

	src := img
	if !d.Source.Empty() {
		r := image.Rect(int(d.Source.X), int(d.Source.Y), int(d.Source.X+d.Source.W), int(d.Source.Y+d.Source.H))
		if sub, ok := img.SubImage(r).(*ebiten.Image); ok {
			src = sub
		}
	}
	w := float64(src.Bounds().Dx())
	h := float64(src.Bounds().Dy())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	sx, sy := 1.0, 1.0
	if d.FlipH {
		sx = -1
	}
	if d.FlipV {
		sy = -1
	}
	op.GeoM.Scale(sx, sy)
	if d.Rotation != 0 {
		op.GeoM.Rotate(d.Rotation)
	}
	op.GeoM.Translate(d.Position.X+w/2, d.Position.Y+h/2)
	b.screen.DrawImage(src, op)
}

func (b *Backend) DrawRect(d render.RectDraw) {
	if b.screen == nil {
		return
	}
	x, y := float32(d.Rect.X), float32(d.Rect.Y)
	w, h := float32(d.Rect.W), float32(d.Rect.H)
	if d.Filled {
		vector.DrawFilledRect(b.screen, x, y, w, h, d.Color, false)
		return
	}
	vector.StrokeRect(b.screen, x, y, w, h, 1, d.Color, false)
}

func (b *Backend) DrawLine(d render.LineDraw) {
	if b.screen == nil {
		return
	}
	width := float32(d.Width)
	if width <= 0 {
		width = 1
	}
	vector.StrokeLine(b.screen, float32(d.From.X), float32(d.From.Y), float32(d.To.X), float32(d.To.Y), width, d.Color, true)
}

func (b *Backend) DrawCircle(d render.CircleDraw) {
	if b.screen == nil || d.Radius <= 0 {
		return
	}
	cx, cy, r := float32(d.Center.X), float32(d.Center.Y), float32(d.Radius)
	if d.Filled {
		vector.DrawFilledCircle(b.screen, cx, cy, r, d.Color, true)
		return
	}
	vector.StrokeCircle(b.screen, cx, cy, r, 1, d.Color, true)
}

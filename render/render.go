package render

import (
	"image/color"

	"github.com/milk9111/physcene/common"
	"golang.org/x/image/colornames"
)

// Debug palette.
var (
	ColorSolid   = colornames.Limegreen
	ColorSensor  = colornames.Gold
	ColorStatic  = colornames.Steelblue
	ColorContact = colornames.Orangered
	ColorMissing = colornames.Magenta
	ColorPath    = colornames.Deepskyblue
)

// TextureDraw draws Source of Texture with its top-left at Position, in
// screen space. Label names what is being drawn and is ignored by backends.
type TextureDraw struct {
	Texture  string
	Source   common.Rect
	Position common.Vec
	Rotation float64
	FlipH    bool
	FlipV    bool
	Label    string
}

type RectDraw struct {
	Rect   common.Rect
	Color  color.RGBA
	Filled bool
	Label  string
}

type LineDraw struct {
	From  common.Vec
	To    common.Vec
	Width float64
	Color color.RGBA
}

type CircleDraw struct {
	Center common.Vec
	Radius float64
	Color  color.RGBA
	Filled bool
}

// Renderer consumes draw primitives in the order they should appear.
type Renderer interface {
	DrawTexture(TextureDraw)
	DrawRect(RectDraw)
	DrawLine(LineDraw)
	DrawCircle(CircleDraw)
}

// FColor converts a float colour to RGBA, clamping each channel.
func FColor(r, g, b, a float32) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(r) * 255),
		G: uint8(clamp01(g) * 255),
		B: uint8(clamp01(b) * 255),
		A: uint8(clamp01(a) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

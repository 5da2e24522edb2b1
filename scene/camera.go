package scene

import (
	"math"

	"github.com/milk9111/physcene/common"
)

// Camera tracks a centre point and keeps the view inside the world.
type Camera struct {
	center common.Vec
	view   common.Vec
	world  common.Rect
	// smooth is the per-update lerp factor toward the target. Zero snaps.
	smooth float64
}

func NewCamera(viewW, viewH float64) *Camera {
	return &Camera{view: common.Vec{X: viewW, Y: viewH}}
}

func (c *Camera) SetWorldBounds(r common.Rect) { c.world = r }

func (c *Camera) SetSmooth(f float64) {
	c.smooth = math.Max(0, math.Min(1, f))
}

// Update moves toward target and clamps.
func (c *Camera) Update(target common.Vec) {
	if c.smooth <= 0 {
		c.center = target
	} else {
		c.center.X = common.Lerp(c.center.X, target.X, c.smooth)
		c.center.Y = common.Lerp(c.center.Y, target.Y, c.smooth)
	}
	c.clamp()
}

// SnapTo places the camera immediately, e.g. after a map load.
func (c *Camera) SnapTo(target common.Vec) {
	c.center = target
	c.clamp()
}

func (c *Camera) clamp() {
	if c.world.Empty() {
		return
	}
	c.center.X = clampAxis(c.center.X, c.world.X, c.world.W, c.view.X)
	c.center.Y = clampAxis(c.center.Y, c.world.Y, c.world.H, c.view.Y)
}

// clampAxis keeps a view of size view inside [lo, lo+size]; a world smaller
// than the view is centred.
func clampAxis(v, lo, size, view float64) float64 {
	half := view / 2
	minV := lo + half
	maxV := lo + size - half
	if maxV < minV {
		return lo + size/2
	}
	return math.Max(minV, math.Min(maxV, v))
}

// TopLeft is the world position drawn at the screen origin.
func (c *Camera) TopLeft() common.Vec {
	return common.Vec{X: c.center.X - c.view.X/2, Y: c.center.Y - c.view.Y/2}
}

// View is the visible world rect.
func (c *Camera) View() common.Rect {
	tl := c.TopLeft()
	return common.Rect{X: tl.X, Y: tl.Y, W: c.view.X, H: c.view.Y}
}

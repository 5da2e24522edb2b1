package physics

import (
	"image/color"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/render"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// DebugDraw emits the outline of every shape in the space, offset by camera.
func (w *World) DebugDraw(r render.Renderer, camera common.Vec) {
	if w == nil || r == nil {
		return
	}
	cp.DrawSpace(w.space, &debugDrawer{r: r, world: w, camera: camera})
}

type debugDrawer struct {
	r      render.Renderer
	world  *World
	camera common.Vec
}

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	c := d.toScreen(pos)
	d.r.DrawCircle(render.CircleDraw{Center: c, Radius: common.FromPhysics(radius), Color: toRGBA(outline)})
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		r := common.FromPhysics(radius)
		d.r.DrawCircle(render.CircleDraw{Center: d.toScreen(a), Radius: r, Color: toRGBA(outline)})
		d.r.DrawCircle(render.CircleDraw{Center: d.toScreen(b), Radius: r, Color: toRGBA(outline)})
	}
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	for i := 0; i < count; i++ {
		d.drawLine(verts[i], verts[(i+1)%count], outline)
	}
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	c := d.toScreen(pos)
	d.r.DrawCircle(render.CircleDraw{Center: c, Radius: size / 2, Color: toRGBA(fill), Filled: true})
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// ShapeColor tells sensors, map geometry and bodies apart.
func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	c := render.ColorSolid
	switch {
	case shape.Sensor():
		c = render.ColorSensor
	case shape.Body().GetType() == cp.BODY_STATIC:
		c = render.ColorStatic
	}
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: 0.8}
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	c := render.ColorContact
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: 0.9}
}

func (d *debugDrawer) Data() interface{} {
	return d.world
}

func (d *debugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	d.r.DrawLine(render.LineDraw{From: d.toScreen(a), To: d.toScreen(b), Width: 1, Color: toRGBA(c)})
}

func (d *debugDrawer) toScreen(v cp.Vector) common.Vec {
	return fromCP(v).Sub(d.camera)
}

func toRGBA(c cp.FColor) color.RGBA {
	return render.FColor(c.R, c.G, c.B, c.A)
}

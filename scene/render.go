package scene

import (
	"math"

	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/render"
)

// Render advances every body's graphics by frame.Elapsed and draws the scene.
// Each tile layer is followed by the bodies on the layer of the same name.
// Bodies on no map layer are drawn last. Within a layer bodies draw in id
// order.
func (s *Scene) Render(frame FrameState, r render.Renderer) {
	if s == nil || r == nil {
		return
	}
	bodies := s.Bodies()
	for _, b := range bodies {
		b.Advance(frame.Elapsed)
	}

	if s.follow != 0 {
		if p, ok := s.BodyPosition(s.follow); ok {
			s.camera.Update(p)
		}
	}
	camera := s.camera.TopLeft()
	view := s.camera.View()

	drawn := make(map[component.BodyID]bool, len(bodies))
	if s.tiles != nil {
		for i, layer := range s.tiles.Layers {
			s.tiles.DrawLayer(r, i, camera, view)
			for _, b := range bodies {
				if b.Layer == layer.Name && !drawn[b.ID] {
					s.drawBody(r, b, camera)
					drawn[b.ID] = true
				}
			}
		}
	}
	for _, b := range bodies {
		if !drawn[b.ID] {
			s.drawBody(r, b, camera)
		}
	}

	if s.debug || frame.Debug {
		s.world.DebugDraw(r, camera)
	}
}

func (s *Scene) drawBody(r render.Renderer, b *component.Body, camera common.Vec) {
	pos, ok := s.BodyPosition(b.ID)
	if !ok {
		return
	}
	angle, _ := s.world.Angle(b.ID)

	for _, shape := range b.Shapes() {
		key, pack, ok := shape.CurrentGraphics()
		if !ok {
			continue
		}
		f, ok := pack.Frame()
		if !ok || !f.Visible {
			continue
		}
		origin := pos
		if shape.Geometry != nil && !b.Static {
			origin = pos.Add(rotate(shape.Geometry.Bounds().Center(), angle))
		}
		for _, sp := range f.Sprites {
			offset := sp.Offset
			if pack.FlipH {
				offset.X = -offset.X - sp.Source.W
			}
			if pack.FlipV {
				offset.Y = -offset.Y - sp.Source.H
			}
			at := origin.Add(rotate(offset, angle)).Sub(camera)
			r.DrawTexture(render.TextureDraw{
				Texture:  sp.Texture,
				Source:   sp.Source,
				Position: at,
				Rotation: angle + sp.Rotation,
				FlipH:    pack.FlipH,
				FlipV:    pack.FlipV,
				Label:    b.Name + "/" + shape.Key + "/" + key,
			})
		}
	}
}

func rotate(v common.Vec, angle float64) common.Vec {
	if angle == 0 {
		return v
	}
	sin, cos := math.Sincos(angle)
	return common.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

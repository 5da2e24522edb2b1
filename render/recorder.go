package render

// Op is one recorded draw call. Exactly one payload field is set.
type Op struct {
	Texture *TextureDraw
	Rect    *RectDraw
	Line    *LineDraw
	Circle  *CircleDraw
}

// Recorder is a Renderer that keeps every call, for headless runs and tests.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) DrawTexture(d TextureDraw) { r.Ops = append(r.Ops, Op{Texture: &d}) }
func (r *Recorder) DrawRect(d RectDraw) { r.Ops = append(r.Ops, Op{Rect: &d}) }
func (r *Recorder) DrawLine(d LineDraw) { r.Ops = append(r.Ops, Op{Line: &d}) }
func (r *Recorder) DrawCircle(d CircleDraw) { r.Ops = append(r.Ops, Op{Circle: &d}) }

// Labels returns the labels of texture and rect calls in draw order.
func (r *Recorder) Labels() []string {
	var out []string
	for _, op := range r.Ops {
		switch {
		case op.Texture != nil && op.Texture.Label != "":
			out = append(out, op.Texture.Label)
		case op.Rect != nil && op.Rect.Label != "":
			out = append(out, op.Rect.Label)
		}
	}
	return out
}

func (r *Recorder) Lines() []LineDraw {
	var out []LineDraw
	for _, op := range r.Ops {
		if op.Line != nil {
			out = append(out, *op.Line)
		}
	}
	return out
}

func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

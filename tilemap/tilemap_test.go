package tilemap

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/render"
)

var quiet = log.New(io.Discard)

const smallMap = `{
	"width": 4, "height": 3, "tile_width": 32, "tile_height": 32,
	"layers": [
		{"name": "walls", "collision": true, "tiles": [1,1,0,1, 1,1,0,1, 0,0,0,1]},
		{"name": "decor", "tiles": [0,0,0,0, 0,0,5,0, 0,0,0,0]}
	],
	"tilesets": [
		{"texture": "tiles.png", "columns": 4, "rows": 4, "tile_w": 32, "tile_h": 32, "first_gid": 1},
		{"texture": "broken.png", "columns": 0, "rows": 4, "tile_w": 32, "tile_h": 32, "first_gid": 100}
	],
	"objects": [
		{"id": 7, "name": "zone", "class": "Trigger", "x": 10, "y": 20, "w": 30, "h": 40},
		{"id": 8, "name": "ball", "shape": "ellipse", "x": 0, "y": 0, "w": 20, "h": 20},
		{"id": 9, "name": "spawn", "shape": "point", "x": 50, "y": 50}
	]
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(smallMap), quiet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if w, h := m.PixelSize(); w != 128 || h != 96 {
		t.Fatalf("PixelSize = %vx%v, want 128x96", w, h)
	}
	if idx, ok := m.LayerIndex("decor"); !ok || idx != 1 {
		t.Fatalf("LayerIndex(decor) = %d, %v", idx, ok)
	}
	if got := m.TileAt(1, 2, 1); got != 5 {
		t.Fatalf("TileAt = %d, want 5", got)
	}
	if got := m.TileAt(1, 9, 9); got != 0 {
		t.Fatalf("TileAt out of range = %d, want 0", got)
	}
	if o, ok := m.Object(9); !ok || o.Name != "spawn" {
		t.Fatalf("Object(9) = %+v, %v", o, ok)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{"width": 4,`},
		{"no size", `{"width": 0, "height": 3, "tile_width": 32, "tile_height": 32}`},
		{"no tile size", `{"width": 2, "height": 2, "tile_width": 0, "tile_height": 32}`},
		{"short layer", `{"width": 2, "height": 2, "tile_width": 32, "tile_height": 32, "layers": [{"name": "a", "tiles": [1,1,1]}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.data), quiet)
			if !errors.Is(err, ErrInvalidMap) {
				t.Fatalf("err = %v, want ErrInvalidMap", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.json")
	if err := os.WriteFile(path, []byte(smallMap), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, quiet); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json"), quiet); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTileSource(t *testing.T) {
	m, err := Parse([]byte(smallMap), quiet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tex, src, ok := m.TileSource(6)
	if !ok || tex != "tiles.png" {
		t.Fatalf("TileSource(6) = %q, %v", tex, ok)
	}
	if diff := cmp.Diff(common.Rect{X: 32, Y: 32, W: 32, H: 32}, src); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}
	// The broken tileset was skipped, so its range falls back to tiles.png
	// and runs past the end of the grid.
	if _, _, ok := m.TileSource(100); ok {
		t.Fatalf("gid 100 should not resolve")
	}
	if _, _, ok := m.TileSource(0); ok {
		t.Fatalf("gid 0 is empty")
	}
}

func TestStaticDescriptors(t *testing.T) {
	m, err := Parse([]byte(smallMap), quiet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []component.StaticDescriptor{
		{
			Name:  "walls",
			Class: "tiles",
			Kind:  component.StaticObstacle,
			Shapes: []component.Geometry{
				component.Box{Center: common.Vec{X: 32, Y: 32}, W: 64, H: 64},
				component.Box{Center: common.Vec{X: 112, Y: 48}, W: 32, H: 96},
			},
		},
		{
			ObjectID:    7,
			HasObjectID: true,
			Name:        "zone",
			Class:       "Trigger",
			Kind:        component.StaticSensor,
			Shapes:      []component.Geometry{component.Box{Center: common.Vec{X: 25, Y: 40}, W: 30, H: 40}},
		},
		{
			ObjectID:    8,
			HasObjectID: true,
			Name:        "ball",
			Kind:        component.StaticObstacle,
			Shapes:      []component.Geometry{component.Circle{Center: common.Vec{X: 10, Y: 10}, Radius: 10}},
		},
	}
	if diff := cmp.Diff(want, m.StaticDescriptors()); diff != "" {
		t.Fatalf("descriptors mismatch (-want +got):\n%s", diff)
	}
}

func TestObjectGeometry(t *testing.T) {
	cases := []struct {
		name string
		obj  Object
		want component.Geometry
		ok   bool
	}{
		{
			name: "horizontal capsule",
			obj:  Object{Shape: "capsule", X: 0, Y: 0, W: 60, H: 20},
			want: component.Capsule{A: common.Vec{X: 10, Y: 10}, B: common.Vec{X: 50, Y: 10}, Radius: 10},
			ok:   true,
		},
		{
			name: "vertical capsule",
			obj:  Object{Shape: "capsule", X: 0, Y: 0, W: 20, H: 60},
			want: component.Capsule{A: common.Vec{X: 10, Y: 10}, B: common.Vec{X: 10, Y: 50}, Radius: 10},
			ok:   true,
		},
		{
			name: "polygon is offset by the object position",
			obj:  Object{Shape: "polygon", X: 100, Y: 50, Points: []common.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}},
			want: component.Polygon{Points: []common.Vec{{X: 100, Y: 50}, {X: 110, Y: 50}, {X: 100, Y: 60}}},
			ok:   true,
		},
		{name: "polygon needs three points", obj: Object{Shape: "polygon", Points: []common.Vec{{}, {X: 1}}}},
		{name: "empty rect", obj: Object{W: 0, H: 10}},
		{name: "point", obj: Object{Shape: "point", X: 4, Y: 4}},
		{name: "unknown shape", obj: Object{Shape: "star", W: 4, H: 4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := c.obj.Geometry()
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
			}
		})
	}

	g, ok := Object{Shape: "ellipse", W: 40, H: 20}.Geometry()
	if !ok {
		t.Fatalf("ellipse should have geometry")
	}
	poly, isPoly := g.(component.Polygon)
	if !isPoly || len(poly.Points) != ellipseSegments {
		t.Fatalf("uneven ellipse = %#v, want %d point polygon", g, ellipseSegments)
	}
	if b := poly.Bounds(); !b.Contains(common.Rect{X: 1, Y: 1, W: 38, H: 18}) {
		t.Fatalf("ellipse bounds too small: %+v", b)
	}
}

func TestDrawLayer(t *testing.T) {
	m, err := Parse([]byte(`{
		"width": 3, "height": 2, "tile_width": 16, "tile_height": 16,
		"layers": [{"name": "bg", "tiles": [1,0,2, 0,42,0]}],
		"tilesets": [{"texture": "t.png", "columns": 2, "rows": 2, "tile_w": 16, "tile_h": 16, "first_gid": 1}]
	}`), quiet)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rec := &render.Recorder{}
	m.DrawLayer(rec, 0, common.Vec{X: 8, Y: 0}, common.Rect{})
	if diff := cmp.Diff([]string{"bg", "bg", "bg:missing:42"}, rec.Labels()); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Ops[1].Texture.Position; got != (common.Vec{X: 24, Y: 0}) {
		t.Fatalf("second tile at %v, want {24 0}", got)
	}

	rec.Reset()
	m.DrawLayer(rec, 0, common.Vec{}, common.Rect{X: 0, Y: 0, W: 16, H: 16})
	if got := len(rec.Ops); got != 1 {
		t.Fatalf("culled draw emitted %d ops, want 1", got)
	}

	rec.Reset()
	m.DrawLayer(rec, 3, common.Vec{}, common.Rect{})
	if len(rec.Ops) != 0 {
		t.Fatalf("unknown layer should draw nothing")
	}
}

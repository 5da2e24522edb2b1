package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/scene"
	"github.com/spf13/cobra"
)

type pathOptions struct {
	mapPath      string
	from         string
	to           string
	size         string
	diagonal     bool
	avoidSensors bool
	grid         bool
}

func newPathCmd() *cobra.Command {
	opts := pathOptions{}
	cmd := &cobra.Command{
		Use:   "path",
		Short: "find a path across a map for a box-shaped mover",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.mapPath, "map", "arena.json", "map file or bundled level name")
	cmd.Flags().StringVar(&opts.from, "from", "64,64", "start position x,y")
	cmd.Flags().StringVar(&opts.to, "to", "560,416", "destination x,y")
	cmd.Flags().StringVar(&opts.size, "size", "24x32", "mover size WxH")
	cmd.Flags().BoolVar(&opts.diagonal, "diagonal", true, "allow diagonal steps")
	cmd.Flags().BoolVar(&opts.avoidSensors, "avoid-sensors", true, "treat sensors as passable")
	cmd.Flags().BoolVar(&opts.grid, "grid", true, "draw the map with the path")
	return cmd
}

func runPath(cmd *cobra.Command, opts pathOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fx, fy, err := parsePoint(opts.from)
	if err != nil {
		return err
	}
	tx, ty, err := parsePoint(opts.to)
	if err != nil {
		return err
	}
	w, h, err := parseSize(opts.size)
	if err != nil {
		return err
	}

	sc := scene.New(scene.OptionsFromConfig(cfg, newLogger(cmd)))
	defer sc.Close()
	if err := sc.LoadTileMap(opts.mapPath); err != nil {
		return err
	}
	mover := sc.CreateBody(common.Vec{X: fx, Y: fy}, component.BodyPrototype{
		Name:          "mover",
		Kind:          component.BodyKinematic,
		IgnoreGravity: true,
		Shapes:        []component.ShapePrototype{{Key: "body", Geometry: component.Box{W: w, H: h}}},
	})
	if !mover.Valid() {
		return fmt.Errorf("could not place a %s mover at %s", opts.size, opts.from)
	}

	dest := common.Vec{X: tx, Y: ty}
	path, ok := sc.FindPath(mover, dest, opts.diagonal, opts.avoidSensors)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("path "+opts.mapPath))
	if !ok {
		fmt.Fprintln(out, failStyle.Render("no path")+" "+labelStyle.Render(fmt.Sprintf("from %s to %s", opts.from, opts.to)))
		if opts.grid {
			fmt.Fprintln(out, panelStyle.Render(drawGrid(sc, mover, nil)))
		}
		return fmt.Errorf("no path from %s to %s", opts.from, opts.to)
	}

	length := 0.0
	prev := common.Vec{X: fx, Y: fy}
	for _, p := range path {
		length += prev.Dist(p)
		prev = p
	}
	fmt.Fprintln(out, metric("steps", fmt.Sprint(len(path)))+"  "+metric("length", fmt.Sprintf("%.1fpx", length)))
	writePoints(out, path)
	if opts.grid {
		fmt.Fprintln(out, panelStyle.Render(drawGrid(sc, mover, path)))
	}
	return nil
}

func writePoints(w io.Writer, path []common.Vec) {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		parts = append(parts, fmt.Sprintf("(%.0f,%.0f)", p.X, p.Y))
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// drawGrid renders one character per map tile: '#' solid, '~' sensor, '*'
// path, 'S' the mover and 'G' the destination.
func drawGrid(sc *scene.Scene, mover component.BodyID, path []common.Vec) string {
	m := sc.TileMap()
	if m == nil {
		return ""
	}
	tw, th := float64(m.TileWidth), float64(m.TileHeight)
	cellOf := func(p common.Vec) (int, int) {
		return int(p.X / tw), int(p.Y / th)
	}
	marks := map[[2]int]byte{}
	for _, p := range path {
		x, y := cellOf(p)
		marks[[2]int{x, y}] = '*'
	}
	if len(path) > 0 {
		x, y := cellOf(path[len(path)-1])
		marks[[2]int{x, y}] = 'G'
	}
	if p, ok := sc.BodyPosition(mover); ok {
		x, y := cellOf(p)
		marks[[2]int{x, y}] = 'S'
	}

	world := sc.World()
	var b strings.Builder
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if c, ok := marks[[2]int{x, y}]; ok {
				b.WriteByte(c)
				continue
			}
			cell := common.Rect{X: float64(x)*tw + 1, Y: float64(y)*th + 1, W: tw - 2, H: th - 2}
			switch {
			case world.Obstructed(cell, mover, false):
				b.WriteByte('#')
			case world.Obstructed(cell, mover, true):
				b.WriteByte('~')
			default:
				b.WriteByte('.')
			}
		}
		if y < m.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/prefabs"
	"github.com/milk9111/physcene/render"
	"github.com/milk9111/physcene/scene"
	"github.com/milk9111/physcene/script"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	mapPath    string
	prefab     string
	at         string
	steps      int
	gravity    float64
	scriptPath string
	track      string
	height     int
}

type trajectory struct {
	xs, ys []float64
	draws  int
	final  common.Vec
	body   component.BodyID
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "step a scene headless and plot a body's trajectory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.mapPath, "map", "arena.json", "map file or bundled level name")
	cmd.Flags().StringVar(&opts.prefab, "prefab", "crate", "prefab to drop when no script is given")
	cmd.Flags().StringVar(&opts.at, "at", "320,64", "spawn position x,y")
	cmd.Flags().IntVar(&opts.steps, "steps", 180, "number of fixed steps")
	cmd.Flags().Float64Var(&opts.gravity, "gravity", 0, "gravity y in px/s², overrides the config")
	cmd.Flags().StringVar(&opts.scriptPath, "script", "", "script that drives the scene")
	cmd.Flags().StringVar(&opts.track, "track", "hero", "script state key holding the body to plot")
	cmd.Flags().IntVar(&opts.height, "height", 10, "plot height")
	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("gravity") {
		cfg.Physics.GravityY = opts.gravity
	}
	if opts.steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}

	logger := newLogger(cmd)
	sc := scene.New(scene.OptionsFromConfig(cfg, logger))
	defer sc.Close()

	traj, err := simulate(sc, cfg.Physics.Step, opts, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("simulate %s (%d steps of %.4fs)", opts.mapPath, opts.steps, cfg.Physics.Step)))
	fmt.Fprintln(out, metric("body", traj.body.String())+"  "+
		metric("final", fmt.Sprintf("(%.1f, %.1f)", traj.final.X, traj.final.Y))+"  "+
		metric("draws", fmt.Sprint(traj.draws)))
	if len(traj.xs) < 2 {
		return nil
	}
	fmt.Fprintln(out, asciigraph.Plot(traj.xs,
		asciigraph.Height(opts.height),
		asciigraph.Width(60),
		asciigraph.Caption("x (px)"),
	))
	fmt.Fprintln(out, asciigraph.Plot(traj.ys,
		asciigraph.Height(opts.height),
		asciigraph.Width(60),
		asciigraph.Caption("y (px)"),
	))
	return nil
}

func simulate(sc *scene.Scene, dt float64, opts simulateOptions, logger *log.Logger) (trajectory, error) {
	var traj trajectory
	var rt *script.Runtime

	if opts.scriptPath != "" {
		rt = script.New(sc, script.Options{Logger: logger.WithPrefix("script")})
		defer rt.Close()
		if err := rt.Load(opts.scriptPath); err != nil {
			return traj, err
		}
	} else {
		if err := sc.LoadTileMap(opts.mapPath); err != nil {
			return traj, err
		}
		x, y, err := parsePoint(opts.at)
		if err != nil {
			return traj, err
		}
		proto, err := prefabs.LoadBodyPrototype(opts.prefab)
		if err != nil {
			return traj, err
		}
		traj.body = sc.CreateBody(common.Vec{X: x, Y: y}, proto)
		if !traj.body.Valid() {
			return traj, fmt.Errorf("could not create %s", opts.prefab)
		}
	}

	rec := &render.Recorder{}
	frame := time.Duration(dt * float64(time.Second))
	for i := 0; i < opts.steps; i++ {
		if rt != nil {
			if err := rt.Update(dt); err != nil {
				return traj, err
			}
			if v, ok := rt.StateValue(opts.track); ok {
				if id, ok := v.(int); ok {
					traj.body = component.BodyID(id)
				}
			}
		}
		sc.Step(dt)

		rec.Reset()
		sc.Render(scene.FrameState{Elapsed: frame}, rec)
		traj.draws += len(rec.Ops)

		if p, ok := sc.BodyPosition(traj.body); ok {
			traj.xs = append(traj.xs, p.X)
			traj.ys = append(traj.ys, p.Y)
			traj.final = p
		}
	}
	if len(traj.xs) == 0 {
		logger.Warn("tracked body never existed", "track", opts.track)
	}
	return traj, nil
}

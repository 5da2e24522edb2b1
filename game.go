package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physcene/config"
	"github.com/milk9111/physcene/prefabs"
	"github.com/milk9111/physcene/render/ebitenrender"
	"github.com/milk9111/physcene/scene"
	"github.com/milk9111/physcene/script"
)

type GameOptions struct {
	Map    string
	Script string
	Watch  bool
	Logger *log.Logger
}

type Game struct {
	frames int
	dt     float64
	viewW  int
	viewH  int
	debug  bool

	scene   *scene.Scene
	runtime *script.Runtime
	backend *ebitenrender.Backend
	watcher *prefabs.Watcher
	logger  *log.Logger
}

func NewGame(cfg *config.Config, opts GameOptions) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithPrefix("physcene")
	}
	prefabs.DiskDir = cfg.Paths.Prefabs

	sc := scene.New(scene.OptionsFromConfig(cfg, logger.WithPrefix("scene")))
	g := &Game{
		dt:      cfg.Physics.Step,
		viewW:   cfg.Render.ViewportW,
		viewH:   cfg.Render.ViewportH,
		debug:   cfg.Render.Debug,
		scene:   sc,
		runtime: script.New(sc, script.Options{Logger: logger.WithPrefix("script")}),
		backend: ebitenrender.NewBackend(ebitenrender.NewImages(cfg.Paths.Assets)),
		logger:  logger,
	}

	if opts.Script != "" {
		if err := g.runtime.Load(opts.Script); err != nil {
			return nil, err
		}
	} else if opts.Map != "" {
		if err := sc.LoadTileMap(opts.Map); err != nil {
			return nil, err
		}
	}

	if opts.Watch {
		g.watcher = startWatcher(cfg.Paths, logger)
	}
	return g, nil
}

// startWatcher watches whichever content directories exist. Hot reload is
// optional, so failures only log.
func startWatcher(paths config.PathsConfig, logger *log.Logger) *prefabs.Watcher {
	var dirs []string
	for _, dir := range []string{paths.Maps, paths.Prefabs, paths.Scripts} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		logger.Warn("hot reload disabled", "err", err)
		return nil
	}
	logger.Info("watching", "dirs", dirs)
	return w
}

func (g *Game) Update() error {
	g.frames++
	g.applyChanges()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}

	if g.runtime.Path() != "" {
		if err := g.runtime.Update(g.dt); err != nil {
			g.logger.Error("script update", "err", err)
		}
	}
	g.scene.Step(g.dt)
	return nil
}

// applyChanges drains pending file changes between frames.
func (g *Game) applyChanges() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ch, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(ch)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("watcher", "err", err)
		default:
			return
		}
	}
}

func (g *Game) reload(ch prefabs.Change) {
	g.logger.Debug("changed", "kind", ch.Kind, "path", ch.Path)
	switch ch.Kind {
	case prefabs.ChangePrefab:
		g.runtime.InvalidatePrototypes()
	case prefabs.ChangeScript:
		if filepath.Base(ch.Path) != filepath.Base(g.runtime.Path()) {
			return
		}
		if err := g.runtime.Reload(); err != nil {
			g.logger.Error("script reload", "err", err)
		}
	case prefabs.ChangeMap:
		current := g.scene.MapPath()
		if current == "" || filepath.Base(ch.Path) != filepath.Base(current) {
			return
		}
		if err := g.scene.LoadTileMap(ch.Path); err != nil {
			g.logger.Error("map reload", "err", err)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.backend.Begin(screen)
	frame := time.Duration(g.dt * float64(time.Second))
	g.scene.Render(scene.FrameState{Elapsed: frame, Debug: g.debug}, g.backend)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Bodies: %d", g.frames, ebiten.ActualFPS(), len(g.scene.Bodies())))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.viewW, g.viewH
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.runtime.Close()
	g.scene.Close()
}

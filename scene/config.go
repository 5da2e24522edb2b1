package scene

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/common"
	"github.com/milk9111/physcene/config"
)

// OptionsFromConfig maps a loaded config onto scene options.
func OptionsFromConfig(cfg *config.Config, logger *log.Logger) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		Gravity:            common.Vec{X: cfg.Physics.GravityX, Y: cfg.Physics.GravityY},
		Damping:            cfg.Physics.Damping,
		VelocityIterations: cfg.Physics.VelocityIterations,
		PositionIterations: cfg.Physics.PositionIterations,
		CellSize:           cfg.Pathfinding.CellSize,
		MaxExpansions:      cfg.Pathfinding.MaxExpansions,
		ViewportW:          float64(cfg.Render.ViewportW),
		ViewportH:          float64(cfg.Render.ViewportH),
		Debug:              cfg.Render.Debug,
		MapDir:             cfg.Paths.Maps,
		Logger:             logger,
	}
}

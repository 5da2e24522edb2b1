package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGravityY      = 0.0
	DefaultStep          = 1.0 / 60.0
	DefaultIterations    = 10
	DefaultDamping       = 1.0
	DefaultMaxExpansions = 4096
	DefaultViewportW     = 640
	DefaultViewportH     = 360
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Physics     PhysicsConfig     `yaml:"physics"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Render      RenderConfig      `yaml:"render"`
	Logging     LoggingConfig     `yaml:"logging"`
	Paths       PathsConfig       `yaml:"paths"`
}

type PhysicsConfig struct {
	GravityX float64 `yaml:"gravity_x"`
	GravityY float64 `yaml:"gravity_y"`
	// Step is the fixed time step in seconds.
	Step               float64 `yaml:"step"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	Damping            float64 `yaml:"damping"`
}

type PathfindingConfig struct {
	// CellSize of 0 sizes cells from the moving body.
	CellSize      float64 `yaml:"cell_size"`
	MaxExpansions int     `yaml:"max_expansions"`
}

type RenderConfig struct {
	ViewportW int  `yaml:"viewport_w"`
	ViewportH int  `yaml:"viewport_h"`
	Debug     bool `yaml:"debug"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type PathsConfig struct {
	Maps    string `yaml:"maps"`
	Prefabs string `yaml:"prefabs"`
	Scripts string `yaml:"scripts"`
	Assets  string `yaml:"assets"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			GravityY:           DefaultGravityY,
			Step:               DefaultStep,
			VelocityIterations: DefaultIterations,
			PositionIterations: DefaultIterations,
			Damping:            DefaultDamping,
		},
		Pathfinding: PathfindingConfig{
			MaxExpansions: DefaultMaxExpansions,
		},
		Render: RenderConfig{
			ViewportW: DefaultViewportW,
			ViewportH: DefaultViewportH,
		},
		Logging: LoggingConfig{Level: "info"},
		Paths: PathsConfig{
			Maps:    "levels",
			Prefabs: "prefabs",
			Scripts: "prefabs/scripts",
			Assets:  "assets",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Physics.Step <= 0:
		return fmt.Errorf("%w: physics.step must be positive, got %v", ErrInvalidConfig, c.Physics.Step)
	case c.Physics.VelocityIterations < 0 || c.Physics.PositionIterations < 0:
		return fmt.Errorf("%w: physics iterations must not be negative", ErrInvalidConfig)
	case c.Physics.Damping < 0 || c.Physics.Damping > 1:
		return fmt.Errorf("%w: physics.damping must be in [0,1], got %v", ErrInvalidConfig, c.Physics.Damping)
	case c.Pathfinding.CellSize < 0:
		return fmt.Errorf("%w: pathfinding.cell_size must not be negative", ErrInvalidConfig)
	case c.Pathfinding.MaxExpansions <= 0:
		return fmt.Errorf("%w: pathfinding.max_expansions must be positive", ErrInvalidConfig)
	case c.Render.ViewportW <= 0 || c.Render.ViewportH <= 0:
		return fmt.Errorf("%w: render viewport %dx%d", ErrInvalidConfig, c.Render.ViewportW, c.Render.ViewportH)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LogLevel is the parsed logging level, info when unset or invalid.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

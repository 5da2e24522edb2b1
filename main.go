package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physcene/config"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile string
		mapPath    string
		scriptPath string
		debug      bool
		watch      bool
	)

	rootCmd := &cobra.Command{
		Use:          "physcene",
		Short:        "physics scene sandbox",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configFile != "" {
				loaded, err := config.Load(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if debug {
				cfg.Render.Debug = true
			}
			log.SetLevel(cfg.LogLevel())
			logger := log.WithPrefix("physcene")

			game, err := NewGame(cfg, GameOptions{
				Map:    mapPath,
				Script: scriptPath,
				Watch:  watch,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			defer game.Close()

			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetWindowSize(cfg.Render.ViewportW*2, cfg.Render.ViewportH*2)
			ebiten.SetWindowTitle("physcene")
			ebiten.SetTPS(int(1/cfg.Physics.Step + 0.5))
			return ebiten.RunGame(game)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	rootCmd.Flags().StringVar(&mapPath, "map", "arena.json", "map to load when no script is given")
	rootCmd.Flags().StringVar(&scriptPath, "script", "demo.tengo", "script that drives the scene; empty for none")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "draw physics shapes")
	rootCmd.Flags().BoolVar(&watch, "watch", true, "reload maps, prefabs and scripts when they change on disk")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

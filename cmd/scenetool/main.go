package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "scenetool",
		Short:        "inspect maps, prefabs and scripts without a window",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "log level")

	rootCmd.AddCommand(newValidateCmd(), newPathCmd(), newSimulateCmd())
	return rootCmd
}

// loadConfig returns the config named by --config, or the defaults.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "scenetool"})
	if lvl, err := log.ParseLevel(logLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func parsePoint(s string) (x, y float64, err error) {
	if _, err := fmt.Sscanf(s, "%g,%g", &x, &y); err != nil {
		return 0, 0, fmt.Errorf("point %q: want x,y", s)
	}
	return x, y, nil
}

func parseSize(s string) (w, h float64, err error) {
	if _, err := fmt.Sscanf(s, "%gx%g", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: want WxH with positive sides", s)
	}
	return w, h, nil
}

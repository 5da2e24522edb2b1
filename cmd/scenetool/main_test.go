package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/config"
	"github.com/milk9111/physcene/scene"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateBundled(t *testing.T) {
	out, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	for _, name := range []string{"levels/arena.json", "prefabs/hero.yaml", "prefabs/probe.yaml", "scripts/demo.tengo"} {
		if !strings.Contains(out, name) {
			t.Errorf("output does not mention %s:\n%s", name, out)
		}
	}
	if strings.Contains(out, "FAIL") {
		t.Fatalf("bundled files failed:\n%s", out)
	}
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"good.json":  `{"width": 2, "height": 1, "tile_width": 16, "tile_height": 16, "layers": [{"name": "g", "collision": true, "tiles": [1, 1]}]}`,
		"bad.json":   `{"width": 0}`,
		"good.yaml":  "name: ball\nshapes:\n  - key: main\n    type: circle\n    radius: 4\n",
		"bad.yaml":   "name: rocket\nkind: jet\n",
		"good.tengo": "update := func(scene, state, dt) {}\n",
		"bad.tengo":  "update := func(\n",
		"notes.txt":  "hello",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		file string
		ok   bool
	}{
		{"good.json", true},
		{"bad.json", false},
		{"good.yaml", true},
		{"bad.yaml", false},
		{"good.tengo", true},
		{"bad.tengo", false},
		{"notes.txt", false},
		{"missing.json", false},
	}
	for _, c := range cases {
		t.Run(c.file, func(t *testing.T) {
			out, err := execute(t, "validate", filepath.Join(dir, c.file))
			if c.ok && err != nil {
				t.Fatalf("validate %s: %v\n%s", c.file, err, out)
			}
			if !c.ok {
				if !errors.Is(err, errValidation) {
					t.Fatalf("validate %s err = %v, want errValidation", c.file, err)
				}
				if !strings.Contains(out, "FAIL") {
					t.Fatalf("failure not reported:\n%s", out)
				}
			}
		})
	}
}

func TestPathCommand(t *testing.T) {
	out, err := execute(t, "path")
	if err != nil {
		t.Fatalf("path: %v\n%s", err, out)
	}
	for _, want := range []string{"steps:", "(560,416)", "S", "G", "#"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "path", "--to", "2000,2000"); err == nil {
		t.Fatalf("destination outside the map should fail")
	}
	if _, err := execute(t, "path", "--from", "nope"); err == nil {
		t.Fatalf("bad point should fail")
	}
	if _, err := execute(t, "path", "--size", "0x4"); err == nil {
		t.Fatalf("bad size should fail")
	}
}

func TestSimulateFalls(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Physics.GravityY = 300
	logger := log.New(io.Discard)
	sc := scene.New(scene.OptionsFromConfig(cfg, logger))
	defer sc.Close()

	traj, err := simulate(sc, cfg.Physics.Step, simulateOptions{
		mapPath: "arena.json",
		prefab:  "crate",
		at:      "320,64",
		steps:   30,
	}, logger)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(traj.ys) != 30 {
		t.Fatalf("samples = %d, want 30", len(traj.ys))
	}
	if traj.final.Y <= 64 {
		t.Fatalf("crate did not fall: final %v", traj.final)
	}
	if traj.draws == 0 {
		t.Fatalf("nothing was drawn")
	}
}

func TestSimulateCommand(t *testing.T) {
	out, err := execute(t, "simulate", "--steps", "20", "--gravity", "200")
	if err != nil {
		t.Fatalf("simulate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "y (px)") {
		t.Fatalf("no trajectory plot:\n%s", out)
	}

	out, err = execute(t, "simulate", "--steps", "20", "--script", "demo.tengo")
	if err != nil {
		t.Fatalf("simulate --script: %v\n%s", err, out)
	}
	if !strings.Contains(out, "final:") {
		t.Fatalf("no summary:\n%s", out)
	}

	if _, err := execute(t, "simulate", "--prefab", "nothing"); err == nil {
		t.Fatalf("unknown prefab should fail")
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  step: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", path, "path"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

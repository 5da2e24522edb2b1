package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/config"
	"github.com/milk9111/physcene/prefabs"
)

func newTestGame(t *testing.T, opts GameOptions) *Game {
	t.Helper()
	old := prefabs.DiskDir
	t.Cleanup(func() { prefabs.DiskDir = old })

	cfg := config.DefaultConfig()
	cfg.Paths.Prefabs = t.TempDir()
	opts.Logger = log.New(io.Discard)
	g, err := NewGame(cfg, opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func TestNewGameLoadsMap(t *testing.T) {
	g := newTestGame(t, GameOptions{Map: "arena.json"})
	if got := g.scene.MapPath(); got != "arena.json" {
		t.Fatalf("map path = %q", got)
	}
	if g.runtime.Path() != "" {
		t.Fatalf("no script was requested")
	}
}

func TestNewGameScriptError(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := NewGame(cfg, GameOptions{Script: "missing.tengo", Logger: log.New(io.Discard)}); err == nil {
		t.Fatalf("missing script should fail")
	}
}

func TestReloadMap(t *testing.T) {
	g := newTestGame(t, GameOptions{Map: "arena.json"})

	dir := t.TempDir()
	edited := filepath.Join(dir, "arena.json")
	if err := os.WriteFile(edited, []byte(`{"width": 3, "height": 2, "tile_width": 32, "tile_height": 32}`), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(other, []byte(`{"width": 5, "height": 5, "tile_width": 32, "tile_height": 32}`), 0o644); err != nil {
		t.Fatal(err)
	}

	g.reload(prefabs.Change{Path: other, Kind: prefabs.ChangeMap})
	if g.scene.TileMap().Width != 20 {
		t.Fatalf("unrelated map change replaced the level")
	}
	g.reload(prefabs.Change{Path: edited, Kind: prefabs.ChangeMap})
	if g.scene.TileMap().Width != 3 {
		t.Fatalf("edited map was not reloaded")
	}
}

func TestReloadScript(t *testing.T) {
	g := newTestGame(t, GameOptions{Script: "demo.tengo"})
	if err := g.runtime.Update(g.dt); err != nil {
		t.Fatalf("Update: %v", err)
	}
	g.reload(prefabs.Change{Path: "prefabs/scripts/demo.tengo", Kind: prefabs.ChangeScript})
	if err := g.runtime.Update(g.dt); err != nil {
		t.Fatalf("Update after reload: %v", err)
	}
	if _, ok := g.runtime.StateValue("hero"); !ok {
		t.Fatalf("state lost across reload")
	}
}

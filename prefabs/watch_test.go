package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		kind ChangeKind
		ok   bool
	}{
		{"prefabs/hero.yaml", ChangePrefab, true},
		{"prefabs/hero.YML", ChangePrefab, true},
		{"prefabs/scripts/demo.tengo", ChangeScript, true},
		{"levels/arena.json", ChangeMap, true},
		{"assets/hero.png", 0, false},
		{"notes.txt~", 0, false},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			kind, ok := classify(c.path)
			if ok != c.ok || kind != c.kind {
				t.Fatalf("classify(%q) = %v, %v; want %v, %v", c.path, kind, ok, c.kind, c.ok)
			}
		})
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "ignored.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "arena.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ch := <-w.Events:
		if ch.Path != path || ch.Kind != ChangeMap {
			t.Fatalf("got %+v, want map change for %s", ch, path)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	select {
	case _, ok := <-w.Events:
		if ok {
			t.Fatalf("Events should be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Events not closed after Close")
	}
}

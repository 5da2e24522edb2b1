package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/milk9111/physcene/component"
	"github.com/milk9111/physcene/levels"
	"github.com/milk9111/physcene/tilemap"
)

// LoadTileMap replaces the current map. The new map is parsed first; if that
// fails the old map stays. While the world is locked the swap happens at the
// end of the step.
func (s *Scene) LoadTileMap(path string) error {
	if s == nil {
		return errors.New("scene: nil scene")
	}
	m, err := s.readMap(path)
	if err != nil {
		return err
	}
	if s.world.IsLocked() {
		s.pendingMap = m
		s.pendingPath = path
		return nil
	}
	s.applyMap(m, path)
	return nil
}

// MapPath is the path the current map was loaded from.
func (s *Scene) MapPath() string {
	if s == nil {
		return ""
	}
	return s.mapPath
}

// readMap tries path as given, then under the map directory, then the
// bundled levels.
func (s *Scene) readMap(path string) (*tilemap.Map, error) {
	candidates := []string{path}
	if s.mapDir != "" && !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join(s.mapDir, path))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return tilemap.Load(p, s.logger)
		}
	}
	m, err := levels.Load(filepath.Base(path), s.logger)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scene: map %s: %w", path, fs.ErrNotExist)
		}
		return nil, err
	}
	return m, nil
}

func (s *Scene) applyMap(m *tilemap.Map, path string) {
	for _, id := range s.static {
		s.DestroyBody(id)
	}
	s.static = nil
	clear(s.mapObjects)

	s.tiles = m
	s.mapPath = path
	bounds := m.Bounds()
	s.world.SetBounds(bounds)
	s.camera.SetWorldBounds(bounds)

	for _, desc := range m.StaticDescriptors() {
		id := component.NextBodyID()
		if !s.world.CreateStaticBody(id, desc) {
			s.logger.Warn("static body skipped", "name", desc.Name, "object", desc.ObjectID)
			continue
		}
		s.bodies.Set(id, desc.Instantiate(id))
		s.static = append(s.static, id)
		if desc.HasObjectID {
			s.mapObjects[desc.ObjectID] = id
		}
	}
	s.logger.Debug("map loaded", "size", fmt.Sprintf("%dx%d", m.Width, m.Height), "static", len(s.static))
}

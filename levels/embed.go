package levels

import (
	"embed"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/tilemap"
)

//go:embed *.json
var LevelsFS embed.FS

// Load reads one of the bundled maps, e.g. "arena.json".
func Load(name string, logger *log.Logger) (*tilemap.Map, error) {
	return tilemap.LoadFS(LevelsFS, name, logger)
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/milk9111/physcene/levels"
	"github.com/milk9111/physcene/prefabs"
	"github.com/milk9111/physcene/script"
	"github.com/milk9111/physcene/tilemap"
	"github.com/spf13/cobra"
)

var errValidation = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "check maps (.json), prefabs (.yaml) and scripts (.tengo); no files checks the bundled ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			var results []result
			if len(args) == 0 {
				results = validateBundled(logger)
			} else {
				for _, path := range args {
					results = append(results, validateFile(path, logger))
				}
			}
			return report(cmd.OutOrStdout(), results)
		},
	}
}

type result struct {
	name   string
	detail string
	err    error
}

func validateFile(path string, logger *log.Logger) result {
	data, err := os.ReadFile(path)
	if err != nil {
		return result{name: path, err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return checkMap(path, data, logger)
	case ".yaml", ".yml":
		return checkPrefab(path, data)
	case ".tengo":
		return checkScript(path, data)
	}
	return result{name: path, err: fmt.Errorf("unknown file type %q", filepath.Ext(path))}
}

func validateBundled(logger *log.Logger) []result {
	var out []result

	maps, err := levels.LevelsFS.ReadDir(".")
	if err != nil {
		return []result{{name: "levels", err: err}}
	}
	for _, e := range maps {
		data, err := levels.LevelsFS.ReadFile(e.Name())
		if err != nil {
			out = append(out, result{name: "levels/" + e.Name(), err: err})
			continue
		}
		out = append(out, checkMap("levels/"+e.Name(), data, logger))
	}

	names, err := prefabs.Names()
	if err != nil {
		return append(out, result{name: "prefabs", err: err})
	}
	for _, name := range names {
		data, err := prefabs.Load(name)
		if err != nil {
			out = append(out, result{name: "prefabs/" + name, err: err})
			continue
		}
		out = append(out, checkPrefab("prefabs/"+name, data))
	}

	scripts, err := prefabs.ScriptsFS.ReadDir("scripts")
	if err != nil {
		return append(out, result{name: "scripts", err: err})
	}
	for _, e := range scripts {
		data, err := prefabs.LoadScript(e.Name())
		if err != nil {
			out = append(out, result{name: "scripts/" + e.Name(), err: err})
			continue
		}
		out = append(out, checkScript("scripts/"+e.Name(), data))
	}
	return out
}

func checkMap(name string, data []byte, logger *log.Logger) result {
	m, err := tilemap.Parse(data, logger)
	if err != nil {
		return result{name: name, err: err}
	}
	shapes := 0
	descs := m.StaticDescriptors()
	for _, d := range descs {
		shapes += len(d.Shapes)
	}
	return result{name: name, detail: fmt.Sprintf("%dx%d tiles, %d layers, %d static bodies, %d shapes", m.Width, m.Height, len(m.Layers), len(descs), shapes)}
}

func checkPrefab(name string, data []byte) result {
	proto, err := prefabs.ParseBodyPrototype(data)
	if err != nil {
		return result{name: name, err: err}
	}
	return result{name: name, detail: fmt.Sprintf("%s %s, %d shapes", proto.Kind, proto.Name, len(proto.Shapes))}
}

func checkScript(name string, data []byte) result {
	if err := script.Check(data); err != nil {
		return result{name: name, err: err}
	}
	return result{name: name, detail: "compiles"}
}

func report(w io.Writer, results []result) error {
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "%s %s: %v\n", failStyle.Render("FAIL"), r.name, r.err)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("ok  "), r.name, labelStyle.Render(r.detail))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errValidation, failed, len(results))
	}
	return nil
}

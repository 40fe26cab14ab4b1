package template

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/comfyctl/internal/graph"
	"github.com/zjrosen/comfyctl/internal/log"
)

// LoadBuiltins loads the workflow templates bundled with the binary.
func LoadBuiltins() ([]Template, error) {
	fsys, err := BuiltinTemplatesFS()
	if err != nil {
		return nil, fmt.Errorf("opening embedded templates: %w", err)
	}
	return loadFromFS(fsys, SourceBuiltIn, "")
}

func loadFromFS(fsys fs.FS, source Source, dir string) ([]Template, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading template directory: %w", err)
	}

	var templates []Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading template file %s: %w", entry.Name(), err)
		}

		// Templates that don't parse as workflow graphs are skipped, not
		// fatal: one broken user file shouldn't hide the rest.
		if _, err := graph.ParsePrompt(content); err != nil {
			log.Warn(log.CatTemplate, "skipping unparseable template", "file", entry.Name(), "error", err)
			continue
		}

		t := Template{
			ID:     strings.TrimSuffix(entry.Name(), ".json"),
			Source: source,
			raw:    content,
		}
		if dir != "" {
			t.FilePath = filepath.Join(dir, entry.Name())
		}
		templates = append(templates, t)
	}

	return templates, nil
}

// LoadUserTemplatesFromDir loads user-defined templates from a specific
// directory. Returns an empty slice if the directory doesn't exist.
func LoadUserTemplatesFromDir(dir string) ([]Template, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template path is not a directory: %s", dir)
	}

	return loadFromFS(os.DirFS(dir), SourceUser, dir)
}

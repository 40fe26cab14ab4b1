package template

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zjrosen/comfyctl/internal/log"
)

// Registry holds the merged set of built-in and user templates. A user
// template with the same id as a built-in one shadows it.
type Registry struct {
	mu        sync.RWMutex
	userDir   string
	templates map[string]Template
}

// NewRegistry loads built-ins plus the user templates under userDir. An
// empty userDir skips user templates entirely.
func NewRegistry(userDir string) (*Registry, error) {
	r := &Registry{userDir: userDir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads both template sources. Called at startup and whenever
// the watcher sees the user directory change.
func (r *Registry) Reload() error {
	builtins, err := LoadBuiltins()
	if err != nil {
		return err
	}

	var user []Template
	if r.userDir != "" {
		user, err = LoadUserTemplatesFromDir(r.userDir)
		if err != nil {
			return err
		}
	}

	merged := make(map[string]Template, len(builtins)+len(user))
	for _, t := range builtins {
		merged[t.ID] = t
	}
	for _, t := range user {
		if _, shadowed := merged[t.ID]; shadowed {
			log.Info(log.CatTemplate, "user template shadows built-in", "id", t.ID)
		}
		merged[t.ID] = t
	}

	r.mu.Lock()
	r.templates = merged
	r.mu.Unlock()

	log.Debug(log.CatTemplate, "templates loaded", "builtin", len(builtins), "user", len(user))
	return nil
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return Template{}, fmt.Errorf("no template named %q", id)
	}
	return t, nil
}

// List returns all templates sorted by id.
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

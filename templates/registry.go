package templates

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"mahjong-realm/models"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Registry holds the named board templates a game can be started from.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]models.BoardTemplate
	order     []string
}

// NewRegistry returns a registry preloaded with the built-in shapes.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]models.BoardTemplate)}
	for _, t := range Builtin() {
		if err := r.Register(t); err != nil {
			panic(fmt.Sprintf("builtin template: %v", err))
		}
	}
	return r
}

// Register adds t, replacing any template with the same name.
func (r *Registry) Register(t models.BoardTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.templates[t.Name] = t.Clone()
	return nil
}

func (r *Registry) Get(name string) (models.BoardTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return models.BoardTemplate{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t.Clone(), nil
}

// Names lists template names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

type templateFile struct {
	Templates []models.BoardTemplate `yaml:"templates"`
}

// LoadFile registers every template found in a YAML file of the form
//
//	templates:
//	  - name: tiny
//	    levels: [[[1, 1]]]
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read templates: %w", err)
	}
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse templates %s: %w", path, err)
	}
	for i, t := range f.Templates {
		if err := r.Register(t); err != nil {
			return i, fmt.Errorf("template #%d in %s: %w", i, path, err)
		}
	}
	return len(f.Templates), nil
}

package registry

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Stats contains registry statistics
type Stats struct {
	TotalApps    int            `json:"total_apps"`
	ExternalApps int            `json:"external_apps"`
	Pinned       int            `json:"pinned"`
	Categories   map[string]int `json:"categories"`
	Environment  Environment    `json:"environment"`
}

// Registry is the app catalog. It is built once at startup and never
// changes afterwards; every read returns copies.
type Registry struct {
	env   Environment
	apps  map[string]AppDescriptor
	order []string
}

// New builds a registry from apps. Later entries replace earlier ones
// with the same id but keep the earlier position.
func New(env Environment, apps []AppDescriptor) (*Registry, error) {
	r := &Registry{
		env:  env,
		apps: make(map[string]AppDescriptor, len(apps)),
	}
	for _, app := range apps {
		if err := app.Validate(); err != nil {
			return nil, fmt.Errorf("invalid app descriptor: %w", err)
		}
		if _, exists := r.apps[app.ID]; !exists {
			r.order = append(r.order, app.ID)
		}
		r.apps[app.ID] = app
	}
	return r, nil
}

// Build creates the registry from the built-in catalog plus any descriptor
// files in dir. An empty dir uses the built-in catalog only.
func Build(env Environment, dir string, logger *zap.Logger) (*Registry, error) {
	apps := Defaults()
	if dir != "" {
		seeded, err := NewSeeder(dir, logger).Load()
		if err != nil {
			return nil, err
		}
		apps = append(apps, seeded...)
	}
	return New(env, apps)
}

// Environment returns the environment URLs resolve for.
func (r *Registry) Environment() Environment {
	return r.env
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (AppDescriptor, error) {
	app, ok := r.apps[id]
	if !ok {
		return AppDescriptor{}, fmt.Errorf("%w: %s", ErrAppNotFound, id)
	}
	return app, nil
}

// List returns every descriptor in catalog order.
func (r *Registry) List() []AppDescriptor {
	out := make([]AppDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.apps[id])
	}
	return out
}

// IDs returns every app id in catalog order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns the URL of id for the registry's environment.
func (r *Registry) Resolve(id string) (string, error) {
	return r.ResolveFor(id, r.env)
}

// ResolveFor returns the URL of id for env.
func (r *Registry) ResolveFor(id string, env Environment) (string, error) {
	app, err := r.Get(id)
	if err != nil {
		return "", err
	}
	url := app.URLFor(env)
	if url == "" {
		return "", fmt.Errorf("app %s has no url for %s", id, env)
	}
	return url, nil
}

// Stats returns registry statistics
func (r *Registry) Stats() Stats {
	s := Stats{
		TotalApps:   len(r.apps),
		Categories:  make(map[string]int),
		Environment: r.env,
	}
	for _, app := range r.apps {
		if app.IsExternal {
			s.ExternalApps++
		}
		if app.Pinned {
			s.Pinned++
		}
		if app.Category != "" {
			s.Categories[app.Category]++
		}
	}
	return s
}

// Categories returns the sorted distinct categories.
func (r *Registry) Categories() []string {
	seen := make(map[string]struct{})
	for _, app := range r.apps {
		if app.Category != "" {
			seen[app.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

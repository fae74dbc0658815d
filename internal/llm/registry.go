package llm

import (
	"sort"
	"strings"
)

// Registry holds the configured providers, keyed by normalized name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a provider under its normalized name. Nil providers and
// blank names are ignored; a later registration replaces an earlier one.
func (r *Registry) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	name := normalizeName(p.Name())
	if name == "" {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[name] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	if r == nil || len(r.providers) == 0 {
		return nil, false
	}
	p, ok := r.providers[normalizeName(name)]
	return p, ok
}

// Names lists the registered provider names, sorted.
func (r *Registry) Names() []string {
	if r == nil || len(r.providers) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

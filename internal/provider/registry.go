package provider

import (
	"sort"
	"strings"
)

// Factory constructs a fresh provider instance.
type Factory func() Provider

// Registry maps provider names to factories. Adding a provider means
// implementing the Provider interface and registering a factory here.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name. Later registrations for the
// same name replace earlier ones.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// New instantiates the named provider, or returns false if the name is not
// registered.
func (r *Registry) New(name string) (Provider, bool) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Names lists the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

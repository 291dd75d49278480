package strategy

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the selectable scoring policies
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry creates an empty policy registry
func NewRegistry() *Registry {
	return &Registry{
		policies: make(map[string]Policy),
	}
}

// Register adds a policy, replacing any policy with the same name
func (r *Registry) Register(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name()] = p
}

// Get retrieves a policy by name
func (r *Registry) Get(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

// Select retrieves a policy by name and initialises it with cfg
func (r *Registry) Select(name string, cfg Config) (Policy, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (available: %v)", name, r.Names())
	}
	if err := p.Init(cfg); err != nil {
		return nil, fmt.Errorf("initialising policy %s: %w", name, err)
	}
	return p, nil
}

// Names returns the registered policy names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

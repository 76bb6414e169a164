package layout

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry holds named layouts. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewRegistry returns a registry preloaded with the given layouts.
func NewRegistry(layouts ...Layout) (*Registry, error) {
	r := &Registry{layouts: make(map[string]Layout)}
	for _, l := range layouts {
		if err := r.Register(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates l and adds it, replacing any layout of the same name.
func (r *Registry) Register(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[l.Name] = l
	return nil
}

// Get returns the layout called name.
func (r *Registry) Get(name string) (Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[name]
	if !ok {
		return Layout{}, errors.Wrapf(ErrUnknownLayout, "%q", name)
	}
	return l, nil
}

// Names returns the registered layout names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.layouts))
	for n := range r.layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns the registered layouts sorted by name.
func (r *Registry) All() []Layout {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Layout, 0, len(names))
	for _, n := range names {
		if l, ok := r.layouts[n]; ok {
			out = append(out, l)
		}
	}
	return out
}

package table

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps table ids to their orchestrators. It is read-mostly; each
// orchestrator serializes its own state.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Orchestrator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Orchestrator)}
}

// Add registers o under its id.
func (r *Registry) Add(o *Orchestrator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[o.ID()]; exists {
		return fmt.Errorf("table %s already exists", o.ID())
	}
	r.tables[o.ID()] = o
	return nil
}

// Get returns the orchestrator for id.
func (r *Registry) Get(id string) (*Orchestrator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.tables[id]
	return o, ok
}

// Remove closes and unregisters the table. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	o, ok := r.tables[id]
	delete(r.tables, id)
	r.mu.Unlock()

	if ok {
		o.Close()
	}
	return ok
}

// IDs returns the registered table ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every table in id order.
func (r *Registry) Each(fn func(*Orchestrator)) {
	for _, id := range r.IDs() {
		if o, ok := r.Get(id); ok {
			fn(o)
		}
	}
}

// Len returns the number of tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Close closes every table and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	tables := r.tables
	r.tables = make(map[string]*Orchestrator)
	r.mu.Unlock()

	for _, o := range tables {
		o.Close()
	}
}

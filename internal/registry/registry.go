// Package registry keeps the process-wide set of trigger definitions and
// the live channel adapter bound to each of them.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shaharia-lab/notifier/internal/channel"
	"github.com/shaharia-lab/notifier/internal/storage"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

// Registry maps trigger names to definitions and adapters. Every successful
// registration persists the full snapshot before it becomes visible.
type Registry struct {
	store   storage.TriggerStore
	catalog *channel.Catalog
	logger  *slog.Logger

	mu       sync.RWMutex
	order    []string
	defs     map[string]*trigger.Definition
	adapters map[string]channel.Adapter
}

// New returns an empty Registry. Call Load to populate it from store.
func New(store storage.TriggerStore, catalog *channel.Catalog, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:    store,
		catalog:  catalog,
		logger:   logger,
		defs:     make(map[string]*trigger.Definition),
		adapters: make(map[string]channel.Adapter),
	}
}

// Load replaces the in-memory registry with the persisted snapshot. A
// snapshot that can't be read leaves the registry empty and is reported
// through the returned error and a warning log.
func (r *Registry) Load(ctx context.Context) error {
	defs, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("trigger snapshot unreadable, starting with an empty registry", "error", err)
		r.mu.Lock()
		r.replace(nil)
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	r.replace(defs)
	n := len(r.order)
	r.mu.Unlock()

	r.logger.Info("trigger registry loaded", "triggers", n)
	return nil
}

// Register adds def. A name already in use yields a ConflictError. A
// snapshot that fails to persist yields a PersistenceError and leaves the
// registry as it was.
func (r *Registry) Register(ctx context.Context, def *trigger.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return &trigger.ConflictError{Name: def.Name}
	}

	next := make([]*trigger.Definition, 0, len(r.order)+1)
	for _, name := range r.order {
		next = append(next, r.defs[name])
	}
	next = append(next, def.Clone())

	if err := r.store.Save(ctx, next); err != nil {
		r.logger.Error("persisting trigger snapshot failed", "trigger", def.Name, "error", err)
		return &trigger.PersistenceError{Err: err}
	}

	// Adapters are rebuilt for every trigger, which restarts state
	// sequences of already registered triggers.
	r.replace(next)
	return nil
}

// replace swaps in defs and rebuilds every adapter. Callers hold mu.
func (r *Registry) replace(defs []*trigger.Definition) {
	r.order = make([]string, 0, len(defs))
	r.defs = make(map[string]*trigger.Definition, len(defs))
	r.adapters = make(map[string]channel.Adapter, len(defs))
	for _, d := range defs {
		if d == nil {
			continue
		}
		if _, dup := r.defs[d.Name]; !dup {
			r.order = append(r.order, d.Name)
		}
		r.defs[d.Name] = d
		r.adapters[d.Name] = r.catalog.Build(d)
	}
}

// Lookup returns a copy of the definition and the adapter for name.
func (r *Registry) Lookup(name string) (*trigger.Definition, channel.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, nil, false
	}
	return def.Clone(), r.adapters[name], true
}

// List returns copies of all definitions in registration order.
func (r *Registry) List() []*trigger.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*trigger.Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name].Clone())
	}
	return out
}

// Len returns the number of registered triggers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

package channel

import (
	"sort"
	"strings"
	"sync"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// Built-in channel kinds.
const (
	KindDefault = "default"
	KindEmail   = "email"
	KindSlack   = "slack"
	KindWebhook = "webhook"
)

// Catalog is the closed table of channel kinds and their constructors.
// Lookups are case-insensitive; unknown kinds resolve to the default adapter.
type Catalog struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	deps         Deps
}

// NewCatalog returns a Catalog holding the built-in channel kinds.
func NewCatalog(deps Deps) *Catalog {
	c := &Catalog{
		constructors: make(map[string]Constructor),
		deps:         deps.withDefaults(),
	}
	c.Register(KindEmail, NewEmailAdapter)
	c.Register(KindSlack, func(def *trigger.Definition, deps Deps) Adapter {
		return NewWebhookAdapter(def, deps, SlackProviders(deps.Now))
	})
	c.Register(KindWebhook, func(def *trigger.Definition, deps Deps) Adapter {
		return NewWebhookAdapter(def, deps, nil)
	})
	return c
}

// Register adds or replaces the constructor for a channel kind.
func (c *Catalog) Register(kind string, ctor Constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constructors[strings.ToLower(kind)] = ctor
}

// Resolve returns the catalog kind serving a service tag, falling back to
// KindDefault.
func (c *Catalog) Resolve(service string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kind := strings.ToLower(strings.TrimSpace(service))
	if _, ok := c.constructors[kind]; ok {
		return kind
	}
	return KindDefault
}

// Build constructs a fresh adapter for def.
func (c *Catalog) Build(def *trigger.Definition) Adapter {
	c.mu.RLock()
	ctor, ok := c.constructors[strings.ToLower(strings.TrimSpace(def.Service))]
	c.mu.RUnlock()
	if !ok {
		return NewDefaultAdapter(def, c.deps)
	}
	return ctor(def, c.deps)
}

// Kinds lists the registered kinds, sorted.
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kinds := make([]string, 0, len(c.constructors))
	for k := range c.constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

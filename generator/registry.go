// Package generator holds the upstream models that produce pre-mortem analyses.
// Backends register a factory under a name and are built from configuration options.
package generator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sharedcode/premortem"
)

// Factory builds a generator from backend specific options.
type Factory func(cfg map[string]any) (premortem.Generator, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a backend available under name. Registering a name twice replaces the factory.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = f
}

// New builds the generator registered under name.
func New(name string, cfg map[string]any) (premortem.Generator, error) {
	mu.RLock()
	f, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("generator %q not found", name)
	}
	return f(cfg)
}

// Names returns the registered backend names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func stringOpt(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return def
}

package suppliers

import (
	"sort"
	"sync"

	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// Factory constructs one adapter instance from shared dependencies.  The
// aggregator calls it once per supplier per search, so adapters never share
// per-query state.
type Factory func(deps Deps) (Supplier, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a supplier constructable under id.  It panics on a
// duplicate id; registration happens once at init time.
func Register(id string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[id]; exists {
		panic("suppliers: duplicate registration for " + id)
	}
	registry[id] = factory
}

// New builds an adapter for id, failing with CodeSupplierUnknown when no
// factory is registered.
func New(id string, deps Deps) (Supplier, error) {
	registryMu.RLock()
	factory, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.New(errors.CodeSupplierUnknown, "unknown supplier").WithDetail(id)
	}
	return factory(deps.Normalize())
}

// IDs returns all registered supplier identifiers, sorted.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

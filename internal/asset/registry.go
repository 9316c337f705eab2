package asset

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of known assets.
type Registry struct {
	byID     map[AssetID]*Asset
	bySymbol map[string]*Asset
	byUnit   map[string]*Asset
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string]*Asset),
		byUnit:   make(map[string]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same ID is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = a
	r.bySymbol[a.Symbol()] = a
	if a.IsToken() {
		r.byUnit[a.Unit()] = a
	}
}

// Get retrieves an asset by its ID.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// MustGet retrieves an asset by its ID, panics if not found.
func (r *Registry) MustGet(id AssetID) *Asset {
	a, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("asset: %s not found in registry", id))
	}
	return a
}

// GetBySymbol retrieves an asset by its ticker symbol.
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[symbol]
	return a, ok
}

// GetByUnit retrieves a token by its on-ledger unit string
// (policy id + hex asset name). The native coin is not addressable
// by unit; use GetNative.
func (r *Registry) GetByUnit(unit string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byUnit[unit]
	return a, ok
}

// GetNative retrieves the ledger's native coin.
func (r *Registry) GetNative() (*Asset, bool) {
	return r.Get(NativeAssetID)
}

// All returns all registered assets.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, 0, len(r.byID))
	for _, a := range r.byID {
		result = append(result, a)
	}
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

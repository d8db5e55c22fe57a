package server

import (
	"sync"

	"github.com/fleetops/capd/capability"
)

// RegistryGuard wraps the capability registry in a reader/writer lock. The
// registry itself is synchronization-agnostic; this is the integration
// layer's exclusive-access wrapper. Callbacks must not retain registry
// pointers past the call.
type RegistryGuard struct {
	mu  sync.RWMutex
	reg *capability.Registry
}

// NewRegistryGuard creates a guard around an empty registry.
func NewRegistryGuard() *RegistryGuard {
	return &RegistryGuard{reg: capability.NewRegistry()}
}

// View runs fn under the read lock.
func (g *RegistryGuard) View(fn func(*capability.Registry)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.reg)
}

// Update runs fn under the write lock.
func (g *RegistryGuard) Update(fn func(*capability.Registry)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.reg)
}

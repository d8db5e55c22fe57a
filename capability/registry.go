package capability

import "sort"

// Registry is a keyed collection of capability sets, one per worker id.
// It is not safe for concurrent use; callers sharing a Registry across
// goroutines must wrap it in a lock.
type Registry struct {
	workers map[string]*Capabilities
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]*Capabilities)}
}

// Register stores a capability set keyed by its id. Registering an id that
// already exists overwrites the previous entry, last write wins. Empty ids
// are accepted; validation belongs to the boundary, not the data model.
func (r *Registry) Register(caps Capabilities) {
	c := caps
	r.workers[caps.ID] = &c
}

// Get returns the stored capability set for id, or nil if unregistered.
// The returned pointer is owned by the registry and must not outlive it.
func (r *Registry) Get(id string) *Capabilities {
	return r.workers[id]
}

// Contains reports whether a worker id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.workers[id]
	return ok
}

// Unregister removes a worker and reports whether it was present.
func (r *Registry) Unregister(id string) bool {
	if _, ok := r.workers[id]; !ok {
		return false
	}
	delete(r.workers, id)
	return true
}

// Clear removes every registered worker.
func (r *Registry) Clear() {
	r.workers = make(map[string]*Capabilities)
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	return len(r.workers)
}

// ListIDs returns every registered worker id in unspecified order.
func (r *Registry) ListIDs() []string {
	ids := make([]string, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	return ids
}

// FindWithCapability returns every worker whose capType bucket has at least
// one tool satisfied by check. A full linear scan; cost grows with workers
// times tools per worker.
func (r *Registry) FindWithCapability(capType string, check ToolChecker) []*Capabilities {
	var out []*Capabilities
	for _, caps := range r.workers {
		if caps.HasCapability(capType, check) {
			out = append(out, caps)
		}
	}
	return out
}

// FindWithAllRequiredTools returns every worker whose required tools are
// all satisfied by check.
func (r *Registry) FindWithAllRequiredTools(check ToolChecker) []*Capabilities {
	var out []*Capabilities
	for _, caps := range r.workers {
		if caps.HasAllRequiredTools(check) {
			out = append(out, caps)
		}
	}
	return out
}

// FindWithFlag returns every worker with the named flag set.
func (r *Registry) FindWithFlag(flag string) []*Capabilities {
	var out []*Capabilities
	for _, caps := range r.workers {
		if caps.HasFlag(flag) {
			out = append(out, caps)
		}
	}
	return out
}

// FindWithMetadata returns every worker whose metadata has key set to value.
func (r *Registry) FindWithMetadata(key, value string) []*Capabilities {
	var out []*Capabilities
	for _, caps := range r.workers {
		if v, ok := caps.MetadataValue(key); ok && v == value {
			out = append(out, caps)
		}
	}
	return out
}

// FindWithPermission returns every worker with at least one tool in the
// capType bucket granting the named permission.
func (r *Registry) FindWithPermission(capType, permission string) []*Capabilities {
	var out []*Capabilities
	for _, caps := range r.workers {
		if caps.HasPermission(capType, permission) {
			out = append(out, caps)
		}
	}
	return out
}

// FindVerified returns every worker whose tools all carry valid
// attestations.
func (r *Registry) FindVerified() []*Capabilities {
	var out []*Capabilities
	for _, caps := range r.workers {
		if caps.VerifyAll() {
			out = append(out, caps)
		}
	}
	return out
}

// VerifyAllWorkers maps each worker id to whether its capability set fully
// verifies.
func (r *Registry) VerifyAllWorkers() map[string]bool {
	results := make(map[string]bool, len(r.workers))
	for id, caps := range r.workers {
		results[id] = caps.VerifyAll()
	}
	return results
}

// RevokeWorker revokes every capability of the named worker and reports
// whether the worker was registered.
func (r *Registry) RevokeWorker(id, reason, revokedBy string) bool {
	caps, ok := r.workers[id]
	if !ok {
		return false
	}
	caps.RevokeAll(reason, revokedBy)
	return true
}

// AllToolNames returns the deduplicated, sorted set of tool names declared
// across all workers, alternatives included.
func (r *Registry) AllToolNames() []string {
	seen := make(map[string]struct{})
	for _, caps := range r.workers {
		for _, name := range caps.AllTools() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SecurityReports builds per-worker, per-tool security reports.
func (r *Registry) SecurityReports() map[string]map[string]SecurityReport {
	reports := make(map[string]map[string]SecurityReport, len(r.workers))
	for id, caps := range r.workers {
		reports[id] = caps.SecurityReports()
	}
	return reports
}

// RegistryStats summarizes the whole registry.
type RegistryStats struct {
	TotalWorkers       int `json:"total_workers"`
	VerifiedWorkers    int `json:"verified_workers"`
	TotalTools         int `json:"total_tools"`
	TotalRequiredTools int `json:"total_required_tools"`
	TotalVerifiedTools int `json:"total_verified_tools"`
}

// Stats aggregates per-worker statistics across the registry.
func (r *Registry) Stats() RegistryStats {
	stats := RegistryStats{TotalWorkers: len(r.workers)}
	for _, caps := range r.workers {
		s := caps.Stats()
		stats.TotalTools += s.TotalTools
		stats.TotalRequiredTools += s.RequiredTools
		stats.TotalVerifiedTools += s.VerifiedTools
		if caps.VerifyAll() {
			stats.VerifiedWorkers++
		}
	}
	return stats
}

// Package checker provides tool availability predicates for capability
// queries. The matching engine treats a checker as an opaque pure function;
// these constructors cover the common backings: a PATH probe, a static
// allow-list, and a memoizing wrapper for repeated scans.
package checker

import (
	"os/exec"
	"sync"

	"github.com/fleetops/capd/capability"
)

// FromPath returns a checker backed by exec.LookPath: a tool is available
// if an executable with that name is on the PATH.
func FromPath() capability.ToolChecker {
	return func(name string) bool {
		_, err := exec.LookPath(name)
		return err == nil
	}
}

// FromSet returns a checker that accepts exactly the given tool names.
func FromSet(names ...string) capability.ToolChecker {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// Cached wraps a checker with per-name memoization. A registry scan invokes
// the predicate once per tool name encountered; caching amortizes that for
// expensive probes. Results never expire — build a fresh checker when the
// environment changes.
func Cached(check capability.ToolChecker) capability.ToolChecker {
	var results sync.Map // map[string]bool
	return func(name string) bool {
		if v, ok := results.Load(name); ok {
			return v.(bool)
		}
		available := check(name)
		results.Store(name, available)
		return available
	}
}

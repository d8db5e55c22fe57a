// Package capability holds the worker capability data model and matching
// engine: what tools a worker declares (with fallback alternatives),
// whether a declaration satisfies a caller-supplied availability predicate,
// and a registry that answers "which workers can do X" queries.
//
// The package does no synchronization of its own. A Registry shared across
// goroutines must be wrapped in a lock by the caller.
package capability

// Capabilities is one worker's full declaration: five categorized tool
// buckets, feature flags, and free-form metadata. Builder methods take the
// value and return an updated copy, so chained construction never exposes a
// partially built set.
type Capabilities struct {
	ID string `json:"id"`

	StaticAnalysisTools   []ToolCapability `json:"static_analysis_tools"`
	SecurityScanningTools []ToolCapability `json:"security_scanning_tools"`
	DynamicAnalysisTools  []ToolCapability `json:"dynamic_analysis_tools"`
	FuzzingTools          []ToolCapability `json:"fuzzing_tools"`
	TestFrameworkTools    []ToolCapability `json:"test_framework_tools"`

	Flags    map[string]bool   `json:"flags"`
	Metadata map[string]string `json:"metadata"`
}

// New creates an empty capability set with the given id.
func New(id string) Capabilities {
	return Capabilities{
		ID:       id,
		Flags:    make(map[string]bool),
		Metadata: make(map[string]string),
	}
}

// WithStaticAnalysis declares a static analysis tool. Duplicate tool names
// within a bucket are kept as-is, not merged.
func (c Capabilities) WithStaticAnalysis(tool string, required bool) Capabilities {
	c.StaticAnalysisTools = append(c.StaticAnalysisTools, NewTool(tool, required))
	return c
}

// WithSecurityTool declares a security scanning tool.
func (c Capabilities) WithSecurityTool(tool string, required bool) Capabilities {
	c.SecurityScanningTools = append(c.SecurityScanningTools, NewTool(tool, required))
	return c
}

// WithDynamicTool declares a dynamic analysis tool.
func (c Capabilities) WithDynamicTool(tool string, required bool) Capabilities {
	c.DynamicAnalysisTools = append(c.DynamicAnalysisTools, NewTool(tool, required))
	return c
}

// WithFuzzingTool declares a fuzzing tool.
func (c Capabilities) WithFuzzingTool(tool string, required bool) Capabilities {
	c.FuzzingTools = append(c.FuzzingTools, NewTool(tool, required))
	return c
}

// WithTestFramework declares a test framework tool.
func (c Capabilities) WithTestFramework(tool string, required bool) Capabilities {
	c.TestFrameworkTools = append(c.TestFrameworkTools, NewTool(tool, required))
	return c
}

// WithTool declares a generic tool. Generic tools live in the static
// analysis bucket.
func (c Capabilities) WithTool(tool string, required bool) Capabilities {
	c.StaticAnalysisTools = append(c.StaticAnalysisTools, NewTool(tool, required))
	return c
}

// WithAlternative declares an optional tool with interchangeable
// substitutes. Any one of the names satisfies the requirement; expressing
// "A and (B or C)" takes two separate declarations.
func (c Capabilities) WithAlternative(tool string, alternatives ...string) Capabilities {
	c.StaticAnalysisTools = append(c.StaticAnalysisTools,
		NewTool(tool, false).WithAlternatives(alternatives...))
	return c
}

// WithCustomTool appends a fully built ToolCapability to the bucket for
// capType. Unknown types fall back to the static analysis bucket.
func (c Capabilities) WithCustomTool(capType string, tool ToolCapability) Capabilities {
	switch capType {
	case TypeSecurityScanning:
		c.SecurityScanningTools = append(c.SecurityScanningTools, tool)
	case TypeDynamicAnalysis:
		c.DynamicAnalysisTools = append(c.DynamicAnalysisTools, tool)
	case TypeFuzzing:
		c.FuzzingTools = append(c.FuzzingTools, tool)
	case TypeTestFramework:
		c.TestFrameworkTools = append(c.TestFrameworkTools, tool)
	default:
		c.StaticAnalysisTools = append(c.StaticAnalysisTools, tool)
	}
	return c
}

// WithFlag sets a capability flag. Flags absent from the map read as false.
func (c Capabilities) WithFlag(flag string) Capabilities {
	if c.Flags == nil {
		c.Flags = make(map[string]bool)
	}
	c.Flags[flag] = true
	return c
}

// WithMetadata sets a metadata entry. A repeated key overwrites silently.
func (c Capabilities) WithMetadata(key, value string) Capabilities {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
	return c
}

// bucket returns the tool slice for a capability type, or nil for types
// this package does not know about.
func (c Capabilities) bucket(capType string) []ToolCapability {
	switch capType {
	case TypeStaticAnalysis:
		return c.StaticAnalysisTools
	case TypeSecurityScanning:
		return c.SecurityScanningTools
	case TypeDynamicAnalysis:
		return c.DynamicAnalysisTools
	case TypeFuzzing:
		return c.FuzzingTools
	case TypeTestFramework:
		return c.TestFrameworkTools
	default:
		return nil
	}
}

// buckets returns all five tool buckets in declaration order.
func (c Capabilities) buckets() [][]ToolCapability {
	return [][]ToolCapability{
		c.StaticAnalysisTools,
		c.SecurityScanningTools,
		c.DynamicAnalysisTools,
		c.FuzzingTools,
		c.TestFrameworkTools,
	}
}

// HasCapability reports whether at least one tool in the capType bucket is
// satisfied by check. An unknown type or an empty bucket is never
// satisfied, even by a predicate that accepts everything.
func (c Capabilities) HasCapability(capType string, check ToolChecker) bool {
	tools := c.bucket(capType)
	if len(tools) == 0 {
		return false
	}
	for _, t := range tools {
		if t.IsSatisfied(check) {
			return true
		}
	}
	return false
}

// HasAllRequiredTools reports whether every required tool across all
// buckets is satisfied by check. Optional tools never fail this check, and
// a set with no required tools passes vacuously.
func (c Capabilities) HasAllRequiredTools(check ToolChecker) bool {
	for _, bucket := range c.buckets() {
		for _, t := range bucket {
			if t.Required && !t.IsSatisfied(check) {
				return false
			}
		}
	}
	return true
}

// AllTools returns every primary and alternative tool name across all
// buckets, in declaration order. Duplicates are preserved.
func (c Capabilities) AllTools() []string {
	var tools []string
	for _, bucket := range c.buckets() {
		for _, t := range bucket {
			tools = append(tools, t.ToolName)
			tools = append(tools, t.Alternatives...)
		}
	}
	return tools
}

// HasFlag reports whether the named flag is set.
func (c Capabilities) HasFlag(flag string) bool {
	return c.Flags[flag]
}

// MetadataValue returns the metadata value for key, with a presence bit.
func (c Capabilities) MetadataValue(key string) (string, bool) {
	v, ok := c.Metadata[key]
	return v, ok
}

// HasPermission reports whether at least one tool in the capType bucket
// grants the named permission.
func (c Capabilities) HasPermission(capType, permission string) bool {
	for _, t := range c.bucket(capType) {
		if t.HasPermission(permission) {
			return true
		}
	}
	return false
}

// VerifyAll reports whether every declared tool is unexpired, unrevoked,
// and carries a valid attestation.
func (c Capabilities) VerifyAll() bool {
	for _, bucket := range c.buckets() {
		for _, t := range bucket {
			if t.IsExpired() || t.IsRevoked() || !t.VerifyAttestation() {
				return false
			}
		}
	}
	return true
}

// RevokeAll revokes every tool capability in the set.
func (c *Capabilities) RevokeAll(reason, revokedBy string) {
	for _, bucket := range [][]ToolCapability{
		c.StaticAnalysisTools,
		c.SecurityScanningTools,
		c.DynamicAnalysisTools,
		c.FuzzingTools,
		c.TestFrameworkTools,
	} {
		for i := range bucket {
			bucket[i].Revoke(reason, revokedBy)
		}
	}
}

// SecurityReports builds a per-tool security report map. Duplicate tool
// names collapse to the last declaration.
func (c Capabilities) SecurityReports() map[string]SecurityReport {
	reports := make(map[string]SecurityReport)
	for _, bucket := range c.buckets() {
		for _, t := range bucket {
			reports[t.ToolName] = t.Report()
		}
	}
	return reports
}

// Clone returns a deep copy: tool slices and maps are duplicated so the
// copy can be mutated (revoked, extended) without touching the original.
func (c Capabilities) Clone() Capabilities {
	out := c
	out.StaticAnalysisTools = cloneTools(c.StaticAnalysisTools)
	out.SecurityScanningTools = cloneTools(c.SecurityScanningTools)
	out.DynamicAnalysisTools = cloneTools(c.DynamicAnalysisTools)
	out.FuzzingTools = cloneTools(c.FuzzingTools)
	out.TestFrameworkTools = cloneTools(c.TestFrameworkTools)
	if c.Flags != nil {
		out.Flags = make(map[string]bool, len(c.Flags))
		for k, v := range c.Flags {
			out.Flags[k] = v
		}
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func cloneTools(tools []ToolCapability) []ToolCapability {
	if tools == nil {
		return nil
	}
	out := make([]ToolCapability, len(tools))
	for i, t := range tools {
		out[i] = t
		if t.Alternatives != nil {
			out[i].Alternatives = append([]string(nil), t.Alternatives...)
		}
		if t.Attestation != nil {
			att := *t.Attestation
			out[i].Attestation = &att
		}
	}
	return out
}

// Stats summarizes one capability set.
type Stats struct {
	TotalTools    int `json:"total_tools"`
	RequiredTools int `json:"required_tools"`
	VerifiedTools int `json:"verified_tools"`
	FlagCount     int `json:"flags_count"`
	MetadataCount int `json:"metadata_count"`
}

// Stats counts the set's tools, required tools, attested tools, flags, and
// metadata entries.
func (c Capabilities) Stats() Stats {
	s := Stats{
		FlagCount:     len(c.Flags),
		MetadataCount: len(c.Metadata),
	}
	for _, bucket := range c.buckets() {
		for _, t := range bucket {
			s.TotalTools++
			if t.Required {
				s.RequiredTools++
			}
			if t.VerifyAttestation() {
				s.VerifiedTools++
			}
		}
	}
	return s
}

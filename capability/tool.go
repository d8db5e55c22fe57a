package capability

import "time"

// ToolChecker reports whether a named tool is currently available.
// Implementations decide what "available" means (PATH probe, allow-list,
// remote advertisement); the matching engine treats the predicate as pure
// and synchronous.
type ToolChecker func(name string) bool

// Permissions describes what a tool capability is allowed to touch and the
// resource budget it runs under.
type Permissions struct {
	FilesystemAccess bool   `json:"filesystem_access"`
	NetworkAccess    bool   `json:"network_access"`
	ProcessSpawn     bool   `json:"process_spawn"`
	EnvAccess        bool   `json:"env_access"`
	SystemAccess     bool   `json:"system_access"`
	MemoryLimitMB    uint64 `json:"memory_limit_mb"`
	CPULimitPercent  uint8  `json:"cpu_limit_percent"`
	TimeoutSeconds   uint64 `json:"timeout_seconds"`
}

// DefaultPermissions returns the deny-by-default permission set.
func DefaultPermissions() Permissions {
	return Permissions{
		MemoryLimitMB:   DefaultMemoryLimitMB,
		CPULimitPercent: DefaultCPULimitPercent,
		TimeoutSeconds:  DefaultTimeoutSeconds,
	}
}

// Expiration tracks when a capability stops being valid and whether it has
// been revoked before that.
type Expiration struct {
	ExpiresAt         int64  `json:"expires_at"` // unix seconds
	Revoked           bool   `json:"revoked"`
	RevocationReason  string `json:"revocation_reason,omitempty"`
	RevokedAt         int64  `json:"revoked_at,omitempty"`
	RevokedBy         string `json:"revoked_by,omitempty"`
}

// DefaultExpiration returns an expiration DefaultLifetime from now.
func DefaultExpiration() Expiration {
	return Expiration{ExpiresAt: time.Now().Add(DefaultLifetime).Unix()}
}

// Attestation is a signed statement that a capability declaration is genuine.
type Attestation struct {
	CapabilityHash string `json:"capability_hash"`
	Signature      string `json:"signature"`
	PublicKey      string `json:"public_key"`
	Timestamp      int64  `json:"timestamp"` // unix seconds
	Algorithm      string `json:"algorithm"`
	Attester       string `json:"attester"`
}

// ToolCapability is one declared tool dependency: a primary tool name, a
// required/optional bit, and interchangeable alternative names. Builders
// return updated copies; a ToolCapability handed to another holder is never
// mutated except through Revoke.
type ToolCapability struct {
	ToolName     string       `json:"tool_name"`
	Required     bool         `json:"required"`
	Alternatives []string     `json:"alternatives"`
	Attestation  *Attestation `json:"attestation,omitempty"`
	Permissions  Permissions  `json:"permissions"`
	Expiration   Expiration   `json:"expiration"`
	Verified     bool         `json:"verified"`
}

// NewTool creates a tool capability with default permissions and lifetime.
func NewTool(name string, required bool) ToolCapability {
	return ToolCapability{
		ToolName:    name,
		Required:    required,
		Permissions: DefaultPermissions(),
		Expiration:  DefaultExpiration(),
	}
}

// NewSecureTool creates a tool capability with explicit permissions and
// expiration.
func NewSecureTool(name string, required bool, perms Permissions, exp Expiration) ToolCapability {
	return ToolCapability{
		ToolName:    name,
		Required:    required,
		Permissions: perms,
		Expiration:  exp,
	}
}

// WithAlternatives sets the interchangeable substitute names. The primary
// name does not need to appear in the list; it is always checked first.
func (t ToolCapability) WithAlternatives(alternatives ...string) ToolCapability {
	t.Alternatives = alternatives
	return t
}

// WithAttestation attaches an attestation and marks the capability verified.
func (t ToolCapability) WithAttestation(att Attestation) ToolCapability {
	t.Attestation = &att
	t.Verified = true
	return t
}

// WithPermissions replaces the permission set.
func (t ToolCapability) WithPermissions(perms Permissions) ToolCapability {
	t.Permissions = perms
	return t
}

// WithExpiration replaces the expiration.
func (t ToolCapability) WithExpiration(exp Expiration) ToolCapability {
	t.Expiration = exp
	return t
}

// IsSatisfied reports whether the primary tool or any alternative is
// available according to check. Expired or revoked capabilities are never
// satisfied. Evaluation short-circuits on the first match.
func (t ToolCapability) IsSatisfied(check ToolChecker) bool {
	if t.IsExpired() || t.IsRevoked() {
		return false
	}
	if check(t.ToolName) {
		return true
	}
	for _, alt := range t.Alternatives {
		if check(alt) {
			return true
		}
	}
	return false
}

// IsExpired reports whether the capability's lifetime has passed. A zero
// ExpiresAt means the capability never expires.
func (t ToolCapability) IsExpired() bool {
	return t.Expiration.ExpiresAt != 0 && time.Now().Unix() > t.Expiration.ExpiresAt
}

// IsRevoked reports whether the capability has been revoked.
func (t ToolCapability) IsRevoked() bool {
	return t.Expiration.Revoked
}

// HasPermission reports whether the named permission is granted.
// Unknown permission names are denied.
func (t ToolCapability) HasPermission(permission string) bool {
	switch permission {
	case PermissionFilesystemAccess:
		return t.Permissions.FilesystemAccess
	case PermissionNetworkAccess:
		return t.Permissions.NetworkAccess
	case PermissionProcessSpawn:
		return t.Permissions.ProcessSpawn
	case PermissionEnvAccess:
		return t.Permissions.EnvAccess
	case PermissionSystemAccess:
		return t.Permissions.SystemAccess
	default:
		return false
	}
}

// Revoke marks the capability revoked with the given reason and actor.
func (t *ToolCapability) Revoke(reason, revokedBy string) {
	t.Expiration.Revoked = true
	t.Expiration.RevocationReason = reason
	t.Expiration.RevokedAt = time.Now().Unix()
	t.Expiration.RevokedBy = revokedBy
}

// SecurityReport summarizes the security posture of one tool capability.
type SecurityReport struct {
	ToolName            string      `json:"tool_name"`
	HasAttestation      bool        `json:"has_attestation"`
	AttestationVerified bool        `json:"attestation_verified"`
	IsExpired           bool        `json:"is_expired"`
	IsRevoked           bool        `json:"is_revoked"`
	Permissions         Permissions `json:"permissions"`
	Expiration          Expiration  `json:"expiration"`
}

// Report builds the security report for this capability.
func (t ToolCapability) Report() SecurityReport {
	return SecurityReport{
		ToolName:            t.ToolName,
		HasAttestation:      t.Attestation != nil,
		AttestationVerified: t.VerifyAttestation(),
		IsExpired:           t.IsExpired(),
		IsRevoked:           t.IsRevoked(),
		Permissions:         t.Permissions,
		Expiration:          t.Expiration,
	}
}

package capability

import "time"

// Capability type names. These select which tool bucket a query reads.
// An unrecognized type is treated as an empty bucket, never an error.
const (
	TypeStaticAnalysis   = "static_analysis"
	TypeSecurityScanning = "security_scanning"
	TypeDynamicAnalysis  = "dynamic_analysis"
	TypeFuzzing          = "fuzzing"
	TypeTestFramework    = "test_framework"
)

// Permission names understood by HasPermission.
const (
	PermissionFilesystemAccess = "filesystem_access"
	PermissionNetworkAccess    = "network_access"
	PermissionProcessSpawn     = "process_spawn"
	PermissionEnvAccess        = "env_access"
	PermissionSystemAccess     = "system_access"
)

// Default resource limits for tool capabilities.
const (
	DefaultMemoryLimitMB   = 128
	DefaultCPULimitPercent = 50
	DefaultTimeoutSeconds  = 30
)

// Capability lifetime and attestation bounds.
const (
	DefaultLifetime      = 24 * time.Hour
	AttestationMaxAge    = 365 * 24 * time.Hour
	AttestationAlgorithm = "ed25519-sha256"
)

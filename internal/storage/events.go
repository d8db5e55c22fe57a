package storage

import "time"

// EventWriter is the interface for writing registry audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *RegistryEvent)
	Close()
}

// RegistryEvent records one registry mutation or query for auditing.
type RegistryEvent struct {
	RequestID      string
	Timestamp      time.Time
	ClientID       string
	Action         string // "register", "unregister", "revoke", "query"
	WorkerID       string // empty for queries
	CapabilityType string
	AvailableTools []string // query allow-list, empty otherwise
	MatchedIDs     []string
	ToolCount      int32
	LatencyMs      float32
	Source         string // "http"
}

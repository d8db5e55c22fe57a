package server

import "time"

// ErrorResp is the JSON error body for all non-2xx responses.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// RegisterResp is the response for POST /v1/workers.
type RegisterResp struct {
	ID        string `json:"id"`
	ToolCount int    `json:"tool_count"`
	RequestID string `json:"request_id"`
}

// ListWorkersResp is the response for GET /v1/workers.
type ListWorkersResp struct {
	WorkerIDs []string `json:"worker_ids"`
	Count     int      `json:"count"`
}

// MetadataMatch selects workers whose metadata has Key set to Value.
type MetadataMatch struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QueryRequest is the JSON body for POST /v1/query. The caller supplies the
// set of tool names it considers available; the server builds the
// availability predicate from that allow-list. Criteria combine as an
// intersection; at least one must be present.
type QueryRequest struct {
	CapabilityType     string         `json:"capability_type,omitempty"`
	AvailableTools     []string       `json:"available_tools,omitempty"`
	RequireAllRequired bool           `json:"require_all_required,omitempty"`
	Flag               string         `json:"flag,omitempty"`
	Metadata           *MetadataMatch `json:"metadata,omitempty"`
}

// QueryResponse is the response for POST /v1/query.
type QueryResponse struct {
	WorkerIDs []string `json:"worker_ids"`
	Count     int      `json:"count"`
	RequestID string   `json:"request_id"`
	LatencyMs float32  `json:"latency_ms"`
}

// RevokeRequest is the JSON body for POST /v1/workers/{id}/revoke.
type RevokeRequest struct {
	Reason string `json:"reason"`
}

// CreateClientReq is the JSON body for POST /api/capd/clients.
type CreateClientReq struct {
	Name string `json:"name"`
}

// CreateClientResp includes the plaintext API key (shown once).
type CreateClientResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	APIKey       string    `json:"api_key"`
	APIKeyPrefix string    `json:"api_key_prefix"`
	CreatedAt    time.Time `json:"created_at"`
}

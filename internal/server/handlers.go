package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/fleetops/capd/capability"
	"github.com/fleetops/capd/internal/checker"
	"github.com/fleetops/capd/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxDocumentBytes bounds incoming capability documents.
const maxDocumentBytes = 1 << 20

// handleRegisterWorker implements POST /v1/workers. The body is the
// capability document itself; it is schema-validated, persisted, and loaded
// into the in-memory registry. Re-registering an id overwrites the previous
// declaration.
func (d *Dependencies) handleRegisterWorker(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Failed to read request body"})
		return
	}

	if err := d.Validator.Validate(body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: err.Error()})
		return
	}

	var caps capability.Capabilities
	if err := json.Unmarshal(body, &caps); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	client := clientFromContext(r.Context())
	if client == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "missing client context"})
		return
	}

	// Persist first: the in-memory registry must never hold workers that a
	// restart would forget.
	if err := d.Store.SaveWorker(r.Context(), caps.ID, body, client.ID); err != nil {
		d.Logger.Error("worker persist failed",
			zap.String("worker_id", caps.ID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to persist worker"})
		return
	}

	d.Guard.Update(func(reg *capability.Registry) {
		reg.Register(caps)
	})

	stats := caps.Stats()
	requestID := uuid.New().String()
	d.Writer.Write(&storage.RegistryEvent{
		RequestID: requestID,
		Timestamp: time.Now(),
		ClientID:  client.ID,
		Action:    "register",
		WorkerID:  caps.ID,
		ToolCount: int32(stats.TotalTools),
		LatencyMs: latencyMs(start),
		Source:    "http",
	})

	writeJSON(w, http.StatusCreated, RegisterResp{
		ID:        caps.ID,
		ToolCount: stats.TotalTools,
		RequestID: requestID,
	})
}

// handleListWorkers implements GET /v1/workers.
func (d *Dependencies) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	var ids []string
	d.Guard.View(func(reg *capability.Registry) {
		ids = reg.ListIDs()
	})
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, ListWorkersResp{WorkerIDs: ids, Count: len(ids)})
}

// handleGetWorker implements GET /v1/workers/{worker_id}.
func (d *Dependencies) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("worker_id")

	var snapshot *capability.Capabilities
	d.Guard.View(func(reg *capability.Registry) {
		if caps := reg.Get(id); caps != nil {
			c := caps.Clone()
			snapshot = &c
		}
	})
	if snapshot == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Worker not found"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleUnregisterWorker implements DELETE /v1/workers/{worker_id}.
func (d *Dependencies) handleUnregisterWorker(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.PathValue("worker_id")

	deleted, err := d.Store.DeleteWorker(r.Context(), id)
	if err != nil {
		d.Logger.Error("worker delete failed", zap.String("worker_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to delete worker"})
		return
	}

	var removed bool
	d.Guard.Update(func(reg *capability.Registry) {
		removed = reg.Unregister(id)
	})

	if !deleted && !removed {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Worker not found"})
		return
	}

	client := clientFromContext(r.Context())
	d.Writer.Write(&storage.RegistryEvent{
		RequestID: uuid.New().String(),
		Timestamp: time.Now(),
		ClientID:  clientID(client),
		Action:    "unregister",
		WorkerID:  id,
		LatencyMs: latencyMs(start),
		Source:    "http",
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleRevokeWorker implements POST /v1/workers/{worker_id}/revoke. Every
// capability of the worker is revoked and the updated document is persisted.
func (d *Dependencies) handleRevokeWorker(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.PathValue("worker_id")

	var req RevokeRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "reason is required"})
		return
	}

	client := clientFromContext(r.Context())
	if client == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "missing client context"})
		return
	}

	var (
		found bool
		doc   []byte
	)
	d.Guard.Update(func(reg *capability.Registry) {
		if !reg.RevokeWorker(id, req.Reason, client.Name) {
			return
		}
		found = true
		var err error
		doc, err = json.Marshal(reg.Get(id))
		if err != nil {
			d.Logger.Error("revoked worker marshal failed",
				zap.String("worker_id", id),
				zap.Error(err),
			)
			doc = nil
		}
	})
	if !found {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Worker not found"})
		return
	}

	if doc != nil {
		if err := d.Store.SaveWorker(r.Context(), id, doc, client.ID); err != nil {
			d.Logger.Error("revoked worker persist failed",
				zap.String("worker_id", id),
				zap.Error(err),
			)
		}
	}

	d.Writer.Write(&storage.RegistryEvent{
		RequestID: uuid.New().String(),
		Timestamp: time.Now(),
		ClientID:  client.ID,
		Action:    "revoke",
		WorkerID:  id,
		LatencyMs: latencyMs(start),
		Source:    "http",
	})

	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

// handleQuery implements POST /v1/query: which workers satisfy the given
// criteria, with availability decided by the caller-supplied tool
// allow-list. Criteria intersect.
func (d *Dependencies) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req QueryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.CapabilityType == "" && !req.RequireAllRequired && req.Flag == "" && req.Metadata == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "at least one query criterion is required"})
		return
	}

	check := checker.FromSet(req.AvailableTools...)

	var matched []string
	d.Guard.View(func(reg *capability.Registry) {
		for _, id := range reg.ListIDs() {
			caps := reg.Get(id)
			if req.CapabilityType != "" && !caps.HasCapability(req.CapabilityType, check) {
				continue
			}
			if req.RequireAllRequired && !caps.HasAllRequiredTools(check) {
				continue
			}
			if req.Flag != "" && !caps.HasFlag(req.Flag) {
				continue
			}
			if req.Metadata != nil {
				if v, ok := caps.MetadataValue(req.Metadata.Key); !ok || v != req.Metadata.Value {
					continue
				}
			}
			matched = append(matched, id)
		}
	})
	sort.Strings(matched)

	client := clientFromContext(r.Context())
	requestID := uuid.New().String()
	latency := latencyMs(start)

	d.Writer.Write(&storage.RegistryEvent{
		RequestID:      requestID,
		Timestamp:      time.Now(),
		ClientID:       clientID(client),
		Action:         "query",
		CapabilityType: req.CapabilityType,
		AvailableTools: req.AvailableTools,
		MatchedIDs:     matched,
		LatencyMs:      latency,
		Source:         "http",
	})

	writeJSON(w, http.StatusOK, QueryResponse{
		WorkerIDs: matched,
		Count:     len(matched),
		RequestID: requestID,
		LatencyMs: latency,
	})
}

// handleStats implements GET /v1/stats.
func (d *Dependencies) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats capability.RegistryStats
	d.Guard.View(func(reg *capability.Registry) {
		stats = reg.Stats()
	})
	writeJSON(w, http.StatusOK, stats)
}

// handleCreateClient implements POST /api/capd/clients.
func (d *Dependencies) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "name is required"})
		return
	}

	client, apiKey, err := d.Store.CreateClient(r.Context(), req.Name)
	if err != nil {
		d.Logger.Error("client create failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to create client"})
		return
	}

	writeJSON(w, http.StatusCreated, CreateClientResp{
		ID:           client.ID,
		Name:         client.Name,
		APIKey:       apiKey,
		APIKeyPrefix: client.APIKeyPrefix,
		CreatedAt:    client.CreatedAt,
	})
}

func latencyMs(start time.Time) float32 {
	return float32(float64(time.Since(start)) / float64(time.Millisecond))
}

func clientID(c *authClient) string {
	if c == nil {
		return ""
	}
	return c.ID
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fleetops/capd/capability"
	"github.com/fleetops/capd/internal/schema"
	"github.com/fleetops/capd/internal/storage"
	"github.com/fleetops/capd/internal/store"
	"go.uber.org/zap"
)

// WorkerStore abstracts the persistence layer for testability.
// *store.Store is the production implementation.
type WorkerStore interface {
	SaveWorker(ctx context.Context, id string, doc json.RawMessage, registeredBy string) error
	DeleteWorker(ctx context.Context, id string) (bool, error)
	ListWorkers(ctx context.Context) ([]store.WorkerRow, error)
	CreateClient(ctx context.Context, name string) (*store.Client, string, error)
	LookupClientByPrefix(ctx context.Context, prefix string) (*store.Client, error)
}

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Store     WorkerStore
	Guard     *RegistryGuard
	Writer    storage.EventWriter
	Validator *schema.Validator
	Logger    *zap.Logger
	CacheTTL  time.Duration
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Worker registration and queries (auth required via Bearer wck_ token)
	mux.HandleFunc("POST /v1/workers", deps.authMiddleware(deps.handleRegisterWorker))
	mux.HandleFunc("GET /v1/workers", deps.authMiddleware(deps.handleListWorkers))
	mux.HandleFunc("GET /v1/workers/{worker_id}", deps.authMiddleware(deps.handleGetWorker))
	mux.HandleFunc("DELETE /v1/workers/{worker_id}", deps.authMiddleware(deps.handleUnregisterWorker))
	mux.HandleFunc("POST /v1/workers/{worker_id}/revoke", deps.authMiddleware(deps.handleRevokeWorker))
	mux.HandleFunc("POST /v1/query", deps.authMiddleware(deps.handleQuery))
	mux.HandleFunc("GET /v1/stats", deps.authMiddleware(deps.handleStats))

	// Client provisioning (no auth — operator tooling)
	mux.HandleFunc("POST /api/capd/clients", deps.handleCreateClient)

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return requestLogging(mux, deps.Logger)
}

// LoadRegistry rebuilds the in-memory registry from persisted worker
// documents. Rows that no longer parse are skipped with a warning rather
// than blocking startup.
func (d *Dependencies) LoadRegistry(ctx context.Context) error {
	rows, err := d.Store.ListWorkers(ctx)
	if err != nil {
		return err
	}
	loaded := 0
	d.Guard.Update(func(r *capability.Registry) {
		for _, row := range rows {
			var caps capability.Capabilities
			if err := json.Unmarshal(row.Capabilities, &caps); err != nil {
				d.Logger.Warn("skipping unparseable worker document",
					zap.String("worker_id", row.ID),
					zap.Error(err),
				)
				continue
			}
			r.Register(caps)
			loaded++
		}
	})
	d.Logger.Info("registry loaded from store", zap.Int("workers", loaded))
	return nil
}

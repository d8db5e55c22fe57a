package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// WorkerRow is a persisted capability document.
type WorkerRow struct {
	ID           string
	Capabilities json.RawMessage
	RegisteredBy string
	UpdatedAt    time.Time
}

// SaveWorker upserts a worker's capability document. Re-registering an id
// overwrites the previous document, matching the registry's
// last-write-wins contract.
func (s *Store) SaveWorker(ctx context.Context, id string, doc json.RawMessage, registeredBy string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, capabilities, registered_by, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET capabilities = EXCLUDED.capabilities,
		    registered_by = EXCLUDED.registered_by,
		    updated_at = now()`,
		id, doc, registeredBy,
	)
	if err != nil {
		return fmt.Errorf("SaveWorker: %w", err)
	}
	return nil
}

// GetWorker fetches one worker's capability document. Returns nil if the
// worker is not persisted.
func (s *Store) GetWorker(ctx context.Context, id string) (*WorkerRow, error) {
	var row WorkerRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, capabilities, registered_by, updated_at
		FROM workers
		WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Capabilities, &row.RegisteredBy, &row.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetWorker: %w", err)
	}
	return &row, nil
}

// ListWorkers returns every persisted worker, for registry rebuild on
// startup.
func (s *Store) ListWorkers(ctx context.Context) ([]WorkerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, capabilities, registered_by, updated_at
		FROM workers
		ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("ListWorkers: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var workers []WorkerRow
	for rows.Next() {
		var row WorkerRow
		if err := rows.Scan(&row.ID, &row.Capabilities, &row.RegisteredBy, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListWorkers: %w", err)
		}
		workers = append(workers, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListWorkers: %w", err)
	}
	return workers, nil
}

// DeleteWorker removes a worker's persisted document and reports whether a
// row was deleted.
func (s *Store) DeleteWorker(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("DeleteWorker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteWorker: %w", err)
	}
	return n > 0, nil
}

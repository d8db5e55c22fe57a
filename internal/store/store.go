// Package store persists registered capability sets and coordinator API
// clients in PostgreSQL. The in-memory registry is the source of truth for
// queries; the store exists so a restarted server can rebuild it.
package store

import "database/sql"

// Store provides access to the PostgreSQL database.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

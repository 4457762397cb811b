// CLAUDE:SUMMARY SQLite manifest for revgraph builds — build rows, hashed assets, dependency edges.
// Package store persists the build manifest: which documents were
// processed, which assets were hashed to which names, and the dependency
// edges between them.
package store

import (
	"database/sql"

	"github.com/hazyhaar/revgraph/dbopen"
)

// Store is the manifest database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the manifest database at path and applies the
// schema. Pass ":memory:" for an ephemeral manifest.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

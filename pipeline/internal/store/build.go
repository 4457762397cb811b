// CLAUDE:SUMMARY Write and query operations for build manifest rows.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hazyhaar/revgraph/dbopen"
)

// Build is one recorded build.
type Build struct {
	ID         string `json:"id"`
	Root       string `json:"root"`
	Documents  int    `json:"documents"`
	Assets     int    `json:"assets"`
	Edges      int    `json:"edges"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

// Asset is one content-hashed file of a build.
type Asset struct {
	Path       string `json:"path"`
	HashedPath string `json:"hashed_path"`
}

// Edge is one recorded dependency edge of a build.
type Edge struct {
	FromPath string `json:"from_path"`
	ToPath   string `json:"to_path"`
}

// InsertBuild writes a build with its assets and edges in one transaction.
func (s *Store) InsertBuild(ctx context.Context, b *Build, assets []Asset, edges []Edge) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO builds (id, root, documents, assets, edges, started_at, finished_at)
			VALUES (?,?,?,?,?,?,?)`,
			b.ID, b.Root, b.Documents, b.Assets, b.Edges, b.StartedAt, b.FinishedAt,
		)
		if err != nil {
			return err
		}
		for _, a := range assets {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO build_assets (build_id, path, hashed_path)
				VALUES (?,?,?)`,
				b.ID, a.Path, a.HashedPath,
			); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO build_edges (build_id, from_path, to_path)
				VALUES (?,?,?)`,
				b.ID, e.FromPath, e.ToPath,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LatestBuild returns the most recent build, or nil when none exist.
// Build IDs are prefixed UUIDv7, so lexical order is creation order.
func (s *Store) LatestBuild(ctx context.Context) (*Build, error) {
	b := &Build{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, root, documents, assets, edges, started_at, finished_at
		FROM builds ORDER BY id DESC LIMIT 1`).Scan(
		&b.ID, &b.Root, &b.Documents, &b.Assets, &b.Edges, &b.StartedAt, &b.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BuildAssets returns the hashed assets of a build, ordered by path.
func (s *Store) BuildAssets(ctx context.Context, buildID string) ([]Asset, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT path, hashed_path FROM build_assets
		WHERE build_id = ? ORDER BY path`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.Path, &a.HashedPath); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// BuildEdges returns the dependency edges of a build, ordered by (from, to).
func (s *Store) BuildEdges(ctx context.Context, buildID string) ([]Edge, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT from_path, to_path FROM build_edges
		WHERE build_id = ? ORDER BY from_path, to_path`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.FromPath, &e.ToPath); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Dependents returns the documents of a build that depend on the given
// asset path, ordered.
func (s *Store) Dependents(ctx context.Context, buildID, assetPath string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT from_path FROM build_edges
		WHERE build_id = ? AND to_path = ? ORDER BY from_path`, buildID, assetPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

package store

// Schema contains the complete DDL for the build manifest tables.
const Schema = `
-- Builds: one row per completed build of a root.
CREATE TABLE IF NOT EXISTS builds (
    id          TEXT PRIMARY KEY,
    root        TEXT NOT NULL,
    documents   INTEGER NOT NULL DEFAULT 0,
    assets      INTEGER NOT NULL DEFAULT 0,
    edges       INTEGER NOT NULL DEFAULT 0,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);

-- Hashed assets produced by a build.
CREATE TABLE IF NOT EXISTS build_assets (
    build_id    TEXT NOT NULL,
    path        TEXT NOT NULL,
    hashed_path TEXT NOT NULL,
    PRIMARY KEY (build_id, path),
    FOREIGN KEY (build_id) REFERENCES builds(id) ON DELETE CASCADE
);

-- Dependency edges recorded during extraction.
CREATE TABLE IF NOT EXISTS build_edges (
    build_id  TEXT NOT NULL,
    from_path TEXT NOT NULL,
    to_path   TEXT NOT NULL,
    PRIMARY KEY (build_id, from_path, to_path),
    FOREIGN KEY (build_id) REFERENCES builds(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_edges_to ON build_edges(build_id, to_path);
`

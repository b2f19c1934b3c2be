package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL,
    fingerprint          TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL,
    message              TEXT NOT NULL DEFAULT '',
    periods              INTEGER NOT NULL DEFAULT 0,
    ending_cash          REAL NOT NULL DEFAULT 0,
    result               TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    options              TEXT NOT NULL DEFAULT '',
    run_id               TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
`

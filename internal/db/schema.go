package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    document_count INTEGER,
    max_score INTEGER
);

CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id),
    name TEXT,
    kind TEXT,
    author TEXT,
    last_modified_by TEXT,
    raw_score INTEGER,
    score REAL,
    batch_raw_score INTEGER,
    batch_score REAL,
    statistics TEXT
);

CREATE TABLE IF NOT EXISTS factors (
    id INTEGER PRIMARY KEY,
    document_id INTEGER NOT NULL REFERENCES documents(id),
    pass TEXT,
    rule TEXT,
    weight INTEGER,
    message TEXT
);

CREATE TABLE IF NOT EXISTS shared_revisions (
    run_id TEXT NOT NULL REFERENCES runs(id),
    rsid TEXT,
    documents TEXT
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

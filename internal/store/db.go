// Package store persists the manifest snapshot and the bulk archive and
// submission registries in PostgreSQL.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NewDB opens a PostgreSQL connection pool and ensures the schema exists.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ensureSchema creates the tables when they do not exist yet.
func ensureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS manifest_meta (
			id                 INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			manifest_timestamp TIMESTAMPTZ NOT NULL,
			imported_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS manifest_entries (
			key             TEXT PRIMARY KEY,
			filename        TEXT NOT NULL,
			size_bytes      BIGINT NOT NULL,
			entry_timestamp TIMESTAMPTZ NOT NULL,
			year            INT NOT NULL,
			month           INT NOT NULL,
			sequence_number INT NOT NULL,
			submissions     INT NOT NULL,
			md5             TEXT NOT NULL,
			contents_md5    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bulk_archives (
			sha256      TEXT PRIMARY KEY,
			filename    TEXT NOT NULL,
			size_bytes  BIGINT NOT NULL,
			file_type   TEXT NOT NULL,
			md5         TEXT NOT NULL,
			uri         TEXT NOT NULL,
			diagnostics TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			sha256              TEXT PRIMARY KEY,
			filename            TEXT NOT NULL,
			size_bytes          BIGINT NOT NULL,
			file_type           TEXT NOT NULL,
			md5                 TEXT NOT NULL,
			submission_type     TEXT NOT NULL,
			url                 TEXT NOT NULL,
			bulk_archive_sha256 TEXT NOT NULL,
			diagnostics         TEXT[] NOT NULL DEFAULT '{}',
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gradhouse/gradhouse/internal/arxiv"
	"github.com/gradhouse/gradhouse/internal/model"
)

// ManifestStore persists the manifest snapshot so that a later import can
// be diffed against it.
type ManifestStore struct {
	db *sql.DB
}

// NewManifestStore creates a new ManifestStore.
func NewManifestStore(db *sql.DB) *ManifestStore {
	return &ManifestStore{db: db}
}

// Save replaces the stored snapshot with the given manifest. The swap is
// transactional: a failed save leaves the previous snapshot intact.
func (s *ManifestStore) Save(ctx context.Context, m *arxiv.Manifest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM manifest_entries`); err != nil {
		return fmt.Errorf("failed to clear manifest entries: %w", err)
	}

	metaQuery := `
		INSERT INTO manifest_meta (id, manifest_timestamp, imported_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET
			manifest_timestamp = EXCLUDED.manifest_timestamp,
			imported_at = EXCLUDED.imported_at
	`
	if _, err := tx.ExecContext(ctx, metaQuery, m.Timestamp()); err != nil {
		return fmt.Errorf("failed to save manifest metadata: %w", err)
	}

	entryQuery := `
		INSERT INTO manifest_entries (key, filename, size_bytes, entry_timestamp,
		                              year, month, sequence_number, submissions, md5, contents_md5)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, key := range m.Keys() {
		entry, _ := m.Entry(key)
		_, err := tx.ExecContext(ctx, entryQuery,
			key,
			entry.Filename,
			entry.SizeBytes,
			entry.Timestamp,
			entry.Year,
			entry.Month,
			entry.SequenceNumber,
			entry.Submissions,
			entry.Hash.MD5,
			entry.Hash.ContentsMD5,
		)
		if err != nil {
			return fmt.Errorf("failed to save manifest entry %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Load reconstructs the stored manifest snapshot. Returns nil when no
// snapshot has been saved yet.
func (s *ManifestStore) Load(ctx context.Context) (*arxiv.Manifest, error) {
	var timestamp time.Time
	err := s.db.QueryRowContext(ctx, `SELECT manifest_timestamp FROM manifest_meta WHERE id = 1`).Scan(&timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest metadata: %w", err)
	}

	manifest := arxiv.NewManifest()
	manifest.SetTimestamp(timestamp)

	query := `
		SELECT filename, size_bytes, entry_timestamp, year, month,
		       sequence_number, submissions, md5, contents_md5
		FROM manifest_entries
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry model.BundleEntry
		err := rows.Scan(
			&entry.Filename,
			&entry.SizeBytes,
			&entry.Timestamp,
			&entry.Year,
			&entry.Month,
			&entry.SequenceNumber,
			&entry.Submissions,
			&entry.Hash.MD5,
			&entry.Hash.ContentsMD5,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest entry: %w", err)
		}
		if err := manifest.AddEntry(entry); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest entries: %w", err)
	}

	return manifest, nil
}

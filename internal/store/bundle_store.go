package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/gradhouse/gradhouse/internal/model"
)

// BundleStore is the bulk archive registry. Records are keyed by the
// SHA256 of the archive file.
type BundleStore struct {
	db *sql.DB
}

// NewBundleStore creates a new BundleStore.
func NewBundleStore(db *sql.DB) *BundleStore {
	return &BundleStore{db: db}
}

// Upsert inserts or updates a bulk archive record under its SHA256 key.
func (s *BundleStore) Upsert(ctx context.Context, record *model.BundleRecord) error {
	query := `
		INSERT INTO bulk_archives (sha256, filename, size_bytes, file_type, md5, uri, diagnostics)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sha256) DO UPDATE SET
			filename = EXCLUDED.filename,
			size_bytes = EXCLUDED.size_bytes,
			file_type = EXCLUDED.file_type,
			md5 = EXCLUDED.md5,
			uri = EXCLUDED.uri,
			diagnostics = EXCLUDED.diagnostics
	`

	_, err := s.db.ExecContext(ctx, query,
		record.Metadata.SHA256,
		record.Metadata.Filename,
		record.Metadata.SizeBytes,
		record.Metadata.FileType,
		record.Metadata.MD5,
		record.URI,
		pq.Array(record.Diagnostics),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bulk archive %s: %w", record.Metadata.Filename, err)
	}

	return nil
}

// GetBySHA256 retrieves a bulk archive record. Returns nil when the key is
// not registered.
func (s *BundleStore) GetBySHA256(ctx context.Context, sha256 string) (*model.BundleRecord, error) {
	query := `
		SELECT sha256, filename, size_bytes, file_type, md5, uri, diagnostics
		FROM bulk_archives
		WHERE sha256 = $1
	`

	var record model.BundleRecord
	var diagnostics pq.StringArray
	err := s.db.QueryRowContext(ctx, query, sha256).Scan(
		&record.Metadata.SHA256,
		&record.Metadata.Filename,
		&record.Metadata.SizeBytes,
		&record.Metadata.FileType,
		&record.Metadata.MD5,
		&record.URI,
		&diagnostics,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bulk archive %s: %w", sha256, err)
	}

	record.Diagnostics = diagnostics
	return &record, nil
}

// GetAll retrieves every registered bulk archive, ordered by filename.
func (s *BundleStore) GetAll(ctx context.Context) ([]model.BundleRecord, error) {
	query := `
		SELECT sha256, filename, size_bytes, file_type, md5, uri, diagnostics
		FROM bulk_archives
		ORDER BY filename
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bulk archives: %w", err)
	}
	defer rows.Close()

	var records []model.BundleRecord
	for rows.Next() {
		var record model.BundleRecord
		var diagnostics pq.StringArray
		err := rows.Scan(
			&record.Metadata.SHA256,
			&record.Metadata.Filename,
			&record.Metadata.SizeBytes,
			&record.Metadata.FileType,
			&record.Metadata.MD5,
			&record.URI,
			&diagnostics,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bulk archive: %w", err)
		}
		record.Diagnostics = diagnostics
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bulk archives: %w", err)
	}

	return records, nil
}

// Count returns the number of registered bulk archives.
func (s *BundleStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bulk_archives`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bulk archives: %w", err)
	}
	return count, nil
}

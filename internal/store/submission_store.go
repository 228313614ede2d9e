package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/gradhouse/gradhouse/internal/model"
)

// SubmissionStore is the submission registry. Records are keyed by the
// SHA256 of the submission file.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a new SubmissionStore.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Upsert inserts or updates a submission entry under its SHA256 key.
func (s *SubmissionStore) Upsert(ctx context.Context, entry *model.SubmissionEntry) error {
	query := `
		INSERT INTO submissions (sha256, filename, size_bytes, file_type, md5,
		                         submission_type, url, bulk_archive_sha256, diagnostics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sha256) DO UPDATE SET
			filename = EXCLUDED.filename,
			size_bytes = EXCLUDED.size_bytes,
			file_type = EXCLUDED.file_type,
			md5 = EXCLUDED.md5,
			submission_type = EXCLUDED.submission_type,
			url = EXCLUDED.url,
			bulk_archive_sha256 = EXCLUDED.bulk_archive_sha256,
			diagnostics = EXCLUDED.diagnostics
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.Metadata.SHA256,
		entry.Metadata.Filename,
		entry.Metadata.SizeBytes,
		entry.Metadata.FileType,
		entry.Metadata.MD5,
		string(entry.Type),
		entry.Origin.URL,
		entry.Origin.BulkArchiveHash,
		pq.Array(entry.Diagnostics),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert submission %s: %w", entry.Metadata.Filename, err)
	}

	return nil
}

// GetBySHA256 retrieves a submission entry. Returns nil when the key is
// not registered.
func (s *SubmissionStore) GetBySHA256(ctx context.Context, sha256 string) (*model.SubmissionEntry, error) {
	query := `
		SELECT sha256, filename, size_bytes, file_type, md5,
		       submission_type, url, bulk_archive_sha256, diagnostics
		FROM submissions
		WHERE sha256 = $1
	`

	entry, err := scanSubmission(s.db.QueryRowContext(ctx, query, sha256))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s: %w", sha256, err)
	}
	return entry, nil
}

// GetByBundle retrieves the submission entries that came from the bulk
// archive with the given SHA256, ordered by filename.
func (s *SubmissionStore) GetByBundle(ctx context.Context, bulkArchiveSHA256 string) ([]model.SubmissionEntry, error) {
	query := `
		SELECT sha256, filename, size_bytes, file_type, md5,
		       submission_type, url, bulk_archive_sha256, diagnostics
		FROM submissions
		WHERE bulk_archive_sha256 = $1
		ORDER BY filename
	`

	rows, err := s.db.QueryContext(ctx, query, bulkArchiveSHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var entries []model.SubmissionEntry
	for rows.Next() {
		entry, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	return entries, nil
}

// GetAll retrieves every registered submission, ordered by filename.
func (s *SubmissionStore) GetAll(ctx context.Context) ([]model.SubmissionEntry, error) {
	query := `
		SELECT sha256, filename, size_bytes, file_type, md5,
		       submission_type, url, bulk_archive_sha256, diagnostics
		FROM submissions
		ORDER BY filename
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var entries []model.SubmissionEntry
	for rows.Next() {
		entry, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	return entries, nil
}

// CountByType returns the number of registered submissions per submission
// type.
func (s *SubmissionStore) CountByType(ctx context.Context) (map[model.SubmissionType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT submission_type, COUNT(*) FROM submissions GROUP BY submission_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SubmissionType]int)
	for rows.Next() {
		var submissionType string
		var count int
		if err := rows.Scan(&submissionType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan submission count: %w", err)
		}
		counts[model.SubmissionType(submissionType)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submission counts: %w", err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.SubmissionEntry, error) {
	var entry model.SubmissionEntry
	var submissionType string
	var diagnostics pq.StringArray
	err := row.Scan(
		&entry.Metadata.SHA256,
		&entry.Metadata.Filename,
		&entry.Metadata.SizeBytes,
		&entry.Metadata.FileType,
		&entry.Metadata.MD5,
		&submissionType,
		&entry.Origin.URL,
		&entry.Origin.BulkArchiveHash,
		&diagnostics,
	)
	if err != nil {
		return nil, err
	}
	entry.Type = model.SubmissionType(submissionType)
	entry.Diagnostics = diagnostics
	return &entry, nil
}

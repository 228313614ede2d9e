package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gradhouse/gradhouse/internal/model"
	"github.com/gradhouse/gradhouse/internal/store"
)

// MetricsService calculates system-wide metrics over the manifest
// snapshot and the registries.
type MetricsService struct {
	db          *sql.DB
	bundles     *store.BundleStore
	submissions *store.SubmissionStore
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(db *sql.DB) *MetricsService {
	return &MetricsService{
		db:          db,
		bundles:     store.NewBundleStore(db),
		submissions: store.NewSubmissionStore(db),
	}
}

// SystemMetrics represents calculated system-wide metrics.
type SystemMetrics struct {
	TotalBulkArchives     int
	TotalSubmissions      int
	TotalSizeBytes        int64
	AverageSubmissionMB   float64
	RegisteredBundles     int
	RegisteredSubmissions int
	ProblemSubmissions    int
	SubmissionTypeCounts  map[model.SubmissionType]int
	LargestBundle         string
	LargestBundleBytes    int64
}

// MonthlyMetric is one (year, month) row of the manifest statistics.
type MonthlyMetric struct {
	Year        int
	Month       int
	SizeBytes   int64
	Submissions int
}

// Calculate computes the current system metrics.
func (m *MetricsService) Calculate(ctx context.Context) (*SystemMetrics, error) {
	metrics := &SystemMetrics{}

	manifestQuery := `
		SELECT
			COUNT(*) AS total_archives,
			COALESCE(SUM(submissions), 0) AS total_submissions,
			COALESCE(SUM(size_bytes), 0) AS total_size
		FROM manifest_entries
	`
	err := m.db.QueryRowContext(ctx, manifestQuery).Scan(
		&metrics.TotalBulkArchives,
		&metrics.TotalSubmissions,
		&metrics.TotalSizeBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate manifest metrics: %w", err)
	}

	if metrics.TotalSubmissions > 0 {
		metrics.AverageSubmissionMB = 1.0e-6 * float64(metrics.TotalSizeBytes) / float64(metrics.TotalSubmissions)
	}

	largestQuery := `
		SELECT key, size_bytes
		FROM manifest_entries
		ORDER BY size_bytes DESC
		LIMIT 1
	`
	err = m.db.QueryRowContext(ctx, largestQuery).Scan(&metrics.LargestBundle, &metrics.LargestBundleBytes)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find largest bundle: %w", err)
	}

	metrics.RegisteredBundles, err = m.bundles.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count registered bundles: %w", err)
	}

	metrics.SubmissionTypeCounts, err = m.submissions.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count registered submissions: %w", err)
	}
	for _, count := range metrics.SubmissionTypeCounts {
		metrics.RegisteredSubmissions += count
	}

	problemsQuery := `SELECT COUNT(*) FROM submissions WHERE cardinality(diagnostics) > 0`
	err = m.db.QueryRowContext(ctx, problemsQuery).Scan(&metrics.ProblemSubmissions)
	if err != nil {
		return nil, fmt.Errorf("failed to count problem submissions: %w", err)
	}

	return metrics, nil
}

// MonthlyStatistics returns the manifest statistics grouped by
// (year, month), ordered chronologically.
func (m *MetricsService) MonthlyStatistics(ctx context.Context) ([]MonthlyMetric, error) {
	query := `
		SELECT year, month,
		       COALESCE(SUM(size_bytes), 0) AS size_bytes,
		       COALESCE(SUM(submissions), 0) AS submissions
		FROM manifest_entries
		GROUP BY year, month
		ORDER BY year, month
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate monthly statistics: %w", err)
	}
	defer rows.Close()

	var results []MonthlyMetric
	for rows.Next() {
		var row MonthlyMetric
		if err := rows.Scan(&row.Year, &row.Month, &row.SizeBytes, &row.Submissions); err != nil {
			return nil, fmt.Errorf("failed to scan monthly statistics: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monthly statistics: %w", err)
	}

	return results, nil
}

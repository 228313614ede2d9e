// Package service orchestrates manifest imports, bundle validation and
// submission registration on top of the arxiv core and the stores.
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/gradhouse/gradhouse/internal/arxiv"
	"github.com/gradhouse/gradhouse/internal/file"
	"github.com/gradhouse/gradhouse/internal/model"
	"github.com/gradhouse/gradhouse/internal/store"
)

// ImportStats tracks the outcome of one manifest import.
type ImportStats struct {
	Total       int
	New         int
	Updated     int
	Unchanged   bool // true when the manifest matches the stored snapshot
	NewKeys     []string
	UpdatedKeys []string
}

// ScanStats tracks the outcome of a submission scan.
type ScanStats struct {
	Total   int
	Valid   int
	Invalid int
	Failed  int
}

// Importer coordinates the import pipeline: manifest diffing against the
// stored snapshot, bulk archive validation, and submission registration.
type Importer struct {
	manifestStore   *store.ManifestStore
	bundleStore     *store.BundleStore
	submissionStore *store.SubmissionStore
	logger          *log.Logger
	errLogger       *log.Logger
}

// NewImporter creates a new Importer.
func NewImporter(manifestStore *store.ManifestStore, bundleStore *store.BundleStore, submissionStore *store.SubmissionStore) *Importer {
	return &Importer{
		manifestStore:   manifestStore,
		bundleStore:     bundleStore,
		submissionStore: submissionStore,
		logger:          log.New(os.Stdout, "", log.LstdFlags),
		errLogger:       log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// ImportManifest loads the manifest XML at path, diffs it against the
// stored snapshot, and persists it as the new snapshot. The incoming
// manifest must be strictly newer than the stored one; an identical
// manifest (same timestamp, same keys) is reported as unchanged and the
// snapshot is left as is.
func (i *Importer) ImportManifest(ctx context.Context, path string) (*ImportStats, error) {
	i.logger.Printf("Importing manifest from %s...", path)

	current := arxiv.NewManifest()
	if err := current.ImportXML(path); err != nil {
		return nil, fmt.Errorf("failed to import manifest: %w", err)
	}

	stats := &ImportStats{Total: current.Len()}
	i.logger.Printf("Manifest contains %d bulk archives", stats.Total)

	previous, err := i.manifestStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored manifest: %w", err)
	}

	if previous == nil {
		// first import, every entry is new
		stats.New = current.Len()
		stats.NewKeys = current.Keys()
	} else {
		newer, err := current.IsNewerThan(previous)
		if err != nil {
			return nil, err
		}
		if !newer {
			if current.Timestamp().Equal(previous.Timestamp()) {
				i.logger.Println("Manifest matches the stored snapshot, nothing to do")
				stats.Unchanged = true
				return stats, nil
			}
			return nil, fmt.Errorf("manifest at %s is older than the stored snapshot", path)
		}

		stats.NewKeys, err = current.FindNewEntries(previous)
		if err != nil {
			return nil, err
		}
		stats.UpdatedKeys, err = current.FindUpdatedEntries(previous)
		if err != nil {
			return nil, err
		}
		stats.New = len(stats.NewKeys)
		stats.Updated = len(stats.UpdatedKeys)
	}

	if err := i.manifestStore.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to save manifest snapshot: %w", err)
	}

	return stats, nil
}

// RegisterBundle validates the bulk archive at path and registers it in
// the bulk archive registry under its SHA256. Validation problems become
// the record's diagnostics; only an invalid name or an unreadable file is
// a hard failure. Returns the registry key.
func (i *Importer) RegisterBundle(ctx context.Context, path string) (string, error) {
	uri, err := arxiv.BulkArchiveURI(path)
	if err != nil {
		return "", err
	}

	diagnostics := arxiv.CheckBulkArchive(path)

	metadata, err := file.Metadata(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	record := &model.BundleRecord{
		Metadata:    metadata,
		URI:         uri,
		Diagnostics: diagnostics,
	}
	if err := i.bundleStore.Upsert(ctx, record); err != nil {
		return "", err
	}

	if len(diagnostics) > 0 {
		i.logger.Printf("Registered bulk archive %s with %d problem(s)", metadata.Filename, len(diagnostics))
	} else {
		i.logger.Printf("Registered bulk archive %s", metadata.Filename)
	}

	return metadata.SHA256, nil
}

// RegisterSubmissions registers every submission file in dir, recording
// each under its SHA256 with the owning bulk archive hash. Files that fail
// hard (unreadable, invalid name) are counted and logged but do not stop
// the scan.
func (i *Importer) RegisterSubmissions(ctx context.Context, dir string, bulkArchiveHash string) (*ScanStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	stats := &ScanStats{Total: len(names)}
	i.logger.Printf("Scanning %d submission file(s) in %s", stats.Total, dir)

	for idx, name := range names {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		path := filepath.Join(dir, name)
		key, entry, err := arxiv.GenerateSubmissionEntry(path, bulkArchiveHash)
		if err != nil {
			i.errLogger.Printf("Failed to process submission %s: %v", name, err)
			stats.Failed++
			continue
		}

		if err := i.submissionStore.Upsert(ctx, &entry); err != nil {
			i.errLogger.Printf("Failed to register submission %s: %v", name, err)
			stats.Failed++
			continue
		}

		if len(entry.Diagnostics) > 0 {
			i.logger.Printf("[%d/%d] %s: %s (%d problem(s))", idx+1, stats.Total, name, entry.Type, len(entry.Diagnostics))
			stats.Invalid++
		} else {
			i.logger.Printf("[%d/%d] %s: %s (key %.12s)", idx+1, stats.Total, name, entry.Type, key)
			stats.Valid++
		}
	}

	return stats, nil
}

// PrintImportSummary prints the manifest import statistics.
func (i *Importer) PrintImportSummary(stats *ImportStats) {
	i.logger.Println("")
	i.logger.Println("=== Manifest Import Summary ===")
	i.logger.Printf("Total bulk archives: %d", stats.Total)
	if stats.Unchanged {
		i.logger.Println("Snapshot unchanged")
		return
	}
	i.logger.Printf("New entries:         %d", stats.New)
	i.logger.Printf("Updated entries:     %d", stats.Updated)
	for _, key := range stats.NewKeys {
		i.logger.Printf("  new: %s", key)
	}
	for _, key := range stats.UpdatedKeys {
		i.logger.Printf("  updated: %s", key)
	}
}

// PrintScanSummary prints the submission scan statistics.
func (i *Importer) PrintScanSummary(stats *ScanStats) {
	i.logger.Println("")
	i.logger.Println("=== Submission Scan Summary ===")
	i.logger.Printf("Total files:   %d", stats.Total)
	i.logger.Printf("Valid:         %d", stats.Valid)
	i.logger.Printf("With problems: %d", stats.Invalid)
	i.logger.Printf("Failed:        %d", stats.Failed)
}

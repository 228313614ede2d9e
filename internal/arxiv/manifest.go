package arxiv

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gradhouse/gradhouse/internal/file"
	"github.com/gradhouse/gradhouse/internal/model"
)

// Hard failure classes raised by manifest import and comparison. Soft
// per-file validation problems are returned as string lists instead, see
// CheckBulkArchive and CheckSubmission.
var (
	// ErrManifestShape indicates the decoded XML does not match the
	// required arXiv manifest structure.
	ErrManifestShape = errors.New("entries missing in arXiv XML file")

	// ErrEntryInconsistent indicates a manifest file entry whose fields do
	// not reconstruct its own filename, or whose month is out of range.
	ErrEntryInconsistent = errors.New("manifest entry inconsistent")

	// ErrDuplicateKey indicates two manifest entries collapsing to the same
	// bulk archive base filename.
	ErrDuplicateKey = errors.New("bulk archive base filenames not unique and cannot be used for keys")

	// ErrManifestInconsistent indicates two manifests whose timestamps and
	// key sets violate the append-only expectation.
	ErrManifestInconsistent = errors.New("inconsistent manifest metadata")

	// ErrManifestOrder indicates a diff requested against a reference
	// manifest that is not strictly older.
	ErrManifestOrder = errors.New("reference manifest must be older than the current manifest")
)

// arXiv manifest timestamps are local to the US Eastern time zone.
const manifestTimeZone = "America/New_York"

const (
	manifestTimestampLayout  = "Mon Jan _2 15:04:05 2006"
	fileEntryTimestampLayout = "2006-01-02 15:04:05"
)

// Manifest is the in-memory index of the arXiv bulk source archives,
// imported from arXiv_src_manifest.xml. Entries are keyed by the bulk
// archive base filename. A Manifest is populated wholesale by one import;
// it is not safe for concurrent mutation.
type Manifest struct {
	timestamp time.Time
	contents  map[string]model.BundleEntry
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	m := &Manifest{}
	m.Clear()
	return m
}

// Clear removes all entries and resets the manifest timestamp.
func (m *Manifest) Clear() {
	m.timestamp = time.Time{}
	m.contents = make(map[string]model.BundleEntry)
}

// Timestamp returns the manifest generation time in UTC.
func (m *Manifest) Timestamp() time.Time {
	return m.timestamp
}

// SetTimestamp sets the manifest generation time. Used when reconstructing
// a manifest from persisted state.
func (m *Manifest) SetTimestamp(t time.Time) {
	m.timestamp = t.UTC()
}

// Len returns the number of bundle entries.
func (m *Manifest) Len() int {
	return len(m.contents)
}

// Keys returns the sorted bulk archive base filenames in the manifest.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.contents))
	for key := range m.contents {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Entry returns the bundle entry for a key.
func (m *Manifest) Entry(key string) (model.BundleEntry, bool) {
	entry, ok := m.contents[key]
	return entry, ok
}

// AddEntry inserts an entry under its base filename key. Used when
// reconstructing a manifest from persisted state; duplicate keys fail.
func (m *Manifest) AddEntry(entry model.BundleEntry) error {
	key := filepath.Base(entry.Filename)
	if _, exists := m.contents[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	m.contents[key] = entry
	return nil
}

// ImportXML wipes the manifest and loads it from the arXiv manifest XML
// file at path, normally named arXiv_src_manifest.xml. Import is all or
// nothing: on any error the manifest is left cleared.
func (m *Manifest) ImportXML(path string) error {
	m.Clear()

	if !file.IsFile(path) {
		return fmt.Errorf("manifest file %s not found", path)
	}

	doc, err := decodeManifestXML(path)
	if err != nil {
		return err
	}

	timestamp, err := parseEasternTimestamp(doc.timestamp, manifestTimestampLayout)
	if err != nil {
		return fmt.Errorf("invalid manifest timestamp %q: %w", doc.timestamp, err)
	}

	contents := make(map[string]model.BundleEntry, len(doc.files))
	for _, fields := range doc.files {
		entry, err := bundleEntryFromFields(fields)
		if err != nil {
			return err
		}
		key := filepath.Base(entry.Filename)
		if _, exists := contents[key]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		contents[key] = entry
	}

	m.timestamp = timestamp
	m.contents = contents
	return nil
}

// bundleEntryFromFields converts one shape-checked manifest file record
// into a BundleEntry, enforcing the filename reconstruction invariant.
func bundleEntryFromFields(fields map[string]string) (model.BundleEntry, error) {
	seqNum, err := strconv.Atoi(fields["seq_num"])
	if err != nil {
		return model.BundleEntry{}, fmt.Errorf("%w: bad seq_num %q", ErrEntryInconsistent, fields["seq_num"])
	}
	size, err := strconv.ParseInt(fields["size"], 10, 64)
	if err != nil {
		return model.BundleEntry{}, fmt.Errorf("%w: bad size %q", ErrEntryInconsistent, fields["size"])
	}
	submissions, err := strconv.Atoi(fields["num_items"])
	if err != nil {
		return model.BundleEntry{}, fmt.Errorf("%w: bad num_items %q", ErrEntryInconsistent, fields["num_items"])
	}

	yymm := fields["yymm"]
	if len(yymm) != 4 {
		return model.BundleEntry{}, fmt.Errorf("%w: bad yymm %q", ErrEntryInconsistent, yymm)
	}
	yy, err := strconv.Atoi(yymm[:2])
	if err != nil {
		return model.BundleEntry{}, fmt.Errorf("%w: bad yymm %q", ErrEntryInconsistent, yymm)
	}
	month, err := strconv.Atoi(yymm[2:])
	if err != nil {
		return model.BundleEntry{}, fmt.Errorf("%w: bad yymm %q", ErrEntryInconsistent, yymm)
	}

	// Filename must reconstruct from the entry's own fields, and the month
	// must be in range. Either failure aborts the whole import.
	generated := fmt.Sprintf("src/arXiv_src_%s_%03d.tar", yymm, seqNum)
	if fields["filename"] != generated {
		return model.BundleEntry{}, fmt.Errorf("%w: filename %q does not match generated name %q",
			ErrEntryInconsistent, fields["filename"], generated)
	}
	if month < 1 || month > 12 {
		return model.BundleEntry{}, fmt.Errorf("%w: month %d out of range", ErrEntryInconsistent, month)
	}

	timestamp, err := parseEasternTimestamp(fields["timestamp"], fileEntryTimestampLayout)
	if err != nil {
		return model.BundleEntry{}, fmt.Errorf("%w: bad timestamp %q", ErrEntryInconsistent, fields["timestamp"])
	}

	// Two-digit years pivot at 90: 91-99 are in the 1900s, 00-90 in the
	// 2000s (arXiv started in 1991).
	year := 2000 + yy
	if yy > 90 {
		year = 1900 + yy
	}

	return model.BundleEntry{
		Filename:       fields["filename"],
		SizeBytes:      size,
		Timestamp:      timestamp,
		Year:           year,
		Month:          month,
		SequenceNumber: seqNum,
		Submissions:    submissions,
		Hash: model.BundleHash{
			MD5:         fields["md5sum"],
			ContentsMD5: fields["content_md5sum"],
		},
	}, nil
}

// parseEasternTimestamp parses a US Eastern local time and converts it to
// UTC. DST is resolved by the time zone database.
func parseEasternTimestamp(value, layout string) (time.Time, error) {
	eastern, err := time.LoadLocation(manifestTimeZone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(layout, value, eastern)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// IsNewerThan reports whether m was generated after other. Manifests are
// append only, so the comparison also enforces consistency:
//
//   - identical timestamps require identical key sets
//   - the manifest with the newer timestamp must add at least one entry
//     and must not have dropped any entry of the older one
//
// A violation returns ErrManifestInconsistent.
func (m *Manifest) IsNewerThan(other *Manifest) (bool, error) {
	onlyInCurrent := keysMissingFrom(m.contents, other.contents)
	onlyInOther := keysMissingFrom(other.contents, m.contents)

	if m.timestamp.Equal(other.timestamp) {
		if len(onlyInCurrent) > 0 || len(onlyInOther) > 0 {
			return false, fmt.Errorf("%w: manifests with identical times must have identical keys", ErrManifestInconsistent)
		}
		return false, nil
	}

	newer := m.timestamp.After(other.timestamp)
	added, removed := onlyInCurrent, onlyInOther
	if !newer {
		added, removed = onlyInOther, onlyInCurrent
	}
	if len(added) == 0 {
		return false, fmt.Errorf("%w: newer manifest must have at least one new entry", ErrManifestInconsistent)
	}
	if len(removed) > 0 {
		return false, fmt.Errorf("%w: newer manifest cannot have entries deleted", ErrManifestInconsistent)
	}

	return newer, nil
}

// FindNewEntries returns the sorted keys present in m but not in the
// reference manifest. The reference must be strictly older than m.
func (m *Manifest) FindNewEntries(reference *Manifest) ([]string, error) {
	if err := m.requireNewerThan(reference); err != nil {
		return nil, err
	}
	newKeys := keysMissingFrom(m.contents, reference.contents)
	sort.Strings(newKeys)
	return newKeys, nil
}

// FindUpdatedEntries returns the sorted keys present in both manifests
// whose MD5 fingerprints differ. The reference must be strictly older
// than m.
func (m *Manifest) FindUpdatedEntries(reference *Manifest) ([]string, error) {
	if err := m.requireNewerThan(reference); err != nil {
		return nil, err
	}
	var updated []string
	for key, entry := range m.contents {
		refEntry, ok := reference.contents[key]
		if ok && entry.Hash.MD5 != refEntry.Hash.MD5 {
			updated = append(updated, key)
		}
	}
	sort.Strings(updated)
	return updated, nil
}

func (m *Manifest) requireNewerThan(reference *Manifest) error {
	newer, err := m.IsNewerThan(reference)
	if err != nil {
		return err
	}
	if !newer {
		return ErrManifestOrder
	}
	return nil
}

// Statistics aggregates bundle sizes and submission counts by (year, month).
// Used for reporting only.
func (m *Manifest) Statistics() map[model.MonthKey]model.MonthStats {
	statistics := make(map[model.MonthKey]model.MonthStats)
	for _, entry := range m.contents {
		key := model.MonthKey{Year: entry.Year, Month: entry.Month}
		stats := statistics[key]
		stats.SizeBytes += entry.SizeBytes
		stats.Submissions += entry.Submissions
		statistics[key] = stats
	}
	return statistics
}

// Info writes a human-readable summary of the manifest to w.
func (m *Manifest) Info(w io.Writer) {
	if m.Len() == 0 {
		fmt.Fprintln(w, "Manifest is empty")
		return
	}

	var totalSubmissions int
	var totalSize int64
	for _, entry := range m.contents {
		totalSubmissions += entry.Submissions
		totalSize += entry.SizeBytes
	}

	fmt.Fprintln(w, "Manifest Information:")
	fmt.Fprintf(w, "  Manifest Timestamp: %s\n", m.timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "  Number of Bulk Archives: %d\n", m.Len())
	fmt.Fprintf(w, "  Total Number of Submissions: %d\n", totalSubmissions)
	fmt.Fprintf(w, "  Total Size: %.3f GB\n", 1.0e-9*float64(totalSize))
	if totalSubmissions > 0 {
		fmt.Fprintf(w, "  Average Submission Size: %.3f MB\n", 1.0e-6*float64(totalSize)/float64(totalSubmissions))
	}
}

// keysMissingFrom returns the keys of a that are absent from b.
func keysMissingFrom(a, b map[string]model.BundleEntry) []string {
	var missing []string
	for key := range a {
		if _, ok := b[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

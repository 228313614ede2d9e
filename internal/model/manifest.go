package model

import (
	"fmt"
	"time"
)

// BundleHash holds the two content fingerprints the arXiv manifest reports
// for each bulk archive: one over the raw tar bytes and one over the
// logical contents of the tar.
type BundleHash struct {
	MD5         string
	ContentsMD5 string
}

// BundleEntry represents one bulk source archive listed in the arXiv
// manifest. The entry is keyed in the manifest by the base filename
// (e.g. "arXiv_src_9902_005.tar").
type BundleEntry struct {
	Filename       string
	SizeBytes      int64
	Timestamp      time.Time // normalized to UTC
	Year           int       // four-digit, reconstructed from the yymm field
	Month          int       // 1-12
	SequenceNumber int
	Submissions    int
	Hash           BundleHash
}

// ExpectedFilename reconstructs the manifest filename from the entry's
// year, month and sequence number. A consistent entry's Filename field
// matches this exactly.
func (e *BundleEntry) ExpectedFilename() string {
	return fmt.Sprintf("src/arXiv_src_%02d%02d_%03d.tar", e.Year%100, e.Month, e.SequenceNumber)
}

// MonthKey identifies a (year, month) statistics bucket.
type MonthKey struct {
	Year  int
	Month int
}

// MonthStats aggregates bundle sizes and submission counts for one month.
type MonthStats struct {
	SizeBytes   int64
	Submissions int
}

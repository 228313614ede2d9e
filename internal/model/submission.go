package model

// SubmissionType classifies the content of a single arXiv submission.
// The string values are stable and used for persistence and display.
type SubmissionType string

const (
	SubmissionTypePostscript SubmissionType = "postscript"
	SubmissionTypePDF        SubmissionType = "pdf"
	SubmissionTypeTeX        SubmissionType = "tex"
	SubmissionTypeUnknown    SubmissionType = "unknown"
)

// FileMetadata holds the identity information computed for a file on disk.
type FileMetadata struct {
	Filename  string
	SizeBytes int64
	FileType  string // stable string value of the sniffed file.Type
	MD5       string
	SHA256    string
}

// SubmissionOrigin records where a submission came from: its canonical
// arXiv URL and the SHA256 of the bulk archive that contained it.
type SubmissionOrigin struct {
	URL             string
	BulkArchiveHash string
}

// SubmissionEntry is the registry record for one submission. The registry
// key is the submission's SHA256. Diagnostics is non-empty exactly when
// validation or classification found a problem.
type SubmissionEntry struct {
	Metadata    FileMetadata
	Type        SubmissionType
	Origin      SubmissionOrigin
	Diagnostics []string
}

// BundleRecord is the registry record for one bulk archive file, keyed by
// its SHA256.
type BundleRecord struct {
	Metadata    FileMetadata
	URI         string
	Diagnostics []string
}

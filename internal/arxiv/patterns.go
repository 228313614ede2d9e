// Package arxiv implements the arXiv bulk-data domain logic: filename
// grammars, the manifest index with its append-only diffing rules,
// submission content classification, and S3 bucket access.
package arxiv

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gradhouse/gradhouse/internal/file"
)

// ErrInvalidName indicates a filename that does not follow any of the
// arXiv naming schemes.
var ErrInvalidName = errors.New("filename does not follow an arXiv naming scheme")

const (
	// BulkArchiveURIBase is the S3 location of the arXiv bulk source data.
	BulkArchiveURIBase = "s3://arxiv/src/"

	// SubmissionURLBase is the canonical abstract URL prefix.
	SubmissionURLBase = "https://arxiv.org/abs/"
)

var (
	bulkArchivePattern       = regexp.MustCompile(`^arXiv_src_(\d{2})(\d{2})_(\d{3})\.tar$`)
	oldStyleSubmissionRe     = regexp.MustCompile(`^([a-z\-]+)(\d{2})(\d{2})(\d{3})$`)
	currentStyleSubmissionRe = regexp.MustCompile(`^(\d{2})(\d{2})\.(\d{4,5})$`)
)

// submissionExtensions are the two extensions a packed submission may carry.
var submissionExtensions = map[string]bool{".gz": true, ".pdf": true}

// BulkArchiveName holds the components of a bulk archive filename
// arXiv_src_{yy}{mm}_{seq}.tar.
type BulkArchiveName struct {
	YY  string
	MM  string
	Seq string
}

// ParseBulkArchiveFilename extracts the (yy, mm, seq) components from a bulk
// archive filename, e.g. "arXiv_src_9902_005.tar" -> {"99", "02", "005"}.
// Any leading path is stripped. Returns ok=false when the base name does not
// match the grammar.
func ParseBulkArchiveFilename(filename string) (BulkArchiveName, bool) {
	base := filepath.Base(filename)
	m := bulkArchivePattern.FindStringSubmatch(base)
	if m == nil {
		return BulkArchiveName{}, false
	}
	return BulkArchiveName{YY: m[1], MM: m[2], Seq: m[3]}, true
}

// IsBulkArchiveFilename reports whether filename follows the bulk archive
// naming scheme with a month in the range 01-12.
func IsBulkArchiveFilename(filename string) bool {
	name, ok := ParseBulkArchiveFilename(filename)
	if !ok {
		return false
	}
	return validMonth(name.MM)
}

// BulkArchiveURI generates the S3 URI for a bulk archive filename, e.g.
// "local/arXiv_src_9902_005.tar" -> "s3://arxiv/src/arXiv_src_9902_005.tar".
func BulkArchiveURI(filename string) (string, error) {
	if !IsBulkArchiveFilename(filename) {
		return "", fmt.Errorf("%w: %s does not match the bulk archive pattern", ErrInvalidName, filename)
	}
	return BulkArchiveURIBase + filepath.Base(filename), nil
}

// OldStyleName holds the components of a pre-2008 submission filename
// {category}{yy}{mm}{num}.{gz|pdf}, e.g. "cond-mat9602101.gz".
type OldStyleName struct {
	Category string
	YY       string
	MM       string
	Number   string
}

// CurrentStyleName holds the components of a current submission filename
// {yy}{mm}.{num}.{gz|pdf}, e.g. "1202.3054.gz".
type CurrentStyleName struct {
	YY     string
	MM     string
	Number string
}

// ParseOldStyleSubmissionFilename parses a pre-2008 submission filename.
// Returns ok=false when the name does not match the old-style grammar.
func ParseOldStyleSubmissionFilename(filename string) (OldStyleName, bool) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if !submissionExtensions[ext] {
		return OldStyleName{}, false
	}
	m := oldStyleSubmissionRe.FindStringSubmatch(strings.TrimSuffix(base, ext))
	if m == nil {
		return OldStyleName{}, false
	}
	return OldStyleName{Category: m[1], YY: m[2], MM: m[3], Number: m[4]}, true
}

// ParseCurrentStyleSubmissionFilename parses a current-scheme submission
// filename. Returns ok=false when the name does not match.
func ParseCurrentStyleSubmissionFilename(filename string) (CurrentStyleName, bool) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if !submissionExtensions[ext] {
		return CurrentStyleName{}, false
	}
	m := currentStyleSubmissionRe.FindStringSubmatch(strings.TrimSuffix(base, ext))
	if m == nil {
		return CurrentStyleName{}, false
	}
	return CurrentStyleName{YY: m[1], MM: m[2], Number: m[3]}, true
}

// IsSubmissionFilename reports whether filename follows either submission
// naming scheme with a month in the range 01-12. The old-style grammar is
// tried first.
func IsSubmissionFilename(filename string) bool {
	if old, ok := ParseOldStyleSubmissionFilename(filename); ok {
		return validMonth(old.MM)
	}
	if current, ok := ParseCurrentStyleSubmissionFilename(filename); ok {
		return validMonth(current.MM)
	}
	return false
}

// SubmissionURL generates the canonical arXiv abstract URL for a submission
// filename:
//
//	cond-mat9602101.gz -> https://arxiv.org/abs/cond-mat/9602101
//	1202.3054.gz       -> https://arxiv.org/abs/1202.3054
func SubmissionURL(filename string) (string, error) {
	if old, ok := ParseOldStyleSubmissionFilename(filename); ok {
		return fmt.Sprintf("%s%s/%s%s%s", SubmissionURLBase, old.Category, old.YY, old.MM, old.Number), nil
	}
	if current, ok := ParseCurrentStyleSubmissionFilename(filename); ok {
		return fmt.Sprintf("%s%s%s.%s", SubmissionURLBase, current.YY, current.MM, current.Number), nil
	}
	return "", fmt.Errorf("%w: %s does not match a submission pattern", ErrInvalidName, filename)
}

func validMonth(mm string) bool {
	if len(mm) != 2 || mm[0] < '0' || mm[0] > '9' || mm[1] < '0' || mm[1] > '9' {
		return false
	}
	month := int(mm[0]-'0')*10 + int(mm[1]-'0')
	return month >= 1 && month <= 12
}

// defaultExtractDir is the extraction target assumed by the validation
// checks when the caller does not supply one.
const defaultExtractDir = "/"

// CheckBulkArchive validates the bulk archive file at path and returns the
// problems found. Checks run in order and stop at the first failing stage:
//
//  1. the filename matches the bulk archive naming scheme
//  2. the file exists
//  3. both the extension and the sniffed content identify a tar archive
//  4. the archive can be extracted without collisions or traversal
//  5. every member matches a submission naming scheme
//
// An empty result means the archive is valid.
func CheckBulkArchive(path string) []string {
	var errorList []string

	if !IsBulkArchiveFilename(path) {
		errorList = append(errorList, fmt.Sprintf("Filename %s does not match bulk archive pattern", path))
	}

	if len(errorList) == 0 {
		if !file.IsFile(path) {
			errorList = append(errorList, fmt.Sprintf("File %s not found", path))
		}
	}

	if len(errorList) == 0 {
		if !containsType(file.TypesFromExtension(path), file.TypeArchiveTar) {
			errorList = append(errorList, "File extension is not tar")
		} else if format, err := file.TypeFromFormat(path); err != nil {
			errorList = append(errorList, fmt.Sprintf("Cannot read file %s: %v", path, err))
		} else if format != file.TypeArchiveTar {
			errorList = append(errorList, "File format is not tar")
		}
	}

	if len(errorList) == 0 {
		errorList = append(errorList, file.CheckExtractable(path, defaultExtractDir)...)
	}

	if len(errorList) == 0 {
		contents, err := file.ListContents(path)
		if err != nil {
			errorList = append(errorList, fmt.Sprintf("Cannot list archive contents of %s: %v", path, err))
		} else {
			var invalid []string
			for _, entry := range contents {
				if !IsSubmissionFilename(entry) {
					invalid = append(invalid, entry)
				}
			}
			if len(invalid) > 0 {
				errorList = append(errorList,
					fmt.Sprintf("Archive entries do not match submission filename pattern: %s", strings.Join(invalid, ", ")))
			}
		}
	}

	return errorList
}

// IsBulkArchiveValid reports whether CheckBulkArchive finds no problems.
func IsBulkArchiveValid(path string) bool {
	return len(CheckBulkArchive(path)) == 0
}

// CheckSubmission validates the submission file at path and returns the
// problems found. Checks run in order and stop at the first failing stage:
//
//  1. the filename matches a submission naming scheme
//  2. the file exists
//  3. the file type is allowed (gz, tgz or pdf) by extension and by
//     content, and the sniffed format agrees with the extension
//  4. archives (gz, tgz) can be extracted without collisions or traversal
//
// The type checks in stage 3 are alternatives: only the first mismatch is
// reported. Stage 4 is skipped for non-archive submissions.
func CheckSubmission(path string) []string {
	allowedTypes := []file.Type{file.TypeArchiveGz, file.TypeArchiveTgz, file.TypePDF}
	allowedArchiveTypes := []file.Type{file.TypeArchiveGz, file.TypeArchiveTgz}

	var errorList []string

	if !IsSubmissionFilename(path) {
		errorList = append(errorList, fmt.Sprintf("Filename %s does not match submission pattern", path))
	}

	if len(errorList) == 0 {
		if !file.IsFile(path) {
			errorList = append(errorList, fmt.Sprintf("File %s not found", path))
		}
	}

	if len(errorList) == 0 {
		extensionTypes := file.TypesFromExtension(path)
		if !intersects(extensionTypes, allowedTypes) {
			errorList = append(errorList, "File extension type is not allowed")
		} else if format, err := file.TypeFromFormat(path); err != nil {
			errorList = append(errorList, fmt.Sprintf("Cannot read file %s: %v", path, err))
		} else if !containsType(allowedTypes, format) {
			errorList = append(errorList, fmt.Sprintf("File type %s not allowed", format))
		} else if !containsType(extensionTypes, format) {
			errorList = append(errorList, "File format does not match file extension")
		} else if containsType(allowedArchiveTypes, format) {
			errorList = append(errorList, file.CheckExtractable(path, defaultExtractDir)...)
		}
	}

	return errorList
}

// IsSubmissionValid reports whether CheckSubmission finds no problems.
func IsSubmissionValid(path string) bool {
	return len(CheckSubmission(path)) == 0
}

func containsType(types []file.Type, t file.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func intersects(a, b []file.Type) bool {
	for _, t := range a {
		if containsType(b, t) {
			return true
		}
	}
	return false
}

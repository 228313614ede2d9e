package arxiv

import (
	"fmt"

	"github.com/gradhouse/gradhouse/internal/file"
	"github.com/gradhouse/gradhouse/internal/model"
)

// texMainTypes are the file types that mark a TeX/LaTeX document root.
var texMainTypes = map[file.Type]bool{
	file.TypeTeX:          true,
	file.TypeLaTeX209Main: true,
	file.TypeLaTeX2eMain:  true,
}

// texSupportingTypes are all file types that may legitimately accompany a
// TeX document root, the main types included.
var texSupportingTypes = map[file.Type]bool{
	file.TypeTeX:            true,
	file.TypeLaTeX209Main:   true,
	file.TypeLaTeX2eMain:    true,
	file.TypeTeXLog:         true,
	file.TypeTeXFig:         true,
	file.TypeTeXBib:         true,
	file.TypeTeXBbl:         true,
	file.TypeTeXBst:         true,
	file.TypeTeXSty:         true,
	file.TypeTeXCls:         true,
	file.TypeTeXClo:         true,
	file.TypeTeXToc:         true,
	file.TypeTeXPstex:       true,
	file.TypeTeXPstexT:      true,
	file.TypeImageGIF:       true,
	file.TypeImagePNG:       true,
	file.TypeImageJPG:       true,
	file.TypePDF:            true,
	file.TypePostscriptPS:   true,
	file.TypePostscriptEPS:  true,
	file.TypePostscriptEPSI: true,
	file.TypePostscriptEPSF: true,
}

// SubmissionTypeFromContents classifies a submission from the names of the
// files it contains. Types are detected by extension; a file with no
// recognized extension contributes the unknown tag. The decision over the
// union of all detected tags is strictly tiered:
//
//  1. exactly {ps}            -> postscript
//  2. exactly {pdf}           -> pdf
//  3. contains a TeX main tag -> tex when every tag is TeX-supporting,
//     otherwise unknown
//  4. anything else           -> unknown
func SubmissionTypeFromContents(contents []string) model.SubmissionType {
	fileTypes := make(map[file.Type]bool)
	for _, name := range contents {
		detected := file.TypesFromExtension(name)
		if len(detected) == 0 {
			fileTypes[file.TypeUnknown] = true
			continue
		}
		for _, t := range detected {
			fileTypes[t] = true
		}
	}

	if len(fileTypes) == 1 && fileTypes[file.TypePostscriptPS] {
		return model.SubmissionTypePostscript
	}
	if len(fileTypes) == 1 && fileTypes[file.TypePDF] {
		return model.SubmissionTypePDF
	}

	hasTexMain := false
	for t := range fileTypes {
		if texMainTypes[t] {
			hasTexMain = true
			break
		}
	}
	if hasTexMain {
		for t := range fileTypes {
			if !texSupportingTypes[t] {
				// at least one file type is not TeX associated
				return model.SubmissionTypeUnknown
			}
		}
		return model.SubmissionTypeTeX
	}

	return model.SubmissionTypeUnknown
}

// GenerateSubmissionEntry builds the registry record for the submission
// file at path, contained in the bulk archive identified by
// bulkArchiveHash (SHA256). The returned key is the submission's SHA256.
//
// Validation problems and classification failures are collected into the
// entry's Diagnostics rather than returned as an error; only a missing
// file is a hard failure.
func GenerateSubmissionEntry(path string, bulkArchiveHash string) (string, model.SubmissionEntry, error) {
	if !file.IsFile(path) {
		return "", model.SubmissionEntry{}, fmt.Errorf("file %q not found", path)
	}

	submissionErrors := CheckSubmission(path)

	url, err := SubmissionURL(path)
	if err != nil {
		return "", model.SubmissionEntry{}, err
	}

	metadata, err := file.Metadata(path)
	if err != nil {
		return "", model.SubmissionEntry{}, err
	}

	submissionType := model.SubmissionTypeUnknown
	if len(submissionErrors) == 0 {
		switch file.Type(metadata.FileType) {
		case file.TypePDF:
			submissionType = model.SubmissionTypePDF
		case file.TypeArchiveGz, file.TypeArchiveTgz:
			contents, err := file.ListContents(path)
			if err != nil {
				return "", model.SubmissionEntry{}, err
			}
			submissionType = SubmissionTypeFromContents(contents)
		}
	}

	if len(submissionErrors) == 0 && submissionType == model.SubmissionTypeUnknown {
		submissionErrors = append(submissionErrors, "Unknown submission type")
	}

	entry := model.SubmissionEntry{
		Metadata: metadata,
		Type:     submissionType,
		Origin: model.SubmissionOrigin{
			URL:             url,
			BulkArchiveHash: bulkArchiveHash,
		},
		Diagnostics: submissionErrors,
	}

	return metadata.SHA256, entry, nil
}

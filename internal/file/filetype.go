// Package file provides the filesystem-facing collaborators for the arXiv
// index: file type detection by extension and by content sniffing, archive
// inspection, and file fingerprinting.
package file

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Type identifies a recognized file type. The string values are stable and
// used for persistence and error messages.
type Type string

const (
	TypeUnknown Type = "unknown"

	TypeArchiveTar Type = "tar"
	TypeArchiveGz  Type = "gz"
	TypeArchiveTgz Type = "tgz"

	TypePDF Type = "pdf"

	TypePostscriptPS   Type = "ps"
	TypePostscriptEPS  Type = "eps"
	TypePostscriptEPSI Type = "epsi"
	TypePostscriptEPSF Type = "epsf"

	TypeTeX          Type = "tex"
	TypeLaTeX209Main Type = "latex-209-main"
	TypeLaTeX2eMain  Type = "latex-2e-main"
	TypeTeXLog       Type = "tex-log"
	TypeTeXFig       Type = "tex-fig"
	TypeTeXBib       Type = "tex-bib"
	TypeTeXBbl       Type = "tex-bbl"
	TypeTeXBst       Type = "tex-bst"
	TypeTeXSty       Type = "tex-sty"
	TypeTeXCls       Type = "tex-cls"
	TypeTeXClo       Type = "tex-clo"
	TypeTeXToc       Type = "tex-toc"
	TypeTeXPstex     Type = "tex-pstex"
	TypeTeXPstexT    Type = "tex-pstex-t"

	TypeImageGIF Type = "gif"
	TypeImagePNG Type = "png"
	TypeImageJPG Type = "jpg"
)

// extensionTypes maps a lowercased extension (without the dot) to the types
// it may indicate. Ambiguous extensions map to several types: a bare .gz may
// wrap a tar, and a .tex file may be plain TeX or either LaTeX dialect.
var extensionTypes = map[string][]Type{
	"tar":     {TypeArchiveTar},
	"gz":      {TypeArchiveGz, TypeArchiveTgz},
	"tgz":     {TypeArchiveTgz},
	"pdf":     {TypePDF},
	"ps":      {TypePostscriptPS},
	"eps":     {TypePostscriptEPS},
	"epsi":    {TypePostscriptEPSI},
	"epsf":    {TypePostscriptEPSF},
	"tex":     {TypeTeX, TypeLaTeX209Main, TypeLaTeX2eMain},
	"log":     {TypeTeXLog},
	"fig":     {TypeTeXFig},
	"bib":     {TypeTeXBib},
	"bbl":     {TypeTeXBbl},
	"bst":     {TypeTeXBst},
	"sty":     {TypeTeXSty},
	"cls":     {TypeTeXCls},
	"clo":     {TypeTeXClo},
	"toc":     {TypeTeXToc},
	"pstex":   {TypeTeXPstex},
	"pstex_t": {TypeTeXPstexT},
	"gif":     {TypeImageGIF},
	"png":     {TypeImagePNG},
	"jpg":     {TypeImageJPG},
	"jpeg":    {TypeImageJPG},
}

// TypesFromExtension returns the candidate types for a filename based on its
// extension alone. The result may be empty when the extension is not
// recognized. ".tar.gz" is treated as a tgz, not a bare gz.
func TypesFromExtension(name string) []Type {
	base := filepath.Base(name)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "gz" && strings.HasSuffix(strings.ToLower(base), ".tar.gz") {
		ext = "tgz"
	}
	types, ok := extensionTypes[ext]
	if !ok {
		return nil
	}
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// magic numbers for content sniffing
var (
	gzipMagic = []byte{0x1f, 0x8b}
	pdfMagic  = []byte("%PDF-")
	psMagic   = []byte("%!PS")
)

const (
	tarMagicOffset = 257
	tarMagic       = "ustar"
)

// TypeFromFormat sniffs the content of the file at path and returns the
// detected type. Gzip files are probed one level deep: a gzip stream whose
// decompressed payload is a tar archive is reported as tgz rather than gz.
// Unrecognized content yields TypeUnknown with a nil error.
func TypeFromFormat(path string) (Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return TypeUnknown, err
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return TypeUnknown, err
		}
		if gzipWrapsTar(f) {
			return TypeArchiveTgz, nil
		}
		return TypeArchiveGz, nil
	case bytes.HasPrefix(header, pdfMagic):
		return TypePDF, nil
	case bytes.HasPrefix(header, psMagic):
		return TypePostscriptPS, nil
	case isTarHeader(f, header):
		return TypeArchiveTar, nil
	}

	return TypeUnknown, nil
}

// isTarHeader reports whether the file content carries the ustar magic at
// byte 257. Falls back to parsing the first tar header for pre-POSIX tars.
func isTarHeader(f *os.File, header []byte) bool {
	if len(header) > tarMagicOffset+len(tarMagic) &&
		string(header[tarMagicOffset:tarMagicOffset+len(tarMagic)]) == tarMagic {
		return true
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false
	}
	tr := tar.NewReader(f)
	_, err := tr.Next()
	return err == nil
}

// gzipWrapsTar reports whether the gzip stream read from r decompresses to
// a tar archive.
func gzipWrapsTar(r io.Reader) bool {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return false
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	_, err = tr.Next()
	return err == nil
}

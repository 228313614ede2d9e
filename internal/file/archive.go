package file

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ListContents returns the member names of the archive at path. Supported
// formats are tar, gzipped tar, and single-member gzip. For a bare gzip the
// member name comes from the gzip header when present, otherwise from the
// filename with its .gz suffix stripped.
func ListContents(path string) ([]string, error) {
	format, err := TypeFromFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case TypeArchiveTar:
		return listTarMembers(tar.NewReader(f))
	case TypeArchiveTgz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		return listTarMembers(tar.NewReader(gz))
	case TypeArchiveGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		name := gz.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), ".gz")
		}
		return []string{name}, nil
	}

	return nil, fmt.Errorf("file %s is not a supported archive format", path)
}

// CheckExtractable reports the problems that would prevent the archive at
// path from being extracted into targetDir. The returned messages are soft
// validation errors: an empty list means extraction is safe. Checked are
// absolute member paths, path traversal outside the target directory,
// duplicate member names, and unsupported member types.
func CheckExtractable(path string, targetDir string) []string {
	members, err := memberHeaders(path)
	if err != nil {
		return []string{fmt.Sprintf("Cannot read archive %s: %v", path, err)}
	}

	var errors []string
	seen := make(map[string]bool)
	cleanTarget := filepath.Clean(targetDir)
	prefix := cleanTarget
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}

	for _, m := range members {
		if filepath.IsAbs(m.name) {
			errors = append(errors, fmt.Sprintf("Archive entry %s has an absolute path", m.name))
			continue
		}
		// a leading .. element escapes any target, including the root
		clean := filepath.Clean(m.name)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
			errors = append(errors, fmt.Sprintf("Archive entry %s escapes the extraction directory", m.name))
			continue
		}
		dest := filepath.Join(cleanTarget, m.name)
		if dest != cleanTarget && !strings.HasPrefix(dest, prefix) {
			errors = append(errors, fmt.Sprintf("Archive entry %s escapes the extraction directory", m.name))
			continue
		}
		if seen[m.name] {
			errors = append(errors, fmt.Sprintf("Archive entry %s appears more than once", m.name))
			continue
		}
		seen[m.name] = true
		if !m.regular {
			errors = append(errors, fmt.Sprintf("Archive entry %s is not a regular file or directory", m.name))
		}
	}

	return errors
}

func listTarMembers(tr *tar.Reader) ([]string, error) {
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, hdr.Name)
	}
	return names, nil
}

type memberHeader struct {
	name    string
	regular bool
}

func memberHeaders(path string) ([]memberHeader, error) {
	format, err := TypeFromFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tr *tar.Reader
	switch format {
	case TypeArchiveTar:
		tr = tar.NewReader(f)
	case TypeArchiveTgz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		tr = tar.NewReader(gz)
	case TypeArchiveGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		name := gz.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), ".gz")
		}
		return []memberHeader{{name: name, regular: true}}, nil
	default:
		return nil, fmt.Errorf("file %s is not a supported archive format", path)
	}

	var members []memberHeader
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		regular := hdr.Typeflag == tar.TypeReg || hdr.Typeflag == tar.TypeDir
		members = append(members, memberHeader{name: hdr.Name, regular: regular})
	}

	return members, nil
}

package file

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gradhouse/gradhouse/internal/model"
)

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Metadata computes the identity record for the file at path: size, sniffed
// type, and MD5 + SHA256 fingerprints. Both digests are computed in a single
// pass over the content.
func Metadata(path string) (model.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.FileMetadata{}, err
	}

	format, err := TypeFromFormat(path)
	if err != nil {
		return model.FileMetadata{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.FileMetadata{}, err
	}
	defer f.Close()

	md5Hash := md5.New()
	shaHash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(md5Hash, shaHash), f); err != nil {
		return model.FileMetadata{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return model.FileMetadata{
		Filename:  filepath.Base(path),
		SizeBytes: info.Size(),
		FileType:  string(format),
		MD5:       hex.EncodeToString(md5Hash.Sum(nil)),
		SHA256:    hex.EncodeToString(shaHash.Sum(nil)),
	}, nil
}

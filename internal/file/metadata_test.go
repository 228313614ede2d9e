package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", []byte("hello"))

	assert.True(t, IsFile(path))
	assert.False(t, IsFile(dir))
	assert.False(t, IsFile(dir+"/missing"))
}

func TestMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", []byte("abc"))

	metadata, err := Metadata(path)
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf", metadata.Filename)
	assert.Equal(t, int64(3), metadata.SizeBytes)
	assert.Equal(t, string(TypeUnknown), metadata.FileType)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", metadata.MD5)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", metadata.SHA256)
}

func TestMetadataSniffsType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4\nbody\n"))

	metadata, err := Metadata(path)
	require.NoError(t, err)
	assert.Equal(t, string(TypePDF), metadata.FileType)
}

func TestMetadataMissingFile(t *testing.T) {
	_, err := Metadata(t.TempDir() + "/missing")
	assert.Error(t, err)
}

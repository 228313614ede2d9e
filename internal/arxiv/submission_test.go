package arxiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradhouse/gradhouse/internal/model"
)

func TestSubmissionTypeFromContents(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		expected model.SubmissionType
	}{
		{"single postscript", []string{"hep-th9902101.ps"}, model.SubmissionTypePostscript},
		{"several postscript files", []string{"a.ps", "b.ps"}, model.SubmissionTypePostscript},
		{"single pdf", []string{"paper.pdf"}, model.SubmissionTypePDF},
		{"tex with figures", []string{"main.tex", "fig1.png", "refs.bib"}, model.SubmissionTypeTeX},
		{"tex with pdf", []string{"main.tex", "extra.pdf"}, model.SubmissionTypeTeX},
		{"tex with everything", []string{"main.tex", "ch1.ps", "img.gif", "main.bbl", "style.sty"}, model.SubmissionTypeTeX},
		{"tex with unrecognized file", []string{"main.tex", "data.bin"}, model.SubmissionTypeUnknown},
		{"postscript and pdf mixed", []string{"a.ps", "b.pdf"}, model.SubmissionTypeUnknown},
		{"supporting files without a main", []string{"style.sty", "refs.bib"}, model.SubmissionTypeUnknown},
		{"no recognized extension", []string{"README"}, model.SubmissionTypeUnknown},
		{"eps alone is not postscript", []string{"fig1.eps"}, model.SubmissionTypeUnknown},
		{"empty contents", nil, model.SubmissionTypeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SubmissionTypeFromContents(tc.contents))
		})
	}
}

func TestGenerateSubmissionEntryPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "1202.3054.pdf", []byte("%PDF-1.4\nbody\n"))

	key, entry, err := GenerateSubmissionEntry(path, "bundle-sha")
	require.NoError(t, err)

	assert.Equal(t, entry.Metadata.SHA256, key)
	assert.Equal(t, model.SubmissionTypePDF, entry.Type)
	assert.Empty(t, entry.Diagnostics)
	assert.Equal(t, "1202.3054.pdf", entry.Metadata.Filename)
	assert.Equal(t, "https://arxiv.org/abs/1202.3054", entry.Origin.URL)
	assert.Equal(t, "bundle-sha", entry.Origin.BulkArchiveHash)
}

func TestGenerateSubmissionEntryTeX(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hep-th9902101.gz",
		gzipBytes(t, "", tarBytes(t, "main.tex", "fig1.png", "refs.bib")))

	key, entry, err := GenerateSubmissionEntry(path, "bundle-sha")
	require.NoError(t, err)

	assert.NotEmpty(t, key)
	assert.Equal(t, model.SubmissionTypeTeX, entry.Type)
	assert.Empty(t, entry.Diagnostics)
	assert.Equal(t, "https://arxiv.org/abs/hep-th/9902101", entry.Origin.URL)
}

func TestGenerateSubmissionEntryPostscript(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hep-th9902102.gz",
		gzipBytes(t, "hep-th9902102.ps", []byte("%!PS")))

	_, entry, err := GenerateSubmissionEntry(path, "bundle-sha")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionTypePostscript, entry.Type)
	assert.Empty(t, entry.Diagnostics)
}

func TestGenerateSubmissionEntryUnknownType(t *testing.T) {
	// gzip with no recorded name, the fallback member has no extension
	dir := t.TempDir()
	path := writeFile(t, dir, "hep-th9902103.gz", gzipBytes(t, "", []byte("body")))

	_, entry, err := GenerateSubmissionEntry(path, "bundle-sha")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionTypeUnknown, entry.Type)
	assert.Equal(t, []string{"Unknown submission type"}, entry.Diagnostics)
}

func TestGenerateSubmissionEntryInvalidContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "1202.3054.pdf", gzipBytes(t, "", []byte("payload")))

	_, entry, err := GenerateSubmissionEntry(path, "bundle-sha")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionTypeUnknown, entry.Type)
	assert.Equal(t, []string{"File format does not match file extension"}, entry.Diagnostics)
}

func TestGenerateSubmissionEntryInvalidFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", []byte("hello"))

	_, _, err := GenerateSubmissionEntry(path, "bundle-sha")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestGenerateSubmissionEntryMissingFile(t *testing.T) {
	_, _, err := GenerateSubmissionEntry(t.TempDir()+"/1202.3054.pdf", "bundle-sha")
	assert.ErrorContains(t, err, "not found")
}

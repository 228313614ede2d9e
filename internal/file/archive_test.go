package file

import (
	"archive/tar"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListContentsTar(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("hep-th9902101.gz", "one"),
		regularMember("hep-th9902102.pdf", "two"),
	})

	contents, err := ListContents(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hep-th9902101.gz", "hep-th9902102.pdf"}, contents)
}

func TestListContentsTgz(t *testing.T) {
	dir := t.TempDir()
	path := writeTgz(t, dir, "sources.tar.gz", []tarMember{
		regularMember("main.tex", "\\documentclass{article}"),
		regularMember("fig1.png", "not really a png"),
	})

	contents, err := ListContents(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.tex", "fig1.png"}, contents)
}

func TestListContentsGzipHeaderName(t *testing.T) {
	dir := t.TempDir()
	path := writeGzip(t, dir, "hep-th9902101.gz", "hep-th9902101.ps", []byte("%!PS"))

	contents, err := ListContents(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hep-th9902101.ps"}, contents)
}

func TestListContentsGzipWithoutHeaderName(t *testing.T) {
	// no name recorded in the gzip header, fall back to the filename
	dir := t.TempDir()
	path := writeGzip(t, dir, "hep-th9902101.gz", "", []byte("body"))

	contents, err := ListContents(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hep-th9902101"}, contents)
}

func TestListContentsUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4\n"))

	_, err := ListContents(path)
	assert.ErrorContains(t, err, "not a supported archive format")
}

func TestCheckExtractableCleanArchive(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("a.txt", "one"),
		regularMember("sub/b.txt", "two"),
	})

	assert.Empty(t, CheckExtractable(path, t.TempDir()))
}

func TestCheckExtractableRootTarget(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("hep-th9902101.gz", "one"),
	})

	assert.Empty(t, CheckExtractable(path, "/"))
}

func TestCheckExtractableAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("/etc/evil", "payload"),
	})

	errors := CheckExtractable(path, t.TempDir())
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "has an absolute path")
}

func TestCheckExtractableTraversal(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("../escape.txt", "payload"),
	})

	errors := CheckExtractable(path, t.TempDir())
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "escapes the extraction directory")
}

func TestCheckExtractableTraversalRootTarget(t *testing.T) {
	// joining onto "/" cleans the .. away, the member must still be flagged
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("../../etc/evil.tex", "payload"),
	})

	errors := CheckExtractable(path, "/")
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "escapes the extraction directory")
}

func TestCheckExtractableDuplicateMembers(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		regularMember("a.txt", "one"),
		regularMember("a.txt", "two"),
	})

	errors := CheckExtractable(path, t.TempDir())
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "appears more than once")
}

func TestCheckExtractableSymlinkMember(t *testing.T) {
	dir := t.TempDir()
	path := writeTar(t, dir, "archive.tar", []tarMember{
		{name: "link", typeflag: tar.TypeSymlink, linkname: "/etc/passwd"},
	})

	errors := CheckExtractable(path, t.TempDir())
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "not a regular file or directory")
}

func TestCheckExtractableUnreadable(t *testing.T) {
	errors := CheckExtractable(t.TempDir()+"/missing.tar", t.TempDir())
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "Cannot read archive")
}

func TestCheckExtractableGzip(t *testing.T) {
	dir := t.TempDir()
	path := writeGzip(t, dir, "hep-th9902101.gz", "hep-th9902101.ps", []byte("%!PS"))

	assert.Empty(t, CheckExtractable(path, t.TempDir()))
}

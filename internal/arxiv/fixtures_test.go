package arxiv

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/gradhouse/gradhouse/internal/model"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func tarBytes(t *testing.T, memberNames ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range memberNames {
		body := []byte("member body")
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(body))}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, headerName string, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Name = headerName
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// manifestFixture describes one <file> record of a manifest XML fixture.
// Fields default to a consistent entry for (yymm, seq).
type manifestFixture struct {
	yymm     string
	seq      int
	md5      string
	filename string // overrides the generated name when set
	override map[string]string
}

func (f manifestFixture) fields() map[string]string {
	filename := f.filename
	if filename == "" {
		filename = fmt.Sprintf("src/arXiv_src_%s_%03d.tar", f.yymm, f.seq)
	}
	md5 := f.md5
	if md5 == "" {
		md5 = "d41d8cd98f00b204e9800998ecf8427e"
	}
	fields := map[string]string{
		"content_md5sum": "0f343b0931126a20f133d67c2b018a3b",
		"filename":       filename,
		"first_item":     "hep-th" + f.yymm + "001",
		"last_item":      "hep-th" + f.yymm + "100",
		"md5sum":         md5,
		"num_items":      "100",
		"seq_num":        fmt.Sprintf("%d", f.seq),
		"size":           "1234567",
		"timestamp":      "1999-02-01 12:00:00",
		"yymm":           f.yymm,
	}
	for k, v := range f.override {
		if v == "" {
			delete(fields, k)
		} else {
			fields[k] = v
		}
	}
	return fields
}

func manifestXML(timestamp string, fixtures ...manifestFixture) string {
	var sb strings.Builder
	sb.WriteString("<arXivSRC>\n")
	fmt.Fprintf(&sb, "  <timestamp>%s</timestamp>\n", timestamp)
	for _, f := range fixtures {
		sb.WriteString("  <file>\n")
		for name, value := range f.fields() {
			fmt.Fprintf(&sb, "    <%s>%s</%s>\n", name, value, name)
		}
		sb.WriteString("  </file>\n")
	}
	sb.WriteString("</arXivSRC>\n")
	return sb.String()
}

func writeManifestXML(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "arXiv_src_manifest.xml", []byte(content))
}

func importManifest(t *testing.T, content string) *Manifest {
	t.Helper()

	m := NewManifest()
	require.NoError(t, m.ImportXML(writeManifestXML(t, content)))
	return m
}

// makeManifest builds a manifest in memory from (key, md5) pairs.
func makeManifest(t *testing.T, timestamp time.Time, entries map[string]string) *Manifest {
	t.Helper()

	m := NewManifest()
	m.SetTimestamp(timestamp)
	for filename, md5 := range entries {
		entry := model.BundleEntry{
			Filename:  "src/" + filename,
			SizeBytes: 1000,
			Hash:      model.BundleHash{MD5: md5},
		}
		require.NoError(t, m.AddEntry(entry))
	}
	return m
}

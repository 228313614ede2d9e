package file

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// tarMember describes one archive member for the test fixtures.
type tarMember struct {
	name     string
	data     []byte
	typeflag byte
	linkname string
}

func regularMember(name, data string) tarMember {
	return tarMember{name: name, data: []byte(data), typeflag: tar.TypeReg}
}

func tarBytes(t *testing.T, members []tarMember) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, m := range members {
		hdr := &tar.Header{
			Name:     m.name,
			Mode:     0644,
			Size:     int64(len(m.data)),
			Typeflag: m.typeflag,
			Linkname: m.linkname,
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if len(m.data) > 0 {
			_, err := tw.Write(m.data)
			require.NoError(t, err)
		}
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

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeTar(t *testing.T, dir, name string, members []tarMember) string {
	return writeFile(t, dir, name, tarBytes(t, members))
}

func writeTgz(t *testing.T, dir, name string, members []tarMember) string {
	return writeFile(t, dir, name, gzipBytes(t, "", tarBytes(t, members)))
}

func writeGzip(t *testing.T, dir, name, headerName string, payload []byte) string {
	return writeFile(t, dir, name, gzipBytes(t, headerName, payload))
}

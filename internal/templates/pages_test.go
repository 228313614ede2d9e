package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradhouse/gradhouse/internal/model"
	"github.com/gradhouse/gradhouse/internal/service"
)

func TestHome(t *testing.T) {
	var buf bytes.Buffer
	metrics := &service.SystemMetrics{
		TotalBulkArchives: 42,
		TotalSubmissions:  1000,
		LargestBundle:     "arXiv_src_9902_005.tar",
	}
	require.NoError(t, Home(metrics).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "arXiv_src_9902_005.tar")
	assert.Contains(t, html, "<td>42</td>")
	assert.Contains(t, html, "<td>1000</td>")
}

func TestBundlesEscapesContent(t *testing.T) {
	var buf bytes.Buffer
	records := []model.BundleRecord{{
		Metadata: model.FileMetadata{Filename: "<script>alert(1)</script>", SHA256: "abc"},
		URI:      "s3://arxiv/src/arXiv_src_9902_001.tar",
	}}
	require.NoError(t, Bundles(records).Render(context.Background(), &buf))

	html := buf.String()
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "/bundles/abc")
}

func TestBundleDetailListsProblems(t *testing.T) {
	var buf bytes.Buffer
	record := &model.BundleRecord{
		Metadata:    model.FileMetadata{Filename: "arXiv_src_9902_001.tar", SHA256: "abc"},
		URI:         "s3://arxiv/src/arXiv_src_9902_001.tar",
		Diagnostics: []string{"File format is not tar"},
	}
	submissions := []model.SubmissionEntry{{
		Metadata: model.FileMetadata{Filename: "hep-th9902101.gz"},
		Type:     model.SubmissionTypeTeX,
		Origin:   model.SubmissionOrigin{URL: "https://arxiv.org/abs/hep-th/9902101"},
	}}
	require.NoError(t, BundleDetail(record, submissions).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "File format is not tar")
	assert.Contains(t, html, "hep-th9902101.gz")
	assert.Contains(t, html, "Submissions (1)")
}

func TestHomeSubmissionTypeCounts(t *testing.T) {
	var buf bytes.Buffer
	metrics := &service.SystemMetrics{
		SubmissionTypeCounts: map[model.SubmissionType]int{
			model.SubmissionTypeTeX: 7,
			model.SubmissionTypePDF: 3,
		},
	}
	require.NoError(t, Home(metrics).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "Submissions by type")
	assert.Contains(t, html, "<tr><td>tex</td><td>7</td></tr>")
	assert.Contains(t, html, "<tr><td>pdf</td><td>3</td></tr>")
	assert.NotContains(t, html, "<td>postscript</td>")
}

func TestSubmissionDetail(t *testing.T) {
	var buf bytes.Buffer
	entry := &model.SubmissionEntry{
		Metadata: model.FileMetadata{
			Filename: "hep-th9902101.gz",
			SHA256:   "abc",
			FileType: "tgz",
		},
		Type:        model.SubmissionTypeUnknown,
		Origin:      model.SubmissionOrigin{URL: "https://arxiv.org/abs/hep-th/9902101", BulkArchiveHash: "def"},
		Diagnostics: []string{"Unknown submission type"},
	}
	require.NoError(t, SubmissionDetail(entry).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "hep-th9902101.gz")
	assert.Contains(t, html, "/bundles/def")
	assert.Contains(t, html, "Unknown submission type")
}

func TestHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, History(nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No manifest imported yet")
}

// Package templates renders the web pages of the bulk archive index.
// Components are plain templ.Component implementations.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/gradhouse/gradhouse/internal/model"
	"github.com/gradhouse/gradhouse/internal/service"
)

// layout wraps a page body in the shared HTML frame.
func layout(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s - arXiv Bulk Archive Index</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
th { background: #f0f0f0; }
nav a { margin-right: 1rem; }
.problems { color: #a00; }
</style>
</head>
<body>
<nav><a href="/">Overview</a><a href="/bundles">Bulk Archives</a><a href="/submissions">Submissions</a><a href="/history">History</a></nav>
<h1>%s</h1>
`, templ.EscapeString(title), templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, "</body>\n</html>\n")
		return err
	})
}

// submissionTypeOrder fixes the display order of the per-type counts.
var submissionTypeOrder = []model.SubmissionType{
	model.SubmissionTypeTeX,
	model.SubmissionTypePDF,
	model.SubmissionTypePostscript,
	model.SubmissionTypeUnknown,
}

// Home renders the system overview page.
func Home(metrics *service.SystemMetrics) templ.Component {
	return layout("Overview", func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<table>
<tr><th>Bulk archives in manifest</th><td>%d</td></tr>
<tr><th>Submissions in manifest</th><td>%d</td></tr>
<tr><th>Total size</th><td>%.3f GB</td></tr>
<tr><th>Average submission size</th><td>%.3f MB</td></tr>
<tr><th>Largest bundle</th><td>%s (%d bytes)</td></tr>
<tr><th>Registered bulk archives</th><td>%d</td></tr>
<tr><th>Registered submissions</th><td>%d</td></tr>
<tr><th>Submissions with problems</th><td>%d</td></tr>
</table>
`,
			metrics.TotalBulkArchives,
			metrics.TotalSubmissions,
			1.0e-9*float64(metrics.TotalSizeBytes),
			metrics.AverageSubmissionMB,
			templ.EscapeString(metrics.LargestBundle),
			metrics.LargestBundleBytes,
			metrics.RegisteredBundles,
			metrics.RegisteredSubmissions,
			metrics.ProblemSubmissions,
		); err != nil {
			return err
		}

		if len(metrics.SubmissionTypeCounts) == 0 {
			return nil
		}
		if _, err := fmt.Fprint(w, "<h2>Submissions by type</h2>\n<table>\n<tr><th>Type</th><th>Count</th></tr>\n"); err != nil {
			return err
		}
		for _, submissionType := range submissionTypeOrder {
			count, ok := metrics.SubmissionTypeCounts[submissionType]
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "<tr><td>%s</td><td>%d</td></tr>\n",
				templ.EscapeString(string(submissionType)), count); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "</table>\n")
		return err
	})
}

// Bundles renders the registered bulk archive list.
func Bundles(records []model.BundleRecord) templ.Component {
	return layout("Bulk Archives", func(w io.Writer) error {
		if len(records) == 0 {
			_, err := fmt.Fprint(w, "<p>No bulk archives registered yet.</p>\n")
			return err
		}
		if _, err := fmt.Fprint(w, "<table>\n<tr><th>Filename</th><th>Size</th><th>URI</th><th>Problems</th><th></th></tr>\n"); err != nil {
			return err
		}
		for _, r := range records {
			if _, err := fmt.Fprintf(w,
				"<tr><td>%s</td><td>%d</td><td>%s</td><td>%d</td><td><a href=\"/bundles/%s\">detail</a></td></tr>\n",
				templ.EscapeString(r.Metadata.Filename),
				r.Metadata.SizeBytes,
				templ.EscapeString(r.URI),
				len(r.Diagnostics),
				templ.EscapeString(r.Metadata.SHA256),
			); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "</table>\n")
		return err
	})
}

// BundleDetail renders one bulk archive record with its submissions.
func BundleDetail(record *model.BundleRecord, submissions []model.SubmissionEntry) templ.Component {
	return layout(record.Metadata.Filename, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<table>
<tr><th>SHA256</th><td>%s</td></tr>
<tr><th>MD5</th><td>%s</td></tr>
<tr><th>Size</th><td>%d bytes</td></tr>
<tr><th>URI</th><td>%s</td></tr>
</table>
`,
			templ.EscapeString(record.Metadata.SHA256),
			templ.EscapeString(record.Metadata.MD5),
			record.Metadata.SizeBytes,
			templ.EscapeString(record.URI),
		); err != nil {
			return err
		}

		if len(record.Diagnostics) > 0 {
			if _, err := fmt.Fprint(w, "<h2 class=\"problems\">Problems</h2>\n<ul>\n"); err != nil {
				return err
			}
			for _, d := range record.Diagnostics {
				if _, err := fmt.Fprintf(w, "<li>%s</li>\n", templ.EscapeString(d)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(w, "</ul>\n"); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "<h2>Submissions (%d)</h2>\n", len(submissions)); err != nil {
			return err
		}
		if len(submissions) == 0 {
			_, err := fmt.Fprint(w, "<p>No submissions registered for this archive.</p>\n")
			return err
		}
		if _, err := fmt.Fprint(w, "<table>\n<tr><th>Filename</th><th>Type</th><th>URL</th><th>Problems</th></tr>\n"); err != nil {
			return err
		}
		for _, s := range submissions {
			if _, err := fmt.Fprintf(w,
				"<tr><td>%s</td><td>%s</td><td><a href=\"%s\">%s</a></td><td>%d</td></tr>\n",
				templ.EscapeString(s.Metadata.Filename),
				templ.EscapeString(string(s.Type)),
				templ.EscapeString(s.Origin.URL),
				templ.EscapeString(s.Origin.URL),
				len(s.Diagnostics),
			); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "</table>\n")
		return err
	})
}

// Submissions renders the registered submission list.
func Submissions(entries []model.SubmissionEntry) templ.Component {
	return layout("Submissions", func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprint(w, "<p>No submissions registered yet.</p>\n")
			return err
		}
		if _, err := fmt.Fprint(w, "<table>\n<tr><th>Filename</th><th>Type</th><th>Size</th><th>URL</th><th>Archive</th><th>Problems</th></tr>\n"); err != nil {
			return err
		}
		for _, s := range entries {
			if _, err := fmt.Fprintf(w,
				"<tr><td><a href=\"/submissions/%s\">%s</a></td><td>%s</td><td>%d</td><td><a href=\"%s\">%s</a></td><td><a href=\"/bundles/%s\">%.12s</a></td><td>%d</td></tr>\n",
				templ.EscapeString(s.Metadata.SHA256),
				templ.EscapeString(s.Metadata.Filename),
				templ.EscapeString(string(s.Type)),
				s.Metadata.SizeBytes,
				templ.EscapeString(s.Origin.URL),
				templ.EscapeString(s.Origin.URL),
				templ.EscapeString(s.Origin.BulkArchiveHash),
				templ.EscapeString(s.Origin.BulkArchiveHash),
				len(s.Diagnostics),
			); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "</table>\n")
		return err
	})
}

// SubmissionDetail renders one submission record.
func SubmissionDetail(entry *model.SubmissionEntry) templ.Component {
	return layout(entry.Metadata.Filename, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<table>
<tr><th>SHA256</th><td>%s</td></tr>
<tr><th>MD5</th><td>%s</td></tr>
<tr><th>Size</th><td>%d bytes</td></tr>
<tr><th>File type</th><td>%s</td></tr>
<tr><th>Submission type</th><td>%s</td></tr>
<tr><th>URL</th><td><a href="%s">%s</a></td></tr>
<tr><th>Bulk archive</th><td><a href="/bundles/%s">%s</a></td></tr>
</table>
`,
			templ.EscapeString(entry.Metadata.SHA256),
			templ.EscapeString(entry.Metadata.MD5),
			entry.Metadata.SizeBytes,
			templ.EscapeString(entry.Metadata.FileType),
			templ.EscapeString(string(entry.Type)),
			templ.EscapeString(entry.Origin.URL),
			templ.EscapeString(entry.Origin.URL),
			templ.EscapeString(entry.Origin.BulkArchiveHash),
			templ.EscapeString(entry.Origin.BulkArchiveHash),
		); err != nil {
			return err
		}

		if len(entry.Diagnostics) == 0 {
			return nil
		}
		if _, err := fmt.Fprint(w, "<h2 class=\"problems\">Problems</h2>\n<ul>\n"); err != nil {
			return err
		}
		for _, d := range entry.Diagnostics {
			if _, err := fmt.Fprintf(w, "<li>%s</li>\n", templ.EscapeString(d)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "</ul>\n")
		return err
	})
}

// History renders the monthly manifest statistics.
func History(rows []service.MonthlyMetric) templ.Component {
	return layout("History", func(w io.Writer) error {
		if len(rows) == 0 {
			_, err := fmt.Fprint(w, "<p>No manifest imported yet.</p>\n")
			return err
		}
		if _, err := fmt.Fprint(w, "<table>\n<tr><th>Year</th><th>Month</th><th>Submissions</th><th>Size (GB)</th></tr>\n"); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "<tr><td>%d</td><td>%02d</td><td>%d</td><td>%.3f</td></tr>\n",
				row.Year, row.Month, row.Submissions, 1.0e-9*float64(row.SizeBytes)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "</table>\n")
		return err
	})
}

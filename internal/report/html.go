package report

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"depeval/internal/aggregate"
	"depeval/internal/runner"
)

// ReportPage builds the HTML report component for one run summary.
func ReportPage(summary runner.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		page := &pageWriter{w: w}
		page.raw(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Run `)
		page.text(summary.RunID)
		page.raw(`</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: right; }
th { background: #f2f2f2; }
th.name, td.name { text-align: left; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>Run `)
		page.text(summary.RunID)
		page.raw(`</h1>
<p class="meta">corpus `)
		page.text(summary.CorpusRoot)
		page.raw(` | started `)
		page.text(summary.StartedAt.Format(time.RFC3339))
		page.raw(` | finished `)
		page.text(summary.FinishedAt.Format(time.RFC3339))
		page.raw(`</p>
<p class="meta">instances `)
		page.count(summary.Instances)
		page.raw(` | scored `)
		page.count(summary.Scored)
		page.raw(` | failures `)
		page.count(summary.Failures)
		page.raw(` | unanswered `)
		page.count(summary.Unanswered)
		page.raw(` | skipped records `)
		page.count(summary.SkippedRecords)
		page.raw(` | malformed lines `)
		page.count(summary.MalformedLines)
		page.raw(`</p>
<h2>Groups</h2>
`)
		page.table(summary.Report.Groups)
		page.raw(`<h2>Overall</h2>
`)
		page.table(summary.Report.Overall)
		page.raw(`</body>
</html>
`)
		return page.err
	})
}

// pageWriter accumulates the first write error so component bodies stay
// free of per-write checks.
type pageWriter struct {
	w   io.Writer
	err error
}

func (page *pageWriter) raw(text string) {
	if page.err != nil {
		return
	}
	_, page.err = io.WriteString(page.w, text)
}

func (page *pageWriter) text(value string) {
	page.raw(templ.EscapeString(value))
}

func (page *pageWriter) count(value int) {
	page.raw(strconv.Itoa(value))
}

func (page *pageWriter) cell(class, value string) {
	if class != "" {
		page.raw(`<td class="` + class + `">`)
	} else {
		page.raw(`<td>`)
	}
	page.text(value)
	page.raw(`</td>`)
}

func (page *pageWriter) table(rows []aggregate.Row) {
	page.raw(`<table>
<tr><th class="name">Task</th><th class="name">Language</th><th class="name">Mode</th><th>Instances</th><th>Failures</th><th>Failure rate</th><th>Precision</th><th>Recall</th><th>F1</th><th>Accuracy</th><th>Chain checked</th><th>Chain exact rate</th></tr>
`)
	for _, row := range rows {
		precision, recall, f1 := "-", "-", "-"
		if source := row.Source; source != nil {
			precision = formatPercent(source.Precision)
			recall = formatPercent(source.Recall)
			f1 = formatPercent(source.F1)
		}
		accuracy, chainChecked, chainRate := "-", "-", "-"
		if trace := row.Trace; trace != nil {
			accuracy = formatPercent(trace.Accuracy)
			chainChecked = strconv.Itoa(trace.ChainChecked)
			chainRate = formatPercent(trace.ChainExactRate)
		}
		page.raw(`<tr>`)
		page.cell("name", orAll(string(row.Task)))
		page.cell("name", orAll(row.Language))
		page.cell("name", string(row.Mode))
		page.cell("", strconv.Itoa(row.Instances))
		page.cell("", strconv.Itoa(row.Failures))
		page.cell("", formatPercent(row.FailureRate))
		page.cell("", precision)
		page.cell("", recall)
		page.cell("", f1)
		page.cell("", accuracy)
		page.cell("", chainChecked)
		page.cell("", chainRate)
		page.raw(`</tr>
`)
	}
	page.raw(`</table>
`)
}

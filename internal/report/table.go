package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"depeval/internal/aggregate"
	"depeval/internal/runner"
)

// RenderTable writes the run summary as an aligned text table. Group rows
// come first, rollup rows follow after a blank line with "all" in place of
// task and language.
func RenderTable(writer io.Writer, summary runner.Summary, noColor bool) error {
	p := paletteFor(writer, noColor)
	var builder strings.Builder
	builder.WriteString(p.title("Run "+summary.RunID) + "\n")
	builder.WriteString(p.note(fmt.Sprintf(
		"corpus %s | instances %d | scored %d | unanswered %d",
		summary.CorpusRoot, summary.Instances, summary.Scored, summary.Unanswered,
	)) + "\n\n")

	table := [][]string{{"TASK", "LANGUAGE", "MODE", "N", "FAIL", "P", "R", "F1", "ACC", "CHAIN"}}
	for _, row := range summary.Report.Groups {
		table = append(table, tableRow(row))
	}
	if len(summary.Report.Overall) > 0 {
		table = append(table, nil)
		for _, row := range summary.Report.Overall {
			table = append(table, tableRow(row))
		}
	}
	writeAligned(&builder, table)

	if summary.Failures > 0 {
		builder.WriteString("\n" + p.alert(fmt.Sprintf("extraction failures: %d", summary.Failures)) + "\n")
	}
	if summary.SkippedRecords > 0 || summary.MalformedLines > 0 {
		builder.WriteString(p.note(fmt.Sprintf(
			"skipped records: %d | malformed lines: %d",
			summary.SkippedRecords, summary.MalformedLines,
		)) + "\n")
	}

	_, err := io.WriteString(writer, builder.String())
	return err
}

func tableRow(row aggregate.Row) []string {
	precision, recall, f1 := "-", "-", "-"
	if source := row.Source; source != nil {
		precision = formatPercent(source.Precision)
		recall = formatPercent(source.Recall)
		f1 = formatPercent(source.F1)
	}
	accuracy, chain := "-", "-"
	if trace := row.Trace; trace != nil {
		accuracy = formatPercent(trace.Accuracy)
		chain = formatPercent(trace.ChainExactRate)
	}
	return []string{
		orAll(string(row.Task)),
		orAll(row.Language),
		string(row.Mode),
		strconv.Itoa(row.Instances),
		formatPercent(row.FailureRate),
		precision,
		recall,
		f1,
		accuracy,
		chain,
	}
}

// writeAligned renders rows padded to column width. A nil row prints as a
// blank separator line.
func writeAligned(builder *strings.Builder, table [][]string) {
	var widths []int
	for _, row := range table {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for _, row := range table {
		if row == nil {
			builder.WriteByte('\n')
			continue
		}
		for i, cell := range row {
			if i > 0 {
				builder.WriteString("  ")
			}
			builder.WriteString(cell)
			if i < len(row)-1 {
				builder.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		builder.WriteByte('\n')
	}
}

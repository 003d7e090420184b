package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"depeval/internal/aggregate"
	"depeval/internal/runner"
)

var csvHeader = []string{
	"scope", "task", "language", "mode", "instances", "failures", "failure_rate",
	"precision", "recall", "f1",
	"accuracy", "correct", "chain_checked", "chain_exact", "chain_exact_rate",
}

// WriteCSV writes the report rows as summary.csv. Metrics that cannot be
// computed stay empty so spreadsheet averages are never polluted by
// placeholder zeros.
func WriteCSV(path string, summary runner.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	writer := csv.NewWriter(file)
	writer.Write(csvHeader)
	for _, row := range summary.Report.Groups {
		writer.Write(csvRow("group", row))
	}
	for _, row := range summary.Report.Overall {
		writer.Write(csvRow("overall", row))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return file.Close()
}

func csvRow(scope string, row aggregate.Row) []string {
	precision, recall, f1 := "", "", ""
	if source := row.Source; source != nil {
		precision = formatCSVRate(source.Precision)
		recall = formatCSVRate(source.Recall)
		f1 = formatCSVRate(source.F1)
	}
	accuracy, correct, chainChecked, chainExact, chainRate := "", "", "", "", ""
	if trace := row.Trace; trace != nil {
		accuracy = formatCSVRate(trace.Accuracy)
		correct = strconv.Itoa(trace.Correct)
		chainChecked = strconv.Itoa(trace.ChainChecked)
		chainExact = strconv.Itoa(trace.ChainExact)
		chainRate = formatCSVRate(trace.ChainExactRate)
	}
	return []string{
		scope,
		string(row.Task),
		row.Language,
		string(row.Mode),
		strconv.Itoa(row.Instances),
		strconv.Itoa(row.Failures),
		formatCSVRate(row.FailureRate),
		precision,
		recall,
		f1,
		accuracy,
		correct,
		chainChecked,
		chainExact,
		chainRate,
	}
}

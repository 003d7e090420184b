package report

import (
	"fmt"
	"os"

	"depeval/internal/runner"
)

// WriteArtifacts renders summary.csv and report.html into the run
// directory next to the files the run itself wrote.
func WriteArtifacts(paths runner.OutputPaths, summary runner.Summary) error {
	if err := WriteCSV(paths.SummaryCSVPath(), summary); err != nil {
		return err
	}
	html, err := RenderHTML(summary)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(paths.ReportPath(), []byte(html), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

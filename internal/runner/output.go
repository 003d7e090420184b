package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputPaths describes filesystem locations for run artifacts.
type OutputPaths struct {
	Root  string
	RunID string
}

// NewOutputPaths validates and constructs output paths metadata.
func NewOutputPaths(root, runID string) (OutputPaths, error) {
	if strings.TrimSpace(root) == "" {
		return OutputPaths{}, fmt.Errorf("output root is empty")
	}
	if strings.TrimSpace(runID) == "" {
		return OutputPaths{}, fmt.Errorf("run ID is empty")
	}
	return OutputPaths{Root: root, RunID: runID}, nil
}

// RunDir returns the directory for a specific run.
func (o OutputPaths) RunDir() string {
	return filepath.Join(o.Root, o.RunID)
}

// ResultsPath returns the path of the per-instance result stream.
func (o OutputPaths) ResultsPath() string {
	return filepath.Join(o.RunDir(), "results.jsonl")
}

// SummaryJSONPath returns the path of the run summary document.
func (o OutputPaths) SummaryJSONPath() string {
	return filepath.Join(o.RunDir(), "summary.json")
}

// SummaryCSVPath returns the path of the tabular summary.
func (o OutputPaths) SummaryCSVPath() string {
	return filepath.Join(o.RunDir(), "summary.csv")
}

// ReportPath returns the path of the HTML report.
func (o OutputPaths) ReportPath() string {
	return filepath.Join(o.RunDir(), "report.html")
}

// writeSummaryJSON writes the run summary as pretty JSON.
func writeSummaryJSON(path string, summary Summary) error {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadSummary reads a summary.json written by a previous run.
func LoadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read summary: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return Summary{}, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return summary, nil
}

// FindRunDir resolves a run directory under the output root. The ref may
// be a full run id, a unique prefix, or "latest" (also the empty string);
// run ids sort lexicographically by start time, so the greatest name wins.
func FindRunDir(outputRoot, ref string) (string, error) {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}
	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			runs = append(runs, entry.Name())
		}
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs found in %s", outputRoot)
	}

	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "latest" {
		latest := ""
		for _, name := range runs {
			if name > latest {
				latest = name
			}
		}
		return filepath.Join(outputRoot, latest), nil
	}

	var matches []string
	for _, name := range runs {
		if name == ref {
			return filepath.Join(outputRoot, name), nil
		}
		if strings.HasPrefix(name, ref) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("run %s not found in %s", ref, outputRoot)
	case 1:
		return filepath.Join(outputRoot, matches[0]), nil
	default:
		return "", fmt.Errorf("run ref %q matches %d runs", ref, len(matches))
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks field values and referenced paths. Relative paths are
// resolved against baseDir.
func Validate(cfg *Config, baseDir string) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}
	if baseDir == "" {
		baseDir = "."
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if strings.TrimSpace(cfg.Corpus.Root) == "" {
		add("corpus.root", "is required")
	} else {
		root := ResolvePath(baseDir, cfg.Corpus.Root)
		info, err := os.Stat(root)
		if err != nil {
			add("corpus.root", fmt.Sprintf("path not found at %q", cfg.Corpus.Root))
		} else if !info.IsDir() {
			add("corpus.root", fmt.Sprintf("path %q is not a directory", cfg.Corpus.Root))
		}
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		add("output_dir", "is required")
	}
	if cfg.Responses != "" {
		checkFile(add, "responses", baseDir, cfg.Responses)
	}
	if cfg.Lite != "" {
		checkFile(add, "lite", baseDir, cfg.Lite)
	}

	if _, err := SelectedTasks(cfg.Tasks); err != nil {
		add("tasks", err.Error())
	}
	if _, err := SelectedModes(cfg.Modes); err != nil {
		add("modes", err.Error())
	}
	for i, language := range cfg.Languages {
		if strings.TrimSpace(language) == "" {
			add(fmt.Sprintf("languages[%d]", i), "is required")
		}
	}
	if cfg.Workers < 1 {
		add("workers", "must be >= 1")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func checkFile(add func(field, message string), field, baseDir, path string) {
	info, err := os.Stat(ResolvePath(baseDir, path))
	if err != nil {
		add(field, fmt.Sprintf("path not found at %q", path))
		return
	}
	if info.IsDir() {
		add(field, fmt.Sprintf("path %q is a directory", path))
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validConfig returns a config that validates against the returned baseDir.
func validConfig(t *testing.T) (Config, string) {
	t.Helper()
	baseDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(baseDir, "corpus"), 0o755); err != nil {
		t.Fatalf("create corpus dir: %v", err)
	}
	cfg := Config{
		Version:   1,
		Corpus:    CorpusConfig{Root: "corpus"},
		OutputDir: "out",
		Workers:   2,
	}
	return cfg, baseDir
}

// TestValidateAcceptsMinimalConfig verifies the happy path.
func TestValidateAcceptsMinimalConfig(t *testing.T) {
	cfg, baseDir := validConfig(t)
	if err := Validate(&cfg, baseDir); err != nil {
		t.Fatalf("expected config to validate, got %v", err)
	}
}

// TestValidateVersion verifies version checks.
func TestValidateVersion(t *testing.T) {
	cfg, baseDir := validConfig(t)
	cfg.Version = 0
	if err := Validate(&cfg, baseDir); err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected version error, got %v", err)
	}

	cfg.Version = 2
	if err := Validate(&cfg, baseDir); err == nil || !strings.Contains(err.Error(), "unsupported version") {
		t.Fatalf("expected unsupported version error, got %v", err)
	}
}

// TestValidateCorpusRoot verifies the corpus root must exist.
func TestValidateCorpusRoot(t *testing.T) {
	cfg, baseDir := validConfig(t)
	cfg.Corpus.Root = "missing"
	err := Validate(&cfg, baseDir)
	if err == nil || !strings.Contains(err.Error(), "corpus.root") {
		t.Fatalf("expected corpus.root error, got %v", err)
	}
}

// TestValidateResponsesPath verifies the responses file must exist when set.
func TestValidateResponsesPath(t *testing.T) {
	cfg, baseDir := validConfig(t)
	cfg.Responses = "missing.jsonl"
	err := Validate(&cfg, baseDir)
	if err == nil || !strings.Contains(err.Error(), "responses") {
		t.Fatalf("expected responses error, got %v", err)
	}
}

// TestValidateSelectors verifies task and mode names are checked.
func TestValidateSelectors(t *testing.T) {
	cfg, baseDir := validConfig(t)
	cfg.Tasks = []string{"data", "bogus"}
	cfg.Modes = []string{"sideways"}
	err := Validate(&cfg, baseDir)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(validation.Issues) != 2 {
		t.Fatalf("expected both selector issues, got %+v", validation.Issues)
	}
	if !strings.Contains(err.Error(), "bogus") || !strings.Contains(err.Error(), "sideways") {
		t.Fatalf("expected unknown names in message, got %q", err.Error())
	}
}

// TestValidateWorkers verifies the worker floor.
func TestValidateWorkers(t *testing.T) {
	cfg, baseDir := validConfig(t)
	cfg.Workers = -1
	err := Validate(&cfg, baseDir)
	if err == nil || !strings.Contains(err.Error(), "workers") {
		t.Fatalf("expected workers error, got %v", err)
	}
}

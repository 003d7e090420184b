package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1

corpus:
  root: "./corpus"

output_dir: "./depeval-results"

# responses: "./responses.jsonl"
# lite: "./lite.json"
# tasks: [data, control, infoflow]
# languages: [c, java, python]
# modes: [source, trace]
# workers: 8
# database: "./depeval.duckdb"
# strict_coverage: true
`

// Scaffold writes a starter config file and an empty corpus root next to
// it. Existing files are never overwritten.
func Scaffold(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ConfigFileName)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("config path %q is a directory", path)
		}
		return "", fmt.Errorf("config file already exists at %q", path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "corpus"), 0o755); err != nil {
		return "", fmt.Errorf("create corpus dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}

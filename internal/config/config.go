package config

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the parsed run configuration. Command-line flags override
// whatever the file sets; empty selector lists mean "everything".
type Config struct {
	Version        int          `yaml:"version"`
	Corpus         CorpusConfig `yaml:"corpus"`
	Responses      string       `yaml:"responses"`
	OutputDir      string       `yaml:"output_dir"`
	Lite           string       `yaml:"lite"`
	Tasks          []string     `yaml:"tasks"`
	Languages      []string     `yaml:"languages"`
	Modes          []string     `yaml:"modes"`
	Workers        int          `yaml:"workers"`
	Database       string       `yaml:"database"`
	StrictCoverage bool         `yaml:"strict_coverage"`
}

// CorpusConfig locates the annotation corpus.
type CorpusConfig struct {
	Root string `yaml:"root"`
}

// Parse decodes a config document. Unknown fields and multi-document files
// are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

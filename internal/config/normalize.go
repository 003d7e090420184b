package config

import (
	"runtime"
	"strings"
)

// Normalize fills defaults and canonicalizes selector tokens in place.
func Normalize(cfg *Config) {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Tasks = normalizeTokens(cfg.Tasks)
	cfg.Languages = normalizeTokens(cfg.Languages)
	cfg.Modes = normalizeTokens(cfg.Modes)
}

func normalizeTokens(values []string) []string {
	tokens := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		tokens = append(tokens, value)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

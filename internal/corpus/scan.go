package corpus

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScanRecord carries the static-analysis facts for one program. Line slices
// are sorted and duplicate free, and every listed line falls inside the
// function window.
type ScanRecord struct {
	EntryID   string
	File      string
	Function  string
	StartLine int
	EndLine   int
	Lines     []int
	Branches  []int
	Defs      map[string][]int
	Uses      map[string][]int
}

// HasLine reports whether the analyzer recorded the line as executable.
func (record ScanRecord) HasLine(line int) bool {
	index := sort.SearchInts(record.Lines, line)
	return index < len(record.Lines) && record.Lines[index] == line
}

// BranchesBefore returns the branch lines strictly before the given line.
func (record ScanRecord) BranchesBefore(line int) []int {
	before := []int{}
	for _, branch := range record.Branches {
		if branch >= line {
			break
		}
		before = append(before, branch)
	}
	return before
}

// Symbols returns the variable names seen by the analyzer, sorted.
func (record ScanRecord) Symbols() []string {
	seen := map[string]struct{}{}
	for symbol := range record.Defs {
		seen[symbol] = struct{}{}
	}
	for symbol := range record.Uses {
		seen[symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

type scanFile struct {
	Version int                  `yaml:"version"`
	Entries map[string]scanEntry `yaml:"entries"`
}

type scanEntry struct {
	File      string           `yaml:"file"`
	Function  string           `yaml:"function"`
	StartLine int              `yaml:"start_line"`
	EndLine   int              `yaml:"end_line"`
	Lines     []int            `yaml:"lines"`
	Branches  []int            `yaml:"branches"`
	Defs      map[string][]int `yaml:"defs"`
	Uses      map[string][]int `yaml:"uses"`
}

func parseScanFile(data []byte) (scanFile, error) {
	var file scanFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return scanFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return scanFile{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return scanFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	return file, nil
}

// normalizeScan validates parsed scan metadata and returns records keyed by
// program identity.
func normalizeScan(file scanFile, path string) (map[string]ScanRecord, error) {
	collector := &issueCollector{}
	if file.Version == 0 {
		collector.add("version", "is required")
	} else if file.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", file.Version))
	}
	if len(file.Entries) == 0 {
		collector.add("entries", "must include at least one entry")
	}

	ids := make([]string, 0, len(file.Entries))
	for id := range file.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := map[string]ScanRecord{}
	for _, id := range ids {
		entry := file.Entries[id]
		prefix := fmt.Sprintf("entries[%s]", id)
		entry.File = strings.TrimSpace(entry.File)
		if entry.File == "" {
			collector.add(prefix+".file", "is required")
			continue
		}
		identity, err := ParseProgramFilename(entry.File)
		if err != nil {
			collector.add(prefix+".file", err.Error())
			continue
		}
		if entry.Function != "" && entry.Function != identity.Function {
			collector.add(prefix+".function", fmt.Sprintf("%q does not match file name function %q", entry.Function, identity.Function))
			continue
		}
		if entry.StartLine != 0 && entry.StartLine != identity.StartLine {
			collector.add(prefix+".start_line", fmt.Sprintf("%d does not match file name window start %d", entry.StartLine, identity.StartLine))
			continue
		}
		if entry.EndLine != 0 && entry.EndLine != identity.EndLine {
			collector.add(prefix+".end_line", fmt.Sprintf("%d does not match file name window end %d", entry.EndLine, identity.EndLine))
			continue
		}
		record := ScanRecord{
			EntryID:   id,
			File:      entry.File,
			Function:  identity.Function,
			StartLine: identity.StartLine,
			EndLine:   identity.EndLine,
			Lines:     normalizeLineSlice(entry.Lines),
		}
		if len(record.Lines) == 0 {
			collector.add(prefix+".lines", "must include at least one line")
			continue
		}
		valid := true
		for _, line := range record.Lines {
			if line < record.StartLine || line > record.EndLine {
				collector.add(prefix+".lines", fmt.Sprintf("line %d is outside window %d..%d", line, record.StartLine, record.EndLine))
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		record.Branches = normalizeLineSlice(entry.Branches)
		for _, branch := range record.Branches {
			if !record.HasLine(branch) {
				collector.add(prefix+".branches", fmt.Sprintf("branch line %d is not a recorded line", branch))
				valid = false
				break
			}
		}
		record.Defs = normalizeSymbolLines(collector, prefix+".defs", record, entry.Defs)
		record.Uses = normalizeSymbolLines(collector, prefix+".uses", record, entry.Uses)
		if !valid || record.Defs == nil || record.Uses == nil {
			continue
		}
		key := identity.String()
		if _, exists := records[key]; exists {
			collector.add(prefix+".file", fmt.Sprintf("duplicate program %q", key))
			continue
		}
		records[key] = record
	}

	if err := collector.result(path); err != nil {
		return nil, err
	}
	return records, nil
}

func normalizeSymbolLines(collector *issueCollector, field string, record ScanRecord, raw map[string][]int) map[string][]int {
	normalized := map[string][]int{}
	symbols := make([]string, 0, len(raw))
	for symbol := range raw {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		name := strings.TrimSpace(symbol)
		if name == "" {
			collector.add(field, "symbol name is required")
			return nil
		}
		lines := normalizeLineSlice(raw[symbol])
		for _, line := range lines {
			if !record.HasLine(line) {
				collector.add(fmt.Sprintf("%s.%s", field, name), fmt.Sprintf("line %d is not a recorded line", line))
				return nil
			}
		}
		normalized[name] = lines
	}
	return normalized
}

func normalizeLineSlice(lines []int) []int {
	seen := map[int]struct{}{}
	normalized := make([]int, 0, len(lines))
	for _, line := range lines {
		if _, exists := seen[line]; exists {
			continue
		}
		seen[line] = struct{}{}
		normalized = append(normalized, line)
	}
	sort.Ints(normalized)
	return normalized
}

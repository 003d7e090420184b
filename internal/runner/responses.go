package runner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"depeval/internal/eval"
	"depeval/internal/query"
)

// maxRecordBytes bounds a single response line. Model replies run long but
// not this long; anything larger is a broken file.
const maxRecordBytes = 32 * 1024 * 1024

// Record is one collected model reply read from the responses file. The
// Responses list carries every retry attempt in order; a plain Response
// string is accepted for single-attempt files.
type Record struct {
	ID              string       `json:"id"`
	Task            string       `json:"task"`
	Language        string       `json:"language"`
	Mode            string       `json:"mode"`
	ProgramID       string       `json:"program_id"`
	Target          *RecordPoint `json:"target"`
	CandidateSource *RecordPoint `json:"candidate_source"`
	Responses       []string     `json:"responses"`
	Response        string       `json:"response"`
	InputTokens     int          `json:"input_tokens"`
	OutputTokens    int          `json:"output_tokens"`
	ElapsedSeconds  float64      `json:"elapsed_seconds"`
}

// RecordPoint is a line/symbol reference inside a response record.
type RecordPoint struct {
	Line   int    `json:"line"`
	Symbol string `json:"symbol"`
}

func (record Record) attempts() []string {
	if len(record.Responses) > 0 {
		return record.Responses
	}
	if strings.TrimSpace(record.Response) != "" {
		return []string{record.Response}
	}
	return nil
}

func (record Record) usage() *eval.Usage {
	if record.InputTokens == 0 && record.OutputTokens == 0 && record.ElapsedSeconds == 0 {
		return nil
	}
	return &eval.Usage{
		InputTokens:    record.InputTokens,
		OutputTokens:   record.OutputTokens,
		ElapsedSeconds: record.ElapsedSeconds,
	}
}

// ReadRecords reads a JSONL response file. Undecodable lines are counted
// and skipped, never fatal: one bad response must not invalidate the batch.
func ReadRecords(path string) ([]Record, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open responses: %w", err)
	}
	defer file.Close()
	records, malformed, err := readRecords(file)
	if err != nil {
		return nil, 0, fmt.Errorf("read responses %s: %w", path, err)
	}
	return records, malformed, nil
}

func readRecords(r io.Reader) ([]Record, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	var records []Record
	malformed := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			malformed++
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return records, malformed, nil
}

// matchRecords pairs records with built instances, by id when the record
// carries one and by identity fields otherwise. Records matching no
// instance are counted as skipped; the last record for an instance wins.
func matchRecords(instances []query.Instance, records []Record) (map[int]Record, int) {
	byID := make(map[string]int, len(instances))
	byFields := make(map[string]int, len(instances))
	for i, instance := range instances {
		byID[instance.ID] = i
		byFields[instanceFieldKey(instance)] = i
	}
	matched := make(map[int]Record, len(records))
	skipped := 0
	for _, record := range records {
		if id := strings.TrimSpace(record.ID); id != "" {
			if index, ok := byID[id]; ok {
				matched[index] = record
				continue
			}
			skipped++
			continue
		}
		if index, ok := byFields[recordFieldKey(record)]; ok {
			matched[index] = record
			continue
		}
		skipped++
	}
	return matched, skipped
}

func instanceFieldKey(instance query.Instance) string {
	source := "-"
	if instance.CandidateSource != nil {
		source = fmt.Sprintf("%d:%s", instance.CandidateSource.Line, instance.CandidateSource.Symbol)
	}
	return strings.Join([]string{
		string(instance.Task),
		string(instance.Mode),
		instance.Language,
		instance.ProgramID,
		fmt.Sprintf("%d:%s", instance.Target.Line, instance.Target.Symbol),
		source,
	}, "|")
}

func recordFieldKey(record Record) string {
	target := "-"
	if record.Target != nil {
		target = fmt.Sprintf("%d:%s", record.Target.Line, record.Target.Symbol)
	}
	source := "-"
	if record.CandidateSource != nil {
		source = fmt.Sprintf("%d:%s", record.CandidateSource.Line, record.CandidateSource.Symbol)
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(record.Task)),
		strings.ToLower(strings.TrimSpace(record.Mode)),
		strings.ToLower(strings.TrimSpace(record.Language)),
		strings.TrimSpace(record.ProgramID),
		target,
		source,
	}, "|")
}

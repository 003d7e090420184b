package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depeval/internal/runner"
	"depeval/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// scoreFixture writes a corpus, config, and responses file under a temp
// directory and returns the directory and the config path.
func scoreFixture(t *testing.T, responses string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteSampleCorpus(t, dir)
	configPath := filepath.Join(dir, ".depeval.yml")
	testutil.WriteFile(t, configPath, `version: 1
corpus:
  root: "./corpus"
responses: "./responses.jsonl"
output_dir: "./out"
tasks: [data]
languages: [python]
modes: [source]
workers: 2
`)
	testutil.WriteFile(t, filepath.Join(dir, "responses.jsonl"), responses)
	return dir, configPath
}

const pythonSourceResponses = `{"id": "data_python_p002_s0002_flow_sum_1_6_L3:b", "response": "` + "```" + `json\n{\"sources\": [{\"line\": 2, \"symbol\": \"b\"}]}\n` + "```" + `"}
{"id": "data_python_p002_s0002_flow_sum_1_6_L5:b", "response": "Sources: L2:b"}
`

// TestRunUsage verifies the dispatcher's usage and unknown-command paths.
func TestRunUsage(t *testing.T) {
	code, stdout, _ := runCLI(t)
	if code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if !strings.Contains(stdout, "depeval <command>") {
		t.Fatalf("expected usage text, got %q", stdout)
	}

	code, stdout, _ = runCLI(t, "help")
	if code != ExitOK || !strings.Contains(stdout, "score") {
		t.Fatalf("expected help to list commands, got code %d output %q", code, stdout)
	}

	code, _, stderr := runCLI(t, "bogus")
	if code != ExitUsage || !strings.Contains(stderr, "Unknown command: bogus") {
		t.Fatalf("expected unknown command error, got code %d stderr %q", code, stderr)
	}
}

// TestInitScaffolds verifies init writes a starter config once.
func TestInitScaffolds(t *testing.T) {
	dir := t.TempDir()
	code, stdout, stderr := runCLI(t, "init", "--dir", dir)
	if code != ExitOK {
		t.Fatalf("init failed: %s", stderr)
	}
	if !strings.Contains(stdout, ".depeval.yml") {
		t.Fatalf("expected scaffold path in output, got %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, ".depeval.yml")); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	code, _, stderr = runCLI(t, "init", "--dir", dir)
	if code != ExitError || !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected second init to fail, got code %d stderr %q", code, stderr)
	}
}

// TestValidateReportsStats verifies validate checks the corpus and prints
// per-language counts.
func TestValidateReportsStats(t *testing.T) {
	_, configPath := scoreFixture(t, pythonSourceResponses)
	code, stdout, stderr := runCLI(t, "validate", "--config", configPath)
	if code != ExitOK {
		t.Fatalf("validate failed: %s", stderr)
	}
	if !strings.Contains(stdout, "Config OK") {
		t.Fatalf("expected Config OK, got %q", stdout)
	}
	if !strings.Contains(stdout, "python: 1 programs") {
		t.Fatalf("expected python stats, got %q", stdout)
	}
}

// TestValidateRejectsUnknownFields verifies strict config parsing surfaces
// as a validation failure.
func TestValidateRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".depeval.yml")
	testutil.WriteFile(t, configPath, "version: 1\nbogus: true\n")
	code, _, stderr := runCLI(t, "validate", "--config", configPath)
	if code != ExitError || !strings.Contains(stderr, "Validation failed") {
		t.Fatalf("expected validation failure, got code %d stderr %q", code, stderr)
	}
}

// TestQueriesEnumerates verifies the queries command emits instance JSONL
// without gold fields unless asked.
func TestQueriesEnumerates(t *testing.T) {
	dir := t.TempDir()
	root := testutil.WriteSampleCorpus(t, dir)

	code, stdout, stderr := runCLI(t, "queries",
		"--corpus", root, "--tasks", "data", "--languages", "python", "--modes", "source")
	if code != ExitOK {
		t.Fatalf("queries failed: %s", stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 instances, got %d: %q", len(lines), stdout)
	}
	if !strings.Contains(lines[0], `"id":"data_python_p002_s0002_flow_sum_1_6_L3:b"`) {
		t.Fatalf("unexpected first instance: %q", lines[0])
	}
	if strings.Contains(stdout, "gold_sources") {
		t.Fatalf("expected gold fields to be omitted, got %q", stdout)
	}
	if !strings.Contains(stderr, "3 instances") {
		t.Fatalf("expected instance count on stderr, got %q", stderr)
	}

	code, stdout, _ = runCLI(t, "queries",
		"--corpus", root, "--tasks", "data", "--languages", "python", "--modes", "source", "--gold")
	if code != ExitOK || !strings.Contains(stdout, "gold_sources") {
		t.Fatalf("expected gold fields with --gold, got code %d output %q", code, stdout)
	}
}

// TestScoreEndToEnd verifies score grades responses, writes every artifact,
// and prints the summary table.
func TestScoreEndToEnd(t *testing.T) {
	dir, configPath := scoreFixture(t, pythonSourceResponses)
	dbPath := filepath.Join(dir, "scores.duckdb")

	code, stdout, stderr := runCLI(t, "score", "--config", configPath, "--db", dbPath)
	if code != ExitOK {
		t.Fatalf("score failed: %s", stderr)
	}
	for _, token := range []string{"TASK", "data", "python", "100.00%", "83.33%", "unanswered 1", "Results: ", "Report: "} {
		if !strings.Contains(stdout, token) {
			t.Fatalf("expected %q in output:\n%s", token, stdout)
		}
	}
	if strings.Contains(stdout, "\x1b[") {
		t.Fatalf("expected plain output for a non-terminal, got %q", stdout)
	}

	outputRoot := filepath.Join(dir, "out")
	runDir, err := runner.FindRunDir(outputRoot, "latest")
	if err != nil {
		t.Fatalf("find run dir: %v", err)
	}
	for _, name := range []string{"results.jsonl", "summary.json", "summary.csv", "report.html"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	summary, err := runner.LoadSummary(filepath.Join(runDir, "summary.json"))
	if err != nil {
		t.Fatalf("load summary: %v", err)
	}
	if summary.Instances != 3 || summary.Scored != 2 || summary.Unanswered != 1 {
		t.Fatalf("unexpected summary counts: %+v", summary)
	}
}

// TestScoreStrictCoverage verifies the flag turns unanswered instances into
// extraction failures.
func TestScoreStrictCoverage(t *testing.T) {
	dir, configPath := scoreFixture(t, pythonSourceResponses)

	code, stdout, stderr := runCLI(t, "score", "--config", configPath, "--strict-coverage")
	if code != ExitOK {
		t.Fatalf("score failed: %s", stderr)
	}
	if !strings.Contains(stdout, "extraction failures: 1") {
		t.Fatalf("expected failure note, got %q", stdout)
	}

	runDir, err := runner.FindRunDir(filepath.Join(dir, "out"), "latest")
	if err != nil {
		t.Fatalf("find run dir: %v", err)
	}
	summary, err := runner.LoadSummary(filepath.Join(runDir, "summary.json"))
	if err != nil {
		t.Fatalf("load summary: %v", err)
	}
	if summary.Scored != 3 || summary.Failures != 1 {
		t.Fatalf("expected 3 scored with 1 failure, got %+v", summary)
	}
}

// TestScoreMissingResponses verifies a clear error when the config names no
// responses file.
func TestScoreMissingResponses(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSampleCorpus(t, dir)
	configPath := filepath.Join(dir, ".depeval.yml")
	testutil.WriteFile(t, configPath, `version: 1
corpus:
  root: "./corpus"
output_dir: "./out"
`)
	code, _, stderr := runCLI(t, "score", "--config", configPath)
	if code != ExitError || !strings.Contains(stderr, "responses file is required") {
		t.Fatalf("expected responses error, got code %d stderr %q", code, stderr)
	}
}

// TestReportRerenders verifies report rebuilds artifacts for a past run.
func TestReportRerenders(t *testing.T) {
	dir, configPath := scoreFixture(t, pythonSourceResponses)
	code, _, stderr := runCLI(t, "score", "--config", configPath)
	if code != ExitOK {
		t.Fatalf("score failed: %s", stderr)
	}

	outputRoot := filepath.Join(dir, "out")
	runDir, err := runner.FindRunDir(outputRoot, "latest")
	if err != nil {
		t.Fatalf("find run dir: %v", err)
	}
	reportPath := filepath.Join(runDir, "report.html")
	if err := os.Remove(reportPath); err != nil {
		t.Fatalf("remove report: %v", err)
	}

	code, stdout, stderr := runCLI(t, "report", "--output", outputRoot, "--run", "latest")
	if code != ExitOK {
		t.Fatalf("report failed: %s", stderr)
	}
	if !strings.Contains(stdout, filepath.Base(runDir)) {
		t.Fatalf("expected run id in output, got %q", stdout)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("expected report to be rewritten: %v", err)
	}
}

// TestResolveUIMode verifies live UI selection against TTY detection.
func TestResolveUIMode(t *testing.T) {
	var buffer bytes.Buffer

	decision, err := resolveUIMode("auto", &buffer)
	if err != nil || decision.useLive {
		t.Fatalf("expected plain for non-terminal auto, got %+v err %v", decision, err)
	}

	decision, err = resolveUIMode("live", &buffer)
	if err != nil {
		t.Fatalf("resolve live: %v", err)
	}
	if decision.useLive || decision.warning == "" {
		t.Fatalf("expected fallback with warning, got %+v", decision)
	}

	if _, err := resolveUIMode("bogus", &buffer); err == nil {
		t.Fatalf("expected error for unknown mode")
	}

	previous := isTerminal
	isTerminal = func(io.Writer) bool { return true }
	defer func() { isTerminal = previous }()
	decision, err = resolveUIMode("auto", &buffer)
	if err != nil || !decision.useLive {
		t.Fatalf("expected live on a terminal, got %+v err %v", decision, err)
	}
}

package cucumber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"depeval/internal/cli"
	"depeval/internal/runner"
	"depeval/internal/testutil"
)

type featureState struct {
	workDir    string
	previousWD string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	exitCode   int
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a corpus with annotated C and Python programs$`, state.aCorpusWithAnnotatedPrograms)
	ctx.Step(`^a responses file answering every Python data query$`, state.aResponsesFileAnsweringEveryQuery)
	ctx.Step(`^a responses file with one unparseable Python data answer$`, state.aResponsesFileWithOneUnparseableAnswer)
	ctx.Step(`^the config version is unsupported$`, state.theConfigVersionIsUnsupported)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the exit code is (\d+)$`, state.theExitCodeIs)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the summary reports (\d+) scored instances$`, state.theSummaryReportsScored)
	ctx.Step(`^the summary reports (\d+) extraction failures?$`, state.theSummaryReportsFailures)
	ctx.Step(`^the run directory contains:$`, state.theRunDirectoryContains)
	ctx.Step(`^the error message mentions "([^"]+)"$`, state.theErrorMessageMentions)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
}

func (s *featureState) reset() {
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
}

func (s *featureState) cleanup() {
	if s.previousWD != "" {
		_ = os.Chdir(s.previousWD)
		s.previousWD = ""
	}
	if s.workDir != "" {
		_ = os.RemoveAll(s.workDir)
		s.workDir = ""
	}
}

func validConfigYAML() string {
	return `version: 1
corpus:
  root: "./corpus"
responses: "./responses.jsonl"
output_dir: "./out"
tasks: [data]
languages: [python]
modes: [source]
workers: 2
`
}

func (s *featureState) writeConfig(content string) error {
	path := filepath.Join(s.workDir, ".depeval.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (s *featureState) writeResponses(lines ...string) error {
	path := filepath.Join(s.workDir, "responses.jsonl")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write responses: %w", err)
	}
	return nil
}

func (s *featureState) aCorpusWithAnnotatedPrograms() error {
	dir, err := os.MkdirTemp("", "depeval-feature-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	s.workDir = dir

	root := filepath.Join(dir, "corpus")
	for name, content := range testutil.SampleCorpusFiles() {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create corpus dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write corpus file: %w", err)
		}
	}

	if err := s.writeResponses(); err != nil {
		return err
	}
	if err := s.writeConfig(validConfigYAML()); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working dir: %w", err)
	}
	s.previousWD = wd
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("chdir: %w", err)
	}
	return nil
}

func (s *featureState) aResponsesFileAnsweringEveryQuery() error {
	return s.writeResponses(
		`{"id": "data_python_p002_s0002_flow_sum_1_6_L3:b", "response": "Sources: L2:b"}`,
		`{"id": "data_python_p002_s0002_flow_sum_1_6_L4:b", "response": "Sources: L2:b"}`,
		`{"id": "data_python_p002_s0002_flow_sum_1_6_L5:b", "response": "Sources: L2:b, L4:b"}`,
	)
}

func (s *featureState) aResponsesFileWithOneUnparseableAnswer() error {
	return s.writeResponses(
		`{"id": "data_python_p002_s0002_flow_sum_1_6_L3:b", "response": "Sources: L2:b"}`,
		`{"id": "data_python_p002_s0002_flow_sum_1_6_L4:b", "response": "Sources: L2:b"}`,
		`{"id": "data_python_p002_s0002_flow_sum_1_6_L5:b", "response": "I believe the flow is too tangled to tell."}`,
	)
}

func (s *featureState) theConfigVersionIsUnsupported() error {
	return s.writeConfig(strings.Replace(validConfigYAML(), "version: 1", "version: 99", 1))
}

func (s *featureState) iRunCommand(command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("command is empty")
	}
	if args[0] == "depeval" {
		args = args[1:]
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *featureState) theExitCodeIs(code int) error {
	if s.exitCode != code {
		return fmt.Errorf("expected exit code %d, got %d\nstderr: %s", code, s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

func (s *featureState) theSummaryReportsScored(count int) error {
	token := "scored " + strconv.Itoa(count)
	if !strings.Contains(s.stdout.String(), token) {
		return fmt.Errorf("expected %q in output:\n%s", token, s.stdout.String())
	}
	return nil
}

func (s *featureState) theSummaryReportsFailures(count int) error {
	token := "extraction failures: " + strconv.Itoa(count)
	if !strings.Contains(s.stdout.String(), token) {
		return fmt.Errorf("expected %q in output:\n%s", token, s.stdout.String())
	}
	return nil
}

func (s *featureState) theRunDirectoryContains(table *godog.Table) error {
	runDir, err := runner.FindRunDir(filepath.Join(s.workDir, "out"), "latest")
	if err != nil {
		return fmt.Errorf("find run dir: %w", err)
	}
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			name := strings.TrimSpace(cell.Value)
			if name == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
				return fmt.Errorf("expected artifact %s: %w", name, err)
			}
		}
	}
	return nil
}

func (s *featureState) theErrorMessageMentions(text string) error {
	if !strings.Contains(s.stderr.String(), text) {
		return fmt.Errorf("expected %q in stderr, got %q", text, s.stderr.String())
	}
	return nil
}

func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	output := s.stdout.String()
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			command := strings.TrimSpace(cell.Value)
			if command == "" {
				continue
			}
			if !strings.Contains(output, command) {
				return fmt.Errorf("expected command %q in output", command)
			}
		}
	}
	return nil
}

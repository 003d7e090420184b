package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"depeval/internal/aggregate"
	"depeval/internal/config"
	"depeval/internal/corpus"
	"depeval/internal/eval"
	"depeval/internal/query"
)

// Params configures a scoring run.
type Params struct {
	Config   config.Config
	BaseDir  string
	Observer RunObserver
	Deps     Deps
}

// Summary captures one finished run: what was asked, what was graded, and
// the aggregated report. It is persisted as summary.json in the run
// directory and is the input for every rendered artifact.
type Summary struct {
	RunID          string           `json:"run_id"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
	CorpusRoot     string           `json:"corpus_root"`
	Tasks          []corpus.Task    `json:"tasks"`
	Languages      []string         `json:"languages"`
	Modes          []query.Mode     `json:"modes"`
	Instances      int              `json:"instances"`
	Scored         int              `json:"scored"`
	Failures       int              `json:"failures"`
	Unanswered     int              `json:"unanswered"`
	SkippedRecords int              `json:"skipped_records"`
	MalformedLines int              `json:"malformed_lines"`
	Report         aggregate.Report `json:"report"`
}

// Run grades a response file against the corpus and writes the run
// artifacts. It streams per-instance results to results.jsonl as they
// complete and writes summary.json once every instance is graded.
func Run(ctx context.Context, params Params) (Summary, OutputPaths, error) {
	cfg := params.Config
	observer := params.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	deps := params.Deps.filled()

	runID, err := deps.NewRunID()
	if err != nil {
		return Summary{}, OutputPaths{}, err
	}
	startedAt := deps.Now().UTC()

	corpusRoot := config.ResolvePath(params.BaseDir, cfg.Corpus.Root)
	store, err := corpus.Load(corpusRoot)
	if err != nil {
		return Summary{}, OutputPaths{}, fmt.Errorf("load corpus: %w", err)
	}

	tasks, err := config.SelectedTasks(cfg.Tasks)
	if err != nil {
		return Summary{}, OutputPaths{}, err
	}
	modes, err := config.SelectedModes(cfg.Modes)
	if err != nil {
		return Summary{}, OutputPaths{}, err
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = store.Languages()
	}

	var filter *query.LiteFilter
	if cfg.Lite != "" {
		filter, err = query.LoadLiteFilter(config.ResolvePath(params.BaseDir, cfg.Lite))
		if err != nil {
			return Summary{}, OutputPaths{}, fmt.Errorf("load lite filter: %w", err)
		}
	}

	instances, err := query.Build(store, query.Params{
		Tasks:     tasks,
		Languages: languages,
		Modes:     modes,
		Filter:    filter,
	})
	if err != nil {
		return Summary{}, OutputPaths{}, err
	}

	if cfg.Responses == "" {
		return Summary{}, OutputPaths{}, errors.New("responses file is required to score a run")
	}
	records, malformed, err := ReadRecords(config.ResolvePath(params.BaseDir, cfg.Responses))
	if err != nil {
		return Summary{}, OutputPaths{}, err
	}
	matched, skipped := matchRecords(instances, records)

	jobs := make([]job, 0, len(instances))
	unanswered := 0
	for i, instance := range instances {
		record, ok := matched[i]
		if !ok {
			unanswered++
			if !cfg.StrictCoverage {
				continue
			}
			jobs = append(jobs, job{instance: instance})
			continue
		}
		jobs = append(jobs, job{instance: instance, attempts: record.attempts(), usage: record.usage()})
	}

	paths, err := NewOutputPaths(config.ResolvePath(params.BaseDir, cfg.OutputDir), runID)
	if err != nil {
		return Summary{}, OutputPaths{}, err
	}
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return Summary{}, paths, fmt.Errorf("create run directory: %w", err)
	}
	resultsFile, err := os.Create(paths.ResultsPath())
	if err != nil {
		return Summary{}, paths, fmt.Errorf("create results file: %w", err)
	}
	encoder := json.NewEncoder(resultsFile)

	observer.OnRunStart(runID, len(jobs))

	// The sink runs on a single goroutine, so these counters and the
	// encoder need no locking.
	collect := cfg.Database != ""
	var collected []eval.Result
	failures := 0
	sink := func(result eval.Result) error {
		if result.ExtractionFailed {
			failures++
		}
		if collect {
			collected = append(collected, result)
		}
		observer.OnResult(result)
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}

	aggregator, err := scoreAll(ctx, store, jobs, cfg.Workers, sink)
	if err != nil {
		resultsFile.Close()
		return Summary{}, paths, err
	}
	if err := resultsFile.Close(); err != nil {
		return Summary{}, paths, fmt.Errorf("close results file: %w", err)
	}

	report := aggregator.Report(aggregate.Keys(tasks, languages, modes)...)

	summary := Summary{
		RunID:          runID,
		StartedAt:      startedAt,
		FinishedAt:     deps.Now().UTC(),
		CorpusRoot:     corpusRoot,
		Tasks:          tasks,
		Languages:      languages,
		Modes:          modes,
		Instances:      len(instances),
		Scored:         len(jobs),
		Failures:       failures,
		Unanswered:     unanswered,
		SkippedRecords: skipped,
		MalformedLines: malformed,
		Report:         report,
	}

	if err := writeSummaryJSON(paths.SummaryJSONPath(), summary); err != nil {
		return summary, paths, err
	}

	if cfg.Database != "" {
		dbPath := config.ResolvePath(params.BaseDir, cfg.Database)
		if err := persistRun(ctx, dbPath, cfg, summary, collected); err != nil {
			return summary, paths, fmt.Errorf("persist run: %w", err)
		}
	}

	observer.OnRunEnd(summary)
	return summary, paths, nil
}

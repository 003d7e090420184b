package runner

import (
	"context"

	"depeval/internal/config"
	"depeval/internal/eval"
	"depeval/internal/store"
)

// persistRun records the finished run in a DuckDB database for cross-run
// queries.
func persistRun(ctx context.Context, path string, cfg config.Config, summary Summary, results []eval.Result) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	record := store.RunRecord{
		RunID:      summary.RunID,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		CorpusRoot: summary.CorpusRoot,
		Params: map[string]interface{}{
			"corpus_root":     summary.CorpusRoot,
			"responses":       cfg.Responses,
			"lite":            cfg.Lite,
			"tasks":           cfg.Tasks,
			"languages":       cfg.Languages,
			"modes":           cfg.Modes,
			"strict_coverage": cfg.StrictCoverage,
		},
		Instances: summary.Instances,
		Scored:    summary.Scored,
		Failures:  summary.Failures,
	}
	return store.PersistRun(ctx, db, record, results, summary.Report)
}

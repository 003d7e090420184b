package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"depeval/internal/aggregate"
	"depeval/internal/eval"
)

// RunRecord describes one finished run for persistence. Params is
// fingerprinted so equivalent configurations share a run key across runs.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	CorpusRoot string
	Params     interface{}
	Instances  int
	Scored     int
	Failures   int
}

// PersistRun stores a run, its per-instance results, and its report rows in
// one transaction. Re-persisting the same run id is a no-op for rows that
// already exist.
func PersistRun(ctx context.Context, db *sql.DB, record RunRecord, results []eval.Result, report aggregate.Report) error {
	if db == nil {
		return errors.New("store: db is nil")
	}
	if record.RunID == "" {
		return errors.New("store: run id is required")
	}
	canonical, err := CanonicalJSON(record.Params)
	if err != nil {
		return fmt.Errorf("canonicalize run params: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (
		  run_id, run_key, params, corpus_root, started_at, finished_at,
		  instances, scored, failures, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, now())
		ON CONFLICT (run_id) DO NOTHING`,
		record.RunID,
		fingerprintBytes(canonical),
		string(canonical),
		record.CorpusRoot,
		record.StartedAt,
		record.FinishedAt,
		record.Instances,
		record.Scored,
		record.Failures,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := insertResults(ctx, tx, record.RunID, results); err != nil {
		return err
	}
	if err := insertGroupMetrics(ctx, tx, record.RunID, report); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func insertResults(ctx context.Context, tx *sql.Tx, runID string, results []eval.Result) error {
	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO results (
		  result_id, run_id, instance_id, task, language, mode, program_id,
		  extraction_failed, failure_reason, attempts,
		  true_positives, false_positives, false_negatives, unresolved,
		  "precision", recall, f1,
		  gold_related, predicted_related, correct, chain_checked, chain_exact,
		  input_tokens, output_tokens, elapsed_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, instance_id) DO NOTHING`,
	)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		if _, err := stmt.ExecContext(ctx, resultArgs(runID, result)...); err != nil {
			return fmt.Errorf("insert result %s: %w", result.InstanceID, err)
		}
	}
	return nil
}

func resultArgs(runID string, result eval.Result) []interface{} {
	var truePositives, falsePositives, falseNegatives, unresolved interface{}
	var precision, recall, f1 interface{}
	if source := result.Source; source != nil {
		truePositives = source.TruePositives
		falsePositives = source.FalsePositives
		falseNegatives = source.FalseNegatives
		unresolved = source.Unresolved
		precision = source.Precision
		recall = source.Recall
		f1 = source.F1
	}
	var goldRelated, predictedRelated, correct, chainChecked, chainExact interface{}
	if trace := result.Trace; trace != nil {
		goldRelated = trace.GoldRelated
		predictedRelated = trace.PredictedRelated
		correct = trace.Correct
		chainChecked = trace.ChainChecked
		chainExact = trace.ChainExact
	}
	var inputTokens, outputTokens, elapsedSeconds interface{}
	if usage := result.Usage; usage != nil {
		inputTokens = usage.InputTokens
		outputTokens = usage.OutputTokens
		elapsedSeconds = usage.ElapsedSeconds
	}
	return []interface{}{
		uuid.NewString(),
		runID,
		result.InstanceID,
		string(result.Task),
		result.Language,
		string(result.Mode),
		result.ProgramID,
		result.ExtractionFailed,
		blankNull(result.FailureReason),
		result.Attempts,
		truePositives,
		falsePositives,
		falseNegatives,
		unresolved,
		precision,
		recall,
		f1,
		goldRelated,
		predictedRelated,
		correct,
		chainChecked,
		chainExact,
		inputTokens,
		outputTokens,
		elapsedSeconds,
	}
}

func insertGroupMetrics(ctx context.Context, tx *sql.Tx, runID string, report aggregate.Report) error {
	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO group_metrics (
		  run_id, task, language, mode, instances, failures, failure_rate,
		  "precision", recall, f1,
		  accuracy, correct, chain_checked, chain_exact, chain_exact_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, task, language, mode) DO NOTHING`,
	)
	if err != nil {
		return fmt.Errorf("prepare group insert: %w", err)
	}
	defer stmt.Close()

	rows := make([]aggregate.Row, 0, len(report.Groups)+len(report.Overall))
	rows = append(rows, report.Groups...)
	rows = append(rows, report.Overall...)
	for _, row := range rows {
		var precision, recall, f1 interface{}
		if source := row.Source; source != nil {
			precision = nullableFloat(source.Precision)
			recall = nullableFloat(source.Recall)
			f1 = nullableFloat(source.F1)
		}
		var accuracy, correct, chainChecked, chainExact, chainExactRate interface{}
		if trace := row.Trace; trace != nil {
			accuracy = nullableFloat(trace.Accuracy)
			correct = trace.Correct
			chainChecked = trace.ChainChecked
			chainExact = trace.ChainExact
			chainExactRate = nullableFloat(trace.ChainExactRate)
		}
		if _, err := stmt.ExecContext(
			ctx,
			runID,
			string(row.Task),
			row.Language,
			string(row.Mode),
			row.Instances,
			row.Failures,
			nullableFloat(row.FailureRate),
			precision,
			recall,
			f1,
			accuracy,
			correct,
			chainChecked,
			chainExact,
			chainExactRate,
		); err != nil {
			return fmt.Errorf("insert group metrics: %w", err)
		}
	}
	return nil
}

func nullableFloat(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func blankNull(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

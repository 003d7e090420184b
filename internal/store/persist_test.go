package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"depeval/internal/aggregate"
	"depeval/internal/corpus"
	"depeval/internal/eval"
	"depeval/internal/query"
	"depeval/internal/store"
	"depeval/internal/testutil"
)

const persistTimeout = 10 * time.Second

func openTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := testutil.Context(t, persistTimeout)
	db, err := store.Open(filepath.Join(t.TempDir(), "scores.duckdb"))
	if err != nil {
		t.Fatalf("open score database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, ctx
}

func queryInt(t *testing.T, ctx context.Context, db *sql.DB, sqlText string, args ...interface{}) int {
	t.Helper()
	var value int
	if err := db.QueryRowContext(ctx, sqlText, args...).Scan(&value); err != nil {
		t.Fatalf("query %q: %v", sqlText, err)
	}
	return value
}

func sampleResults() []eval.Result {
	return []eval.Result{
		{
			InstanceID: "data_c_p001_s0001_calc_3_12_L8:x",
			Task:       corpus.TaskData,
			Language:   "c",
			Mode:       query.ModeSource,
			ProgramID:  "p001_s0001_calc_3_12",
			Attempts:   1,
			Source: &eval.SourceScore{
				TruePositives:  1,
				FalseNegatives: 1,
				Precision:      1,
				Recall:         0.5,
				F1:             2.0 / 3.0,
			},
			Usage: &eval.Usage{InputTokens: 120, OutputTokens: 30},
		},
		{
			InstanceID: "infoflow_c_p001_s0001_calc_3_12_L9_from_L2",
			Task:       corpus.TaskInfoflow,
			Language:   "c",
			Mode:       query.ModeTrace,
			ProgramID:  "p001_s0001_calc_3_12",
			Attempts:   1,
			Trace: &eval.TraceScore{
				GoldRelated:      true,
				PredictedRelated: true,
				Correct:          true,
				ChainChecked:     true,
				ChainExact:       true,
			},
		},
		{
			InstanceID:       "data_c_p001_s0001_calc_3_12_L9:z",
			Task:             corpus.TaskData,
			Language:         "c",
			Mode:             query.ModeSource,
			ProgramID:        "p001_s0001_calc_3_12",
			ExtractionFailed: true,
			FailureReason:    "no_recognizable_answer",
			Attempts:         2,
		},
	}
}

func sampleRunRecord(runID string) store.RunRecord {
	started := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return store.RunRecord{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: started.Add(42 * time.Second),
		CorpusRoot: "/corpora/main",
		Params: map[string]interface{}{
			"responses": "responses.jsonl",
			"tasks":     []interface{}{"data", "infoflow"},
		},
		Instances: 3,
		Scored:    3,
		Failures:  1,
	}
}

// TestCanonicalJSONStable verifies canonical JSON output ignores map key order.
func TestCanonicalJSONStable(t *testing.T) {
	paramsA := map[string]interface{}{
		"responses": "responses.jsonl",
		"tasks":     []interface{}{"data", "control"},
		"nested": map[string]interface{}{
			"workers": 4,
			"lite":    "lite.yml",
		},
	}
	paramsB := map[string]interface{}{
		"nested": map[string]interface{}{
			"lite":    "lite.yml",
			"workers": 4,
		},
		"tasks":     []interface{}{"data", "control"},
		"responses": "responses.jsonl",
	}
	left, err := store.CanonicalJSON(paramsA)
	if err != nil {
		t.Fatalf("canonical json a: %v", err)
	}
	right, err := store.CanonicalJSON(paramsB)
	if err != nil {
		t.Fatalf("canonical json b: %v", err)
	}
	if string(left) != string(right) {
		t.Fatalf("canonical json mismatch: %s vs %s", left, right)
	}
}

// TestFingerprintJSONDistinguishesParams verifies distinct params get distinct keys.
func TestFingerprintJSONDistinguishesParams(t *testing.T) {
	base, err := store.FingerprintJSON(map[string]interface{}{"tasks": []interface{}{"data"}})
	if err != nil {
		t.Fatalf("fingerprint base: %v", err)
	}
	if len(base) != 64 {
		t.Fatalf("unexpected fingerprint length: %d", len(base))
	}
	other, err := store.FingerprintJSON(map[string]interface{}{"tasks": []interface{}{"control"}})
	if err != nil {
		t.Fatalf("fingerprint other: %v", err)
	}
	if base == other {
		t.Fatalf("fingerprints should differ: %s", base)
	}
}

// TestSchemaObjectsExist verifies core tables and the score view are created.
func TestSchemaObjectsExist(t *testing.T) {
	db, ctx := openTestDB(t)
	for _, table := range []string{"runs", "results", "group_metrics"} {
		count := queryInt(t, ctx, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table)
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
	viewCount := queryInt(t, ctx, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'v_group_scores' AND table_type = 'VIEW'")
	if viewCount != 1 {
		t.Fatalf("expected view v_group_scores to exist")
	}
}

// TestPersistRunRoundTrip verifies a run, its results, and its report rows land.
func TestPersistRunRoundTrip(t *testing.T) {
	db, ctx := openTestDB(t)

	results := sampleResults()
	aggregator := aggregate.New()
	for _, result := range results {
		aggregator.Add(result)
	}
	report := aggregator.Report()

	if err := store.PersistRun(ctx, db, sampleRunRecord("20250314T093000Z-ab12cd34ef56"), results, report); err != nil {
		t.Fatalf("persist run: %v", err)
	}

	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM runs"); got != 1 {
		t.Fatalf("unexpected run count: %d", got)
	}
	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM results"); got != len(results) {
		t.Fatalf("unexpected result count: %d", got)
	}
	wantGroups := len(report.Groups) + len(report.Overall)
	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM group_metrics"); got != wantGroups {
		t.Fatalf("unexpected group count: %d", got)
	}
	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM results WHERE extraction_failed"); got != 1 {
		t.Fatalf("unexpected failed result count: %d", got)
	}
	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM v_group_scores"); got != wantGroups {
		t.Fatalf("unexpected view row count: %d", got)
	}
}

// TestPersistRunIdempotent verifies re-persisting a run id inserts nothing new.
func TestPersistRunIdempotent(t *testing.T) {
	db, ctx := openTestDB(t)

	results := sampleResults()
	aggregator := aggregate.New()
	for _, result := range results {
		aggregator.Add(result)
	}
	report := aggregator.Report()
	record := sampleRunRecord("20250314T093000Z-ab12cd34ef56")

	for i := 0; i < 2; i++ {
		if err := store.PersistRun(ctx, db, record, results, report); err != nil {
			t.Fatalf("persist run attempt %d: %v", i+1, err)
		}
	}

	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM runs"); got != 1 {
		t.Fatalf("unexpected run count: %d", got)
	}
	if got := queryInt(t, ctx, db, "SELECT COUNT(*) FROM results"); got != len(results) {
		t.Fatalf("unexpected result count: %d", got)
	}
}

// TestPersistRunRequiresRunID verifies the run id guard.
func TestPersistRunRequiresRunID(t *testing.T) {
	db, ctx := openTestDB(t)
	err := store.PersistRun(ctx, db, store.RunRecord{}, nil, aggregate.Report{})
	if err == nil {
		t.Fatalf("expected error for missing run id")
	}
}

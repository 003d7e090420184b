package eval

import (
	"depeval/internal/corpus"
	"depeval/internal/query"
)

// Result is one graded instance, persisted as a line of the results stream.
// Source and Trace are set according to the instance mode; both stay nil
// when extraction failed.
type Result struct {
	InstanceID       string       `json:"instance_id"`
	Task             corpus.Task  `json:"task"`
	Language         string       `json:"language"`
	Mode             query.Mode   `json:"mode"`
	ProgramID        string       `json:"program_id"`
	ExtractionFailed bool         `json:"extraction_failed"`
	FailureReason    string       `json:"failure_reason,omitempty"`
	Attempts         int          `json:"attempts,omitempty"`
	Source           *SourceScore `json:"source,omitempty"`
	Trace            *TraceScore  `json:"trace,omitempty"`
	Usage            *Usage       `json:"usage,omitempty"`
}

// SourceScore grades a set-retrieval answer. Unresolved claims count as
// false positives.
type SourceScore struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Unresolved     int     `json:"unresolved,omitempty"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// TraceScore grades a reachability verdict. ChainExact is meaningful only
// when ChainChecked is set.
type TraceScore struct {
	GoldRelated      bool `json:"gold_related"`
	PredictedRelated bool `json:"predicted_related"`
	Correct          bool `json:"correct"`
	ChainChecked     bool `json:"chain_checked"`
	ChainExact       bool `json:"chain_exact"`
}

// Usage carries pass-through response metadata for cost reporting.
type Usage struct {
	InputTokens    int     `json:"input_tokens,omitempty"`
	OutputTokens   int     `json:"output_tokens,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
}

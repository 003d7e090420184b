package live

import (
	"depeval/internal/eval"
	"depeval/internal/runner"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventResult delivers one graded instance.
	EventResult
	// EventRunEnd signals run completion with the authoritative summary.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind    EventKind
	RunID   string
	Total   int
	Result  eval.Result
	Summary runner.Summary
}

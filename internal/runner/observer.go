package runner

import "depeval/internal/eval"

// RunObserver receives scoring lifecycle events for a UI or logger. All
// methods are invoked from a single goroutine in instance-completion order.
type RunObserver interface {
	// OnRunStart signals the start of a run with the number of instances
	// that will be graded.
	OnRunStart(runID string, total int)
	// OnResult delivers one graded instance.
	OnResult(result eval.Result)
	// OnRunEnd signals run completion.
	OnRunEnd(summary Summary)
}

type noopObserver struct{}

func (noopObserver) OnRunStart(string, int) {}
func (noopObserver) OnResult(eval.Result)   {}
func (noopObserver) OnRunEnd(Summary)       {}

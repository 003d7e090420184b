package live

import "depeval/internal/aggregate"

// Reduce folds one event into the state and returns the updated state.
// It is a pure state transition apart from the shared tally aggregator,
// which only the update loop mutates.
func Reduce(state State, event Event) State {
	switch event.Kind {
	case EventRunStart:
		state.RunID = event.RunID
		state.Total = event.Total
	case EventResult:
		if state.tallies == nil {
			state.tallies = aggregate.New()
		}
		state.Seen++
		if event.Result.ExtractionFailed {
			state.Failures++
		}
		state.Last = describeResult(event.Result)
		state.tallies.Add(event.Result)
	case EventRunEnd:
		state.Finished = true
		if event.Summary.RunID != "" {
			state.RunID = event.Summary.RunID
		}
		state.Seen = event.Summary.Scored
		state.Failures = event.Summary.Failures
		report := event.Summary.Report
		state.final = &report
	}
	return state
}

package live

import (
	"time"

	"depeval/internal/aggregate"
)

// State is everything the live view renders. It is only ever touched from
// the bubbletea update loop, so it needs no locking.
type State struct {
	RunID     string
	Total     int
	Seen      int
	Failures  int
	StartedAt time.Time
	Last      string
	Finished  bool

	tallies *aggregate.Aggregator
	final   *aggregate.Report
}

// NewState returns an empty state anchored at the given start time.
func NewState(startedAt time.Time) State {
	return State{StartedAt: startedAt, tallies: aggregate.New()}
}

// report returns the tallies to render. After the run ends the runner's
// authoritative report replaces the live tallies, so any updates dropped
// under backpressure cannot skew the final screen.
func (state State) report() aggregate.Report {
	if state.final != nil {
		return *state.final
	}
	if state.tallies == nil {
		return aggregate.Report{}
	}
	return state.tallies.Report()
}

package aggregate

import (
	"depeval/internal/corpus"
	"depeval/internal/eval"
	"depeval/internal/query"
)

// Key identifies one reporting group.
type Key struct {
	Task     corpus.Task `json:"task"`
	Language string      `json:"language"`
	Mode     query.Mode  `json:"mode"`
}

// Keys returns the cross product of tasks, languages, and modes in report
// order. Passing the run parameters here makes requested-but-unanswered
// groups visible in the report.
func Keys(tasks []corpus.Task, languages []string, modes []query.Mode) []Key {
	keys := make([]Key, 0, len(tasks)*len(languages)*len(modes))
	for _, task := range tasks {
		for _, language := range languages {
			for _, mode := range modes {
				keys = append(keys, Key{Task: task, Language: language, Mode: mode})
			}
		}
	}
	return keys
}

// Tally accumulates counts and metric sums for one group. Holding sums
// instead of raw results keeps partial aggregation memory bounded.
type Tally struct {
	Instances    int
	Failures     int
	SumPrecision float64
	SumRecall    float64
	SumF1        float64
	Correct      int
	ChainChecked int
	ChainExact   int
}

// add folds one result in. Extraction failures count into the instance
// total with zero score, so they drag the macro averages down while the
// failure rate explains why.
func (tally *Tally) add(result eval.Result) {
	tally.Instances++
	if result.ExtractionFailed {
		tally.Failures++
		return
	}
	if result.Source != nil {
		tally.SumPrecision += result.Source.Precision
		tally.SumRecall += result.Source.Recall
		tally.SumF1 += result.Source.F1
	}
	if result.Trace != nil {
		if result.Trace.Correct {
			tally.Correct++
		}
		if result.Trace.ChainChecked {
			tally.ChainChecked++
		}
		if result.Trace.ChainExact {
			tally.ChainExact++
		}
	}
}

func (tally *Tally) merge(other Tally) {
	tally.Instances += other.Instances
	tally.Failures += other.Failures
	tally.SumPrecision += other.SumPrecision
	tally.SumRecall += other.SumRecall
	tally.SumF1 += other.SumF1
	tally.Correct += other.Correct
	tally.ChainChecked += other.ChainChecked
	tally.ChainExact += other.ChainExact
}

// Aggregator reduces a stream of results into per-group tallies. It is not
// safe for concurrent use; parallel workers each own one and merge them
// after the pool drains.
type Aggregator struct {
	groups map[Key]*Tally
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{groups: map[Key]*Tally{}}
}

// Add folds one result into its group tally.
func (aggregator *Aggregator) Add(result eval.Result) {
	key := Key{Task: result.Task, Language: result.Language, Mode: result.Mode}
	tally := aggregator.groups[key]
	if tally == nil {
		tally = &Tally{}
		aggregator.groups[key] = tally
	}
	tally.add(result)
}

// Merge folds another aggregator's tallies into this one. Merging is
// associative and commutative, so the final report is independent of how
// results were partitioned across workers.
func (aggregator *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	for key, tally := range other.groups {
		target := aggregator.groups[key]
		if target == nil {
			target = &Tally{}
			aggregator.groups[key] = target
		}
		target.merge(*tally)
	}
}

package aggregate

import (
	"sort"
	"strings"

	"depeval/internal/corpus"
	"depeval/internal/query"
)

// Report is the grouped summary of one grading run.
type Report struct {
	Groups  []Row `json:"groups"`
	Overall []Row `json:"overall"`
}

// Row carries the derived metrics of one group. Overall rows leave Task and
// Language empty. Metric pointers are nil when the group holds no data for
// them; a group with no instances reports null metrics, never zeros.
type Row struct {
	Task        corpus.Task    `json:"task,omitempty"`
	Language    string         `json:"language,omitempty"`
	Mode        query.Mode     `json:"mode"`
	Instances   int            `json:"instances"`
	Failures    int            `json:"failures"`
	FailureRate *float64       `json:"failure_rate"`
	Source      *SourceMetrics `json:"source,omitempty"`
	Trace       *TraceMetrics  `json:"trace,omitempty"`
}

// SourceMetrics are the macro-averaged set-retrieval scores of one group.
type SourceMetrics struct {
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	F1        *float64 `json:"f1"`
}

// TraceMetrics are the classification scores of one group. ChainExactRate
// is conditioned on the chain-checked count and stays null when no correct
// positive verdict had a recorded chain.
type TraceMetrics struct {
	Accuracy       *float64 `json:"accuracy"`
	Correct        int      `json:"correct"`
	ChainChecked   int      `json:"chain_checked"`
	ChainExact     int      `json:"chain_exact"`
	ChainExactRate *float64 `json:"chain_exact_rate"`
}

// Report derives the grouped summary. Requested keys with no results are
// included as empty rows so missing coverage shows up as "no data" instead
// of disappearing. Overall rows roll the groups up per mode.
func (aggregator *Aggregator) Report(requested ...Key) Report {
	keySet := make(map[Key]struct{}, len(aggregator.groups)+len(requested))
	for key := range aggregator.groups {
		keySet[key] = struct{}{}
	}
	for _, key := range requested {
		keySet[key] = struct{}{}
	}
	ordered := make([]Key, 0, len(keySet))
	for key := range keySet {
		ordered = append(ordered, key)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return compareKeys(ordered[i], ordered[j]) < 0
	})

	report := Report{Groups: make([]Row, 0, len(ordered)), Overall: []Row{}}
	rollup := map[query.Mode]*Tally{}
	for _, key := range ordered {
		var tally Tally
		if group := aggregator.groups[key]; group != nil {
			tally = *group
		}
		report.Groups = append(report.Groups, buildRow(key, tally))
		total := rollup[key.Mode]
		if total == nil {
			total = &Tally{}
			rollup[key.Mode] = total
		}
		total.merge(tally)
	}

	modes := make([]query.Mode, 0, len(rollup))
	for mode := range rollup {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	for _, mode := range modes {
		report.Overall = append(report.Overall, buildRow(Key{Mode: mode}, *rollup[mode]))
	}
	return report
}

func buildRow(key Key, tally Tally) Row {
	row := Row{
		Task:        key.Task,
		Language:    key.Language,
		Mode:        key.Mode,
		Instances:   tally.Instances,
		Failures:    tally.Failures,
		FailureRate: ratio(tally.Failures, tally.Instances),
	}
	switch key.Mode {
	case query.ModeTrace:
		row.Trace = &TraceMetrics{
			Accuracy:       ratio(tally.Correct, tally.Instances),
			Correct:        tally.Correct,
			ChainChecked:   tally.ChainChecked,
			ChainExact:     tally.ChainExact,
			ChainExactRate: ratio(tally.ChainExact, tally.ChainChecked),
		}
	default:
		row.Source = &SourceMetrics{
			Precision: mean(tally.SumPrecision, tally.Instances),
			Recall:    mean(tally.SumRecall, tally.Instances),
			F1:        mean(tally.SumF1, tally.Instances),
		}
	}
	return row
}

func compareKeys(a, b Key) int {
	if rankA, rankB := taskRank(a.Task), taskRank(b.Task); rankA != rankB {
		if rankA < rankB {
			return -1
		}
		return 1
	}
	if a.Language != b.Language {
		return strings.Compare(a.Language, b.Language)
	}
	return strings.Compare(string(a.Mode), string(b.Mode))
}

func taskRank(task corpus.Task) int {
	for i, known := range corpus.Tasks() {
		if task == known {
			return i
		}
	}
	return len(corpus.Tasks())
}

func ratio(count, total int) *float64 {
	if total == 0 {
		return nil
	}
	value := float64(count) / float64(total)
	return &value
}

func mean(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	value := sum / float64(count)
	return &value
}

package query

import (
	"fmt"
	"strings"

	"depeval/internal/corpus"
)

// Mode selects the question shape asked about a dependency.
type Mode string

const (
	// ModeSource asks for every source point feeding a target.
	ModeSource Mode = "source"
	// ModeTrace asks whether one candidate source reaches a target.
	ModeTrace Mode = "trace"
)

// Modes returns the supported modes in canonical order.
func Modes() []Mode {
	return []Mode{ModeSource, ModeTrace}
}

// ParseMode maps a string onto a supported mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeSource:
		return ModeSource, nil
	case ModeTrace:
		return ModeTrace, nil
	}
	return "", fmt.Errorf("unknown mode %q", value)
}

// Instance is one gradable benchmark question together with its ground
// truth. Trace instances carry the candidate source being asked about.
type Instance struct {
	ID              string
	Task            corpus.Task
	Mode            Mode
	Language        string
	ProgramID       string
	Target          corpus.Point
	CandidateSource *corpus.Point
	GoldSources     []corpus.Point
	GoldRelated     bool
	GoldChain       []corpus.Point
}

// Params selects which instances Build enumerates. Empty slices select
// every task, language, or mode.
type Params struct {
	Tasks     []corpus.Task
	Languages []string
	Modes     []Mode
	Filter    *LiteFilter
}

// Build enumerates instances in deterministic order: language, program,
// task, target, mode, candidate source. Rebuilding with equal inputs yields
// an identical sequence.
func Build(store *corpus.Store, params Params) ([]Instance, error) {
	languages, err := selectLanguages(store, params.Languages)
	if err != nil {
		return nil, err
	}
	tasks := params.Tasks
	if len(tasks) == 0 {
		tasks = corpus.Tasks()
	}
	wantSource := modeEnabled(params.Modes, ModeSource)
	wantTrace := modeEnabled(params.Modes, ModeTrace)

	instances := []Instance{}
	for _, language := range languages {
		for _, programID := range store.ProgramIDs(language) {
			record, ok := store.Scan(language, programID)
			if !ok {
				return nil, fmt.Errorf("program %s/%s has no scan record", language, programID)
			}
			for _, task := range tasks {
				for _, target := range EligibleTargets(record, task) {
					if wantSource {
						instance := Instance{
							ID:          instanceID(task, language, programID, target, nil),
							Task:        task,
							Mode:        ModeSource,
							Language:    language,
							ProgramID:   programID,
							Target:      target,
							GoldSources: store.SourcesInto(language, programID, task, target),
						}
						if params.Filter.Allows(instance) {
							instances = append(instances, instance)
						}
					}
					if !wantTrace {
						continue
					}
					for _, source := range CandidateSources(record, task, target) {
						source := source
						instance := Instance{
							ID:              instanceID(task, language, programID, target, &source),
							Task:            task,
							Mode:            ModeTrace,
							Language:        language,
							ProgramID:       programID,
							Target:          target,
							CandidateSource: &source,
						}
						if edge, related := store.EdgeBetween(language, programID, task, source, target); related {
							instance.GoldRelated = true
							instance.GoldChain = edge.Chain
						}
						if params.Filter.Allows(instance) {
							instances = append(instances, instance)
						}
					}
				}
			}
		}
	}
	return instances, nil
}

func selectLanguages(store *corpus.Store, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return store.Languages(), nil
	}
	known := map[string]struct{}{}
	for _, language := range store.Languages() {
		known[language] = struct{}{}
	}
	selected := make([]string, 0, len(requested))
	seen := map[string]struct{}{}
	for _, language := range requested {
		if _, ok := known[language]; !ok {
			return nil, fmt.Errorf("language %q is not in the corpus (have %s)", language, strings.Join(store.Languages(), ", "))
		}
		if _, dup := seen[language]; dup {
			continue
		}
		seen[language] = struct{}{}
		selected = append(selected, language)
	}
	return selected, nil
}

func modeEnabled(modes []Mode, mode Mode) bool {
	if len(modes) == 0 {
		return true
	}
	for _, candidate := range modes {
		if candidate == mode {
			return true
		}
	}
	return false
}

func instanceID(task corpus.Task, language, programID string, target corpus.Point, source *corpus.Point) string {
	id := fmt.Sprintf("%s_%s_%s_%s", task, language, programID, target.Label())
	if source != nil {
		id += "_from_" + source.Label()
	}
	return id
}

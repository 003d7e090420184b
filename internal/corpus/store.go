package corpus

import "sort"

// Store is the immutable in-memory view of a loaded corpus. Program ids are
// unique per language, so every accessor takes both. Accessors return shared
// slices that callers must not modify.
type Store struct {
	languages []string
	programs  map[string]Program
	order     map[string][]string
	edges     map[string]map[Task][]Edge
	scans     map[string]ScanRecord
}

func newStore() *Store {
	return &Store{
		programs: map[string]Program{},
		order:    map[string][]string{},
		edges:    map[string]map[Task][]Edge{},
		scans:    map[string]ScanRecord{},
	}
}

func qualify(language, id string) string {
	return language + "/" + id
}

func (store *Store) add(program Program, edges map[Task][]Edge, record ScanRecord) {
	if _, exists := store.order[program.Language]; !exists {
		store.languages = append(store.languages, program.Language)
	}
	key := qualify(program.Language, program.ID)
	store.order[program.Language] = append(store.order[program.Language], program.ID)
	sort.Strings(store.order[program.Language])
	store.programs[key] = program
	store.edges[key] = edges
	store.scans[key] = record
}

// Languages returns the loaded languages in sorted order.
func (store *Store) Languages() []string {
	return store.languages
}

// ProgramIDs returns the program ids of one language in sorted order.
func (store *Store) ProgramIDs(language string) []string {
	return store.order[language]
}

// Program returns the program with the given id in one language.
func (store *Store) Program(language, id string) (Program, bool) {
	program, ok := store.programs[qualify(language, id)]
	return program, ok
}

// Scan returns the static-analysis record for the given program.
func (store *Store) Scan(language, id string) (ScanRecord, bool) {
	record, ok := store.scans[qualify(language, id)]
	return record, ok
}

// Edges returns the annotated edges of one program for one task.
func (store *Store) Edges(language, id string, task Task) []Edge {
	byTask, ok := store.edges[qualify(language, id)]
	if !ok {
		return nil
	}
	return byTask[task]
}

// SourcesInto returns the annotated source points feeding the target for
// one task, sorted and duplicate free. Trivial self edges are skipped.
func (store *Store) SourcesInto(language, id string, task Task, target Point) []Point {
	sources := []Point{}
	for _, edge := range store.Edges(language, id, task) {
		if edge.Trivial {
			continue
		}
		if edge.Target.SameLocation(target) {
			sources = append(sources, edge.Source)
		}
	}
	return DedupePoints(sources)
}

// EdgeBetween returns the edge from source to target for one task. Trivial
// self edges are skipped.
func (store *Store) EdgeBetween(language, id string, task Task, source, target Point) (Edge, bool) {
	for _, edge := range store.Edges(language, id, task) {
		if edge.Trivial {
			continue
		}
		if edge.Source.SameLocation(source) && edge.Target.SameLocation(target) {
			return edge, true
		}
	}
	return Edge{}, false
}

// LanguageStat summarizes one language for corpus inspection.
type LanguageStat struct {
	Language string
	Programs int
	Data     int
	Control  int
	Infoflow int
}

// LanguageStats returns per language program and edge counts.
func (store *Store) LanguageStats() []LanguageStat {
	stats := make([]LanguageStat, 0, len(store.languages))
	for _, language := range store.languages {
		stat := LanguageStat{Language: language, Programs: len(store.order[language])}
		for _, id := range store.order[language] {
			key := qualify(language, id)
			stat.Data += len(store.edges[key][TaskData])
			stat.Control += len(store.edges[key][TaskControl])
			stat.Infoflow += len(store.edges[key][TaskInfoflow])
		}
		stats = append(stats, stat)
	}
	return stats
}

package query

import (
	"sort"

	"depeval/internal/corpus"
)

// EligibleTargets returns the target points asked about for one task,
// sorted by line and symbol. Data targets are uses of variables with at
// least two definitions, control targets are lines strictly after a branch,
// and infoflow targets are the union of both as bare lines.
func EligibleTargets(record corpus.ScanRecord, task corpus.Task) []corpus.Point {
	switch task {
	case corpus.TaskData:
		return dataTargets(record)
	case corpus.TaskControl:
		return controlTargets(record)
	case corpus.TaskInfoflow:
		return infoflowTargets(record)
	}
	return nil
}

// CandidateSources returns the candidate source points paired with one
// target in trace mode, sorted by line and symbol. Points on the target
// line are never candidates.
func CandidateSources(record corpus.ScanRecord, task corpus.Task, target corpus.Point) []corpus.Point {
	switch task {
	case corpus.TaskData:
		return dataSources(record, target)
	case corpus.TaskControl:
		return controlSources(record, target)
	case corpus.TaskInfoflow:
		return infoflowSources(record, target)
	}
	return nil
}

func dataTargets(record corpus.ScanRecord) []corpus.Point {
	targets := []corpus.Point{}
	symbols := record.Symbols()
	for _, symbol := range symbols {
		if len(record.Defs[symbol]) < 2 {
			continue
		}
		for _, line := range record.Uses[symbol] {
			targets = append(targets, corpus.Point{File: record.File, Line: line, Symbol: symbol})
		}
	}
	return corpus.DedupePoints(targets)
}

func dataSources(record corpus.ScanRecord, target corpus.Point) []corpus.Point {
	sources := []corpus.Point{}
	for _, line := range record.Defs[target.Symbol] {
		if line == target.Line {
			continue
		}
		sources = append(sources, corpus.Point{File: record.File, Line: line, Symbol: target.Symbol})
	}
	return corpus.DedupePoints(sources)
}

func controlTargets(record corpus.ScanRecord) []corpus.Point {
	targets := []corpus.Point{}
	for _, line := range record.Lines {
		if len(record.BranchesBefore(line)) == 0 {
			continue
		}
		targets = append(targets, corpus.Point{File: record.File, Line: line})
	}
	return targets
}

func controlSources(record corpus.ScanRecord, target corpus.Point) []corpus.Point {
	sources := []corpus.Point{}
	for _, line := range record.BranchesBefore(target.Line) {
		sources = append(sources, corpus.Point{File: record.File, Line: line})
	}
	return sources
}

func infoflowTargets(record corpus.ScanRecord) []corpus.Point {
	lines := map[int]struct{}{}
	for _, target := range dataTargets(record) {
		lines[target.Line] = struct{}{}
	}
	for _, target := range controlTargets(record) {
		lines[target.Line] = struct{}{}
	}
	targets := make([]corpus.Point, 0, len(lines))
	for line := range lines {
		targets = append(targets, corpus.Point{File: record.File, Line: line})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Line < targets[j].Line })
	return targets
}

// infoflowSources pairs every definition site and branch with the target.
// Later definitions stay eligible because flows can loop back.
func infoflowSources(record corpus.ScanRecord, target corpus.Point) []corpus.Point {
	sources := []corpus.Point{}
	for _, symbol := range record.Symbols() {
		for _, line := range record.Defs[symbol] {
			if line == target.Line {
				continue
			}
			sources = append(sources, corpus.Point{File: record.File, Line: line, Symbol: symbol})
		}
	}
	for _, line := range record.Branches {
		if line == target.Line {
			continue
		}
		sources = append(sources, corpus.Point{File: record.File, Line: line})
	}
	return corpus.DedupePoints(sources)
}

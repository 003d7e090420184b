package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// Task identifies a dependency relation measured by the benchmark.
type Task string

const (
	TaskData     Task = "data"
	TaskControl  Task = "control"
	TaskInfoflow Task = "infoflow"
)

// Tasks returns the supported tasks in canonical order.
func Tasks() []Task {
	return []Task{TaskData, TaskControl, TaskInfoflow}
}

// ParseTask maps a string onto a supported task.
func ParseTask(value string) (Task, error) {
	switch Task(strings.ToLower(strings.TrimSpace(value))) {
	case TaskData:
		return TaskData, nil
	case TaskControl:
		return TaskControl, nil
	case TaskInfoflow:
		return TaskInfoflow, nil
	}
	return "", fmt.Errorf("unknown task %q", value)
}

// Point is a program point inside a single source file. The symbol narrows
// the point to one variable when several are written on the same line.
type Point struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Symbol string `json:"symbol,omitempty"`
}

// Key returns the canonical identity of the point.
func (point Point) Key() string {
	return fmt.Sprintf("%s:%d:%s", point.File, point.Line, point.Symbol)
}

// Label returns the short form used in answers and reports.
func (point Point) Label() string {
	if point.Symbol == "" {
		return fmt.Sprintf("L%d", point.Line)
	}
	return fmt.Sprintf("L%d:%s", point.Line, point.Symbol)
}

// SameLocation reports whether two points name the same file and line with
// compatible symbols. An empty symbol on either side matches any symbol.
func (point Point) SameLocation(other Point) bool {
	if point.File != other.File || point.Line != other.Line {
		return false
	}
	if point.Symbol == "" || other.Symbol == "" {
		return true
	}
	return point.Symbol == other.Symbol
}

// ComparePoints orders points by file, then line, then symbol.
func ComparePoints(a, b Point) int {
	if a.File != b.File {
		return strings.Compare(a.File, b.File)
	}
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Symbol, b.Symbol)
}

// SortPoints orders a point slice in place by file, line, and symbol.
func SortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		return ComparePoints(points[i], points[j]) < 0
	})
}

// DedupePoints returns a sorted copy with exact duplicates removed.
func DedupePoints(points []Point) []Point {
	deduped := make([]Point, 0, len(points))
	seen := map[string]struct{}{}
	for _, point := range points {
		key := point.Key()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, point)
	}
	SortPoints(deduped)
	return deduped
}

// Edge is one annotated dependency from a source point to a target point.
// Chain, when present, lists the full path from source to target inclusive.
type Edge struct {
	Task    Task    `json:"task"`
	Source  Point   `json:"source"`
	Target  Point   `json:"target"`
	Chain   []Point `json:"chain,omitempty"`
	Trivial bool    `json:"trivial,omitempty"`
}

// Program is one annotated single-function program in the corpus.
type Program struct {
	ID       string
	Language string
	File     string
	Identity Identity
}

package config

import (
	"fmt"
	"strings"

	"depeval/internal/corpus"
	"depeval/internal/query"
)

// SelectedTasks resolves the task selector into canonical order. An empty
// selector means every task; unknown names are an error.
func SelectedTasks(values []string) ([]corpus.Task, error) {
	if len(values) == 0 {
		return corpus.Tasks(), nil
	}
	requested := map[corpus.Task]struct{}{}
	var unknown []string
	unknownSet := map[string]struct{}{}
	for _, value := range values {
		task, err := corpus.ParseTask(value)
		if err != nil {
			if _, seen := unknownSet[value]; !seen {
				unknown = append(unknown, value)
				unknownSet[value] = struct{}{}
			}
			continue
		}
		requested[task] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown tasks: %s", strings.Join(unknown, ", "))
	}
	ordered := make([]corpus.Task, 0, len(requested))
	for _, task := range corpus.Tasks() {
		if _, ok := requested[task]; ok {
			ordered = append(ordered, task)
		}
	}
	return ordered, nil
}

// SelectedModes resolves the mode selector into canonical order. An empty
// selector means both modes; unknown names are an error.
func SelectedModes(values []string) ([]query.Mode, error) {
	if len(values) == 0 {
		return query.Modes(), nil
	}
	requested := map[query.Mode]struct{}{}
	var unknown []string
	unknownSet := map[string]struct{}{}
	for _, value := range values {
		mode, err := query.ParseMode(value)
		if err != nil {
			if _, seen := unknownSet[value]; !seen {
				unknown = append(unknown, value)
				unknownSet[value] = struct{}{}
			}
			continue
		}
		requested[mode] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown modes: %s", strings.Join(unknown, ", "))
	}
	ordered := make([]query.Mode, 0, len(requested))
	for _, mode := range query.Modes() {
		if _, ok := requested[mode]; ok {
			ordered = append(ordered, mode)
		}
	}
	return ordered, nil
}

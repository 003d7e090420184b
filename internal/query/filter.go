package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LiteFilter restricts enumeration to a named subset of instances. The
// subset file is JSON mapping task to language to a list of entries, where
// an entry is either a full instance id or a bare program id selecting every
// instance of that program under the task and language. Entries that match
// nothing are silently ignored.
type LiteFilter struct {
	ids      map[string]struct{}
	programs map[string]struct{}
}

// LoadLiteFilter reads and parses a lite subset file.
func LoadLiteFilter(path string) (*LiteFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lite subset: %w", err)
	}
	return parseLiteFilter(data)
}

func parseLiteFilter(data []byte) (*LiteFilter, error) {
	var subset map[string]map[string][]string
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&subset); err != nil {
		return nil, fmt.Errorf("parse lite subset: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse lite subset: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse lite subset: %w", err)
	}
	filter := &LiteFilter{ids: map[string]struct{}{}, programs: map[string]struct{}{}}
	for task, byLanguage := range subset {
		for language, entries := range byLanguage {
			for _, entry := range entries {
				filter.ids[entry] = struct{}{}
				filter.programs[task+"/"+language+"/"+entry] = struct{}{}
			}
		}
	}
	return filter, nil
}

// Allows reports whether the instance passes the filter. A nil filter
// allows everything.
func (filter *LiteFilter) Allows(instance Instance) bool {
	if filter == nil {
		return true
	}
	if _, ok := filter.ids[instance.ID]; ok {
		return true
	}
	key := string(instance.Task) + "/" + instance.Language + "/" + instance.ProgramID
	_, ok := filter.programs[key]
	return ok
}

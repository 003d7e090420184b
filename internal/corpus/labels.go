package corpus

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type labelsFile struct {
	Version  int            `yaml:"version"`
	Language string         `yaml:"language"`
	Programs []labelProgram `yaml:"programs"`
}

type labelProgram struct {
	File  string     `yaml:"file"`
	Edges labelEdges `yaml:"edges"`
}

type labelEdges struct {
	Data     []labelEdge `yaml:"data"`
	Control  []labelEdge `yaml:"control"`
	Infoflow []labelEdge `yaml:"infoflow"`
}

type labelEdge struct {
	Source  labelPoint   `yaml:"source"`
	Target  labelPoint   `yaml:"target"`
	Chain   []labelPoint `yaml:"chain"`
	Trivial bool         `yaml:"trivial"`
}

type labelPoint struct {
	Line   int    `yaml:"line"`
	Symbol string `yaml:"symbol"`
}

// programLabels pairs one annotated program with its edges grouped by task.
type programLabels struct {
	Program Program
	Edges   map[Task][]Edge
}

func parseLabelsFile(data []byte) (labelsFile, error) {
	var file labelsFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return labelsFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return labelsFile{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return labelsFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	return file, nil
}

// normalizeLabels validates a parsed annotation file and converts it into
// programs with edges grouped by task. Edge duplicates within one program
// and task collapse onto the first occurrence.
func normalizeLabels(file labelsFile, path, language string) ([]programLabels, error) {
	collector := &issueCollector{}
	if file.Version == 0 {
		collector.add("version", "is required")
	} else if file.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", file.Version))
	}
	if file.Language != "" && file.Language != language {
		collector.add("language", fmt.Sprintf("%q does not match directory %q", file.Language, language))
	}
	if len(file.Programs) == 0 {
		collector.add("programs", "must include at least one entry")
	}

	labeled := make([]programLabels, 0, len(file.Programs))
	seen := map[string]struct{}{}
	for i, entry := range file.Programs {
		prefix := fmt.Sprintf("programs[%d]", i)
		entry.File = strings.TrimSpace(entry.File)
		if entry.File == "" {
			collector.add(prefix+".file", "is required")
			continue
		}
		identity, err := ParseProgramFilename(entry.File)
		if err != nil {
			collector.add(prefix+".file", err.Error())
			continue
		}
		id := identity.String()
		if _, exists := seen[id]; exists {
			collector.add(prefix+".file", fmt.Sprintf("duplicate program %q", id))
			continue
		}
		seen[id] = struct{}{}

		program := Program{ID: id, Language: language, File: entry.File, Identity: identity}
		edges := map[Task][]Edge{}
		for _, group := range []struct {
			task  Task
			edges []labelEdge
		}{
			{TaskData, entry.Edges.Data},
			{TaskControl, entry.Edges.Control},
			{TaskInfoflow, entry.Edges.Infoflow},
		} {
			edges[group.task] = normalizeEdges(collector, prefix, program, group.task, group.edges)
		}
		labeled = append(labeled, programLabels{Program: program, Edges: edges})
	}

	if err := collector.result(path); err != nil {
		return nil, err
	}
	return labeled, nil
}

func normalizeEdges(collector *issueCollector, prefix string, program Program, task Task, raw []labelEdge) []Edge {
	edges := make([]Edge, 0, len(raw))
	seen := map[string]struct{}{}
	for j, entry := range raw {
		edgePrefix := fmt.Sprintf("%s.edges.%s[%d]", prefix, task, j)
		edge := Edge{
			Task:    task,
			Source:  resolveLabelPoint(program.File, entry.Source),
			Target:  resolveLabelPoint(program.File, entry.Target),
			Trivial: entry.Trivial,
		}
		if edge.Source.Line < 1 {
			collector.add(edgePrefix+".source.line", "must be a positive line number")
			continue
		}
		if edge.Target.Line < 1 {
			collector.add(edgePrefix+".target.line", "must be a positive line number")
			continue
		}
		if edge.Source.Key() == edge.Target.Key() && !edge.Trivial {
			collector.add(edgePrefix, "self edge must set trivial")
			continue
		}
		if len(entry.Chain) > 0 {
			chain := make([]Point, 0, len(entry.Chain))
			for _, step := range entry.Chain {
				chain = append(chain, resolveLabelPoint(program.File, step))
			}
			if len(chain) < 2 {
				collector.add(edgePrefix+".chain", "must include at least source and target")
				continue
			}
			if chain[0].Key() != edge.Source.Key() {
				collector.add(edgePrefix+".chain", "must start at the edge source")
				continue
			}
			if chain[len(chain)-1].Key() != edge.Target.Key() {
				collector.add(edgePrefix+".chain", "must end at the edge target")
				continue
			}
			edge.Chain = chain
		}
		key := edge.Source.Key() + "->" + edge.Target.Key()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		edges = append(edges, edge)
	}
	return edges
}

func resolveLabelPoint(file string, point labelPoint) Point {
	return Point{File: file, Line: point.Line, Symbol: strings.TrimSpace(point.Symbol)}
}

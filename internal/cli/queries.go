package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"depeval/internal/config"
	"depeval/internal/corpus"
	"depeval/internal/query"
)

// queryLine is the JSONL view of one instance. Gold fields are omitted
// unless asked for, so the output can be handed to a model harness as-is.
type queryLine struct {
	ID              string         `json:"id"`
	Task            corpus.Task    `json:"task"`
	Mode            query.Mode     `json:"mode"`
	Language        string         `json:"language"`
	ProgramID       string         `json:"program_id"`
	Target          corpus.Point   `json:"target"`
	CandidateSource *corpus.Point  `json:"candidate_source,omitempty"`
	GoldSources     []corpus.Point `json:"gold_sources,omitempty"`
	GoldRelated     *bool          `json:"gold_related,omitempty"`
	GoldChain       []corpus.Point `json:"gold_chain,omitempty"`
}

// runQueries builds the handler for the queries command.
func runQueries(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for "+config.ConfigFileName+")")
		corpusRoot := flags.String("corpus", "", "Corpus root (overrides the config)")
		tasks := flags.String("tasks", "", "Comma-separated task filter")
		languages := flags.String("languages", "", "Comma-separated language filter")
		modes := flags.String("modes", "", "Comma-separated mode filter")
		lite := flags.String("lite", "", "Lite subset file")
		withGold := flags.Bool("gold", false, "Include ground truth fields")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		root := *corpusRoot
		litePath := *lite
		taskValues := splitList(*tasks)
		languageValues := splitList(*languages)
		modeValues := splitList(*modes)
		if root == "" {
			resolved, err := resolveConfigPath(*configPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to locate config: %v\n", err)
				return ExitError
			}
			cfg, err := config.Load(resolved)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
				return ExitError
			}
			baseDir := filepath.Dir(resolved)
			root = config.ResolvePath(baseDir, cfg.Corpus.Root)
			if litePath == "" {
				litePath = config.ResolvePath(baseDir, cfg.Lite)
			}
			if taskValues == nil {
				taskValues = cfg.Tasks
			}
			if languageValues == nil {
				languageValues = cfg.Languages
			}
			if modeValues == nil {
				modeValues = cfg.Modes
			}
		}

		selectedTasks, err := config.SelectedTasks(taskValues)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid tasks: %v\n", err)
			return ExitUsage
		}
		selectedModes, err := config.SelectedModes(modeValues)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid modes: %v\n", err)
			return ExitUsage
		}

		store, err := corpus.Load(root)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load corpus: %v\n", err)
			return ExitError
		}

		var filter *query.LiteFilter
		if litePath != "" {
			filter, err = query.LoadLiteFilter(litePath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load lite subset: %v\n", err)
				return ExitError
			}
		}

		instances, err := query.Build(store, query.Params{
			Tasks:     selectedTasks,
			Languages: languageValues,
			Modes:     selectedModes,
			Filter:    filter,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Failed to build queries: %v\n", err)
			return ExitError
		}

		encoder := json.NewEncoder(stdout)
		for _, instance := range instances {
			line := queryLine{
				ID:              instance.ID,
				Task:            instance.Task,
				Mode:            instance.Mode,
				Language:        instance.Language,
				ProgramID:       instance.ProgramID,
				Target:          instance.Target,
				CandidateSource: instance.CandidateSource,
			}
			if *withGold {
				line.GoldSources = instance.GoldSources
				if instance.Mode == query.ModeTrace {
					related := instance.GoldRelated
					line.GoldRelated = &related
				}
				line.GoldChain = instance.GoldChain
			}
			if err := encoder.Encode(line); err != nil {
				fmt.Fprintf(stderr, "Failed to write query: %v\n", err)
				return ExitError
			}
		}
		fmt.Fprintf(stderr, "%d instances\n", len(instances))
		return ExitOK
	}
}

// splitList parses a comma-separated flag value. Blank entries are dropped
// and an all-blank value means "not set".
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

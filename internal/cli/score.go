package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"depeval/internal/config"
	"depeval/internal/report"
	"depeval/internal/runner"
	"depeval/internal/ui/live"
)

// runScore builds the handler for the score command.
func runScore(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for "+config.ConfigFileName+")")
		responses := flags.String("responses", "", "Responses file (overrides the config)")
		outputDir := flags.String("output", "", "Output directory (overrides the config)")
		database := flags.String("db", "", "DuckDB database path (overrides the config)")
		lite := flags.String("lite", "", "Lite subset file (overrides the config)")
		tasks := flags.String("tasks", "", "Comma-separated task filter")
		languages := flags.String("languages", "", "Comma-separated language filter")
		modes := flags.String("modes", "", "Comma-separated mode filter")
		workers := flags.Int("workers", 0, "Worker count (overrides the config)")
		strictCoverage := flags.Bool("strict-coverage", false, "Score unanswered instances as extraction failures")
		liveUI := flags.Bool("live", false, "Force the live progress UI")
		plainUI := flags.Bool("plain", false, "Disable the live progress UI")
		noColor := flags.Bool("no-color", false, "Disable styled output")
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
		if *liveUI && *plainUI {
			fmt.Fprintln(stderr, "--live and --plain are mutually exclusive")
			return ExitUsage
		}

		explicit := map[string]bool{}
		flags.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

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

		if err := overridePath(&cfg.Responses, *responses); err != nil {
			fmt.Fprintf(stderr, "Failed to resolve responses path: %v\n", err)
			return ExitError
		}
		if err := overridePath(&cfg.OutputDir, *outputDir); err != nil {
			fmt.Fprintf(stderr, "Failed to resolve output path: %v\n", err)
			return ExitError
		}
		if err := overridePath(&cfg.Database, *database); err != nil {
			fmt.Fprintf(stderr, "Failed to resolve database path: %v\n", err)
			return ExitError
		}
		if err := overridePath(&cfg.Lite, *lite); err != nil {
			fmt.Fprintf(stderr, "Failed to resolve lite path: %v\n", err)
			return ExitError
		}
		if values := splitList(*tasks); values != nil {
			cfg.Tasks = values
		}
		if values := splitList(*languages); values != nil {
			cfg.Languages = values
		}
		if values := splitList(*modes); values != nil {
			cfg.Modes = values
		}
		if *workers > 0 {
			cfg.Workers = *workers
		}
		if explicit["strict-coverage"] {
			cfg.StrictCoverage = *strictCoverage
		}

		mode := "auto"
		if *liveUI {
			mode = "live"
		}
		if *plainUI {
			mode = "plain"
		}
		decision, err := resolveUIMode(mode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		params := runner.Params{Config: cfg, BaseDir: baseDir}
		var controller *live.Controller
		if decision.useLive {
			controller = live.Start(stdout, live.Options{NoColor: *noColor})
			params.Observer = controller
		}

		summary, paths, err := runner.Run(context.Background(), params)
		if controller != nil {
			controller.Close()
			controller.Wait()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Scoring failed: %v\n", err)
			return ExitError
		}

		if err := report.WriteArtifacts(paths, summary); err != nil {
			fmt.Fprintf(stderr, "Failed to write artifacts: %v\n", err)
			return ExitError
		}
		if err := report.RenderTable(stdout, summary, *noColor); err != nil {
			fmt.Fprintf(stderr, "Failed to render summary: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "\nResults: %s\n", paths.ResultsPath())
		fmt.Fprintf(stdout, "Summary: %s\n", paths.SummaryJSONPath())
		fmt.Fprintf(stdout, "Report: %s\n", paths.ReportPath())
		return ExitOK
	}
}

// overridePath replaces dst with a flag-provided path resolved against the
// working directory, so the config's base directory never rebases it.
func overridePath(dst *string, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return err
	}
	*dst = abs
	return nil
}

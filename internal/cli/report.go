package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"depeval/internal/config"
	"depeval/internal/report"
	"depeval/internal/runner"
)

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for "+config.ConfigFileName+")")
		outputDir := flags.String("output", "", "Output directory holding runs (overrides the config)")
		runRef := flags.String("run", "latest", "Run id, unique prefix, or \"latest\"")
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

		root := *outputDir
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
			root = config.ResolvePath(filepath.Dir(resolved), cfg.OutputDir)
		}

		runDir, err := runner.FindRunDir(root, *runRef)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to locate run: %v\n", err)
			return ExitError
		}
		paths, err := runner.NewOutputPaths(root, filepath.Base(runDir))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve run paths: %v\n", err)
			return ExitError
		}

		summary, err := runner.LoadSummary(paths.SummaryJSONPath())
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load summary: %v\n", err)
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
		fmt.Fprintf(stdout, "\nReport: %s\n", paths.ReportPath())
		return ExitOK
	}
}

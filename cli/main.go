// Package main is the entry point for the ctrlmatrix CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/discovery"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/report"
	"github.com/nox-hq/ctrlmatrix/core/report/sarif"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
	"github.com/nox-hq/ctrlmatrix/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals carries the settings shared by every command.
type globals struct {
	cfg    *core.Config
	logger *slog.Logger
	quiet  bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = passed, 1 = validation or policy failed, 2 = usage or I/O error.
func run(args []string) int {
	fs := flag.NewFlagSet("ctrlmatrix", flag.ContinueOnError)

	var (
		configPath  string
		quietFlag   bool
		verboseFlag bool
		versionFlag bool
	)

	fs.StringVar(&configPath, "config", "", "path to config file (default: ./"+core.ConfigFileName+")")
	fs.BoolVar(&quietFlag, "quiet", false, "suppress all output except errors")
	fs.BoolVar(&quietFlag, "q", false, "suppress all output except errors (shorthand)")
	fs.BoolVar(&verboseFlag, "verbose", false, "enable verbose output")
	fs.BoolVar(&verboseFlag, "v", false, "enable verbose output (shorthand)")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ctrlmatrix <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  validate    Validate control matrices against a PRR document\n")
		fmt.Fprintf(os.Stderr, "  generate    Generate a control matrix from a PRR document\n")
		fmt.Fprintf(os.Stderr, "  extract     List the requirement IDs of a PRR document\n")
		fmt.Fprintf(os.Stderr, "  coverage    Score compliance framework coverage of a matrix\n")
		fmt.Fprintf(os.Stderr, "  badge       Write an SVG coverage badge\n")
		fmt.Fprintf(os.Stderr, "  watch       Re-validate when the inputs change\n")
		fmt.Fprintf(os.Stderr, "  show        Browse validation issues interactively\n")
		fmt.Fprintf(os.Stderr, "  explain     Explain validation issues using an LLM\n")
		fmt.Fprintf(os.Stderr, "  serve       Start MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "  completion  Print a shell completion script\n")
		fmt.Fprintf(os.Stderr, "  version     Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		printVersion()
		return 0
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix <command> [flags]")
		return 2
	}

	command := remaining[0]
	switch command {
	case "version":
		printVersion()
		return 0
	case "completion":
		return runCompletion(remaining[1:])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	g := &globals{
		cfg:    cfg,
		logger: newLogger(quietFlag, verboseFlag),
		quiet:  quietFlag,
	}

	switch command {
	case "validate":
		return runValidate(g, remaining[1:])
	case "generate":
		return runGenerate(g, remaining[1:])
	case "extract":
		return runExtract(g, remaining[1:])
	case "coverage":
		return runCoverage(g, remaining[1:])
	case "badge":
		return runBadge(g, remaining[1:])
	case "watch":
		return runWatch(g, remaining[1:])
	case "show":
		return runShow(g, remaining[1:])
	case "explain":
		return runExplain(g, remaining[1:])
	case "serve":
		return runServe(g, remaining[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix <command> [flags]")
		return 2
	}
}

func printVersion() {
	fmt.Printf("ctrlmatrix %s (commit: %s, built: %s)\n", version, commit, date)
}

func loadConfig(path string) (*core.Config, error) {
	if path != "" {
		return core.LoadConfigFile(path)
	}
	return core.LoadConfig(".")
}

// newLogger writes structured logs to stderr. Pipeline progress is logged
// at info, so it only shows with --verbose.
func newLogger(quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// options builds pipeline options from the loaded config.
func (g *globals) options() (core.Options, error) {
	opts, err := core.OptionsFromConfig(g.cfg)
	if err != nil {
		return core.Options{}, err
	}
	opts.Logger = g.logger
	return opts, nil
}

// printf writes progress output unless --quiet is set.
func (g *globals) printf(format string, args ...any) {
	if !g.quiet {
		fmt.Printf(format, args...)
	}
}

// reportError prints err and returns exit code 2. Missing inputs use the
// conventional "file not found" wording.
func reportError(err error) int {
	var docErr *requirements.DocumentNotFoundError
	var matrixErr *matrix.MatrixNotFoundError
	switch {
	case errors.As(err, &docErr):
		fmt.Fprintf(os.Stderr, "error: PRR file not found: %s\n", docErr.Path)
	case errors.As(err, &matrixErr):
		fmt.Fprintf(os.Stderr, "error: control matrix file not found: %s\n", matrixErr.Path)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return 2
}

// knownFormats are the stdout formats validate can render.
var knownFormats = map[string]bool{"text": true, "json": true, "sarif": true}

func runValidate(g *globals, args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)

	var (
		prr         string
		matrixFlag  string
		output      string
		sarifOutput string
		formatFlag  string
		dir         string
	)

	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.StringVar(&matrixFlag, "matrix", "", "control matrix CSV paths (comma-separated)")
	fs.StringVar(&output, "output", "", "write the JSON report to this file")
	fs.StringVar(&sarifOutput, "sarif-output", "", "write a SARIF report to this file")
	fs.StringVar(&formatFlag, "format", "", "stdout formats: text,json,sarif (comma-separated, default: text)")
	fs.StringVar(&dir, "dir", "", "validate every control matrix found under this directory")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	matrixPaths := splitList(matrixFlag)
	if len(matrixPaths) == 0 && dir != "" && prr != "" {
		found, err := discovery.Find(dir, discovery.Matrix)
		if err != nil {
			return reportError(fmt.Errorf("discovering control matrices: %w", err))
		}
		if len(found) == 0 {
			fmt.Fprintf(os.Stderr, "error: no control matrices found under %s\n", dir)
			return 2
		}
		g.logger.Info("discovered control matrices", "dir", dir, "count", len(found))
		matrixPaths = found
	}
	if prr == "" || len(matrixPaths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix validate --prr <file> (--matrix <file>[,<file>...] | --dir <dir>) [flags]")
		return 2
	}

	if formatFlag == "" {
		formatFlag = g.cfg.Output.Format
	}
	formats := parseFormats(formatFlag)
	for _, format := range formats {
		if !knownFormats[format] {
			fmt.Fprintf(os.Stderr, "error: unknown format: %s\n", format)
			return 2
		}
	}

	if dir := g.cfg.Output.Directory; dir != "" {
		if output == "" {
			output = filepath.Join(dir, "report.json")
		}
		if sarifOutput == "" {
			sarifOutput = filepath.Join(dir, "results.sarif")
		}
	}

	opts, err := g.options()
	if err != nil {
		return reportError(err)
	}

	results, err := core.ValidateAll(context.Background(), prr, matrixPaths, opts)
	if err != nil {
		return reportError(err)
	}

	for _, format := range formats {
		if g.quiet {
			break
		}
		var data []byte
		switch format {
		case "text":
			data, err = (&report.TextReporter{Styled: isTerminal()}).Generate(results...)
		case "json":
			data, err = report.NewJSONReporter(version).Generate(results...)
		case "sarif":
			data, err = sarif.NewReporter(version).Generate(results...)
		}
		if err != nil {
			return reportError(fmt.Errorf("rendering %s report: %w", format, err))
		}
		fmt.Print(string(data))
		if format != "text" {
			fmt.Println()
		}
	}

	if output != "" {
		if err := writeReport(output, func(path string) error {
			return report.NewJSONReporter(version).WriteToFile(path, results...)
		}); err != nil {
			return reportError(err)
		}
		g.printf("\nValidation report saved to: %s\n", output)
	}
	if sarifOutput != "" {
		if err := writeReport(sarifOutput, func(path string) error {
			return sarif.NewReporter(version).WriteToFile(path, results...)
		}); err != nil {
			return reportError(err)
		}
		g.printf("SARIF report saved to: %s\n", sarifOutput)
	}

	code := 0
	for _, r := range results {
		code = max(code, r.ExitCode())
	}
	return code
}

// writeReport creates the parent directory of path and calls write.
func writeReport(path string, write func(string) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := write(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func runServe(g *globals, args []string) int {
	serveFS := flag.NewFlagSet("serve", flag.ContinueOnError)
	var allowedPaths string
	serveFS.StringVar(&allowedPaths, "allowed-paths", "", "comma-separated list of allowed workspace paths")

	if err := serveFS.Parse(args); err != nil {
		return 2
	}

	opts, err := g.options()
	if err != nil {
		return reportError(err)
	}

	srv := server.New(version, splitList(allowedPaths), server.WithValidateOptions(opts))
	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "error: MCP server failed: %v\n", err)
		return 2
	}
	return 0
}

// parseFormats splits the comma-separated format flag into individual
// formats. "all" expands to every supported format.
func parseFormats(flag string) []string {
	if flag == "all" {
		return []string{"text", "json", "sarif"}
	}
	formats := splitList(flag)
	if len(formats) == 0 {
		return []string{"text"}
	}
	return formats
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

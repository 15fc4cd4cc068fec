package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/nfcheck"
	"github.com/rlch/nfcheck/analysis"
	"github.com/rlch/nfcheck/fd"
	"github.com/rlch/nfcheck/runner"
)

// Exit codes.
const (
	exitFailed = 1 // an assertion failed or a relation could not be evaluated
	exitInput  = 2 // malformed input, configuration or flags
)

// Check command errors.
var (
	ErrNoInputFiles = errors.New("no input files found")
	ErrInputErrors  = errors.New("input contains errors")
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Report candidate keys and normal forms",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (text, json, yaml)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "relations evaluated in parallel (default: one per CPU)",
			},
			&cli.IntFlag{
				Name:  "max-attributes",
				Usage: "refuse relations with more attributes (0: no limit)",
			},
			&cli.IntFlag{
				Name:  "max-subsets",
				Usage: "stop a relation after this many closures (0: no limit)",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "check only relations whose name matches the pattern",
			},
			&cli.StringSliceFlag{
				Name:  "assert",
				Usage: `expression every report must satisfy, e.g. 'Satisfies("3NF")'`,
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop on first failure",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "colorize output (auto, always, never)",
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	root := cmd.Root()
	stdout, stderr := root.Writer, root.ErrWriter

	logger := newLogger(cmd, stderr)
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}

	files, err := collectFiles(cmd.Args().Slice(), cfg.Extensions)
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}

	if len(files) == 0 {
		return cli.Exit(ErrNoInputFiles.Error(), exitInput)
	}

	logger.Debug("Checking files", zap.Strings("files", files), zap.Any("config", cfg))

	formatter, err := runner.NewFormatter(cfg.Format, stdout, runner.UseColor(cfg.Color, stdout))
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}

	handler := runner.NewFormatHandler(formatter, stderr)

	schemas, err := analyzeFiles(files, root.Reader, handler, cfg, cmd.Bool("debug"))
	if errors.Is(err, ErrInputErrors) {
		return cli.Exit("", exitInput)
	}

	if err != nil {
		return err
	}

	var filter *regexp.Regexp

	if pattern := cmd.String("run"); pattern != "" {
		filter, err = regexp.Compile(pattern)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid --run pattern: %v", err), exitInput)
		}
	}

	assertions, err := runner.CompileAssertions(cfg.Assert)
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}

	checker := fd.NewChecker(
		fd.WithMaxAttributes(cfg.MaxAttributes),
		fd.WithMaxSubsets(cfg.MaxSubsets),
		fd.WithLogger(logger),
	)

	r := runner.New(
		runner.WithHandler(handler),
		runner.WithFailFast(cmd.Bool("fail-fast")),
		runner.WithFilter(filter),
		runner.WithWorkers(cfg.Workers),
		runner.WithChecker(checker),
		runner.WithAssertions(assertions...),
		runner.WithLogger(logger),
	)

	result, err := r.Run(ctx, schemas...)
	if err != nil {
		return fmt.Errorf("running: %w", err)
	}

	if err := handler.Summary(result); err != nil {
		return err
	}

	if !result.Ok() {
		return cli.Exit("", exitFailed)
	}

	return nil
}

// analyzeFiles parses and analyzes every input, reporting read failures and
// diagnostics through h. Hints are only shown with --debug. It returns
// ErrInputErrors when any file has an error-level diagnostic.
func analyzeFiles(files []string, stdin io.Reader, h runner.Handler, cfg *nfcheck.Config, hints bool) ([]*nfcheck.Schema, error) {
	analyzer := analysis.NewAnalyzer(analysis.WithMaxAttributes(cfg.MaxAttributes))

	var (
		schemas   []*nfcheck.Schema
		hasErrors bool
	)

	for _, file := range files {
		data, err := readInput(file, stdin)
		if err != nil {
			if err := h.Err(fmt.Sprintf("%s: error: %v", displayName(file), err)); err != nil {
				return nil, err
			}

			hasErrors = true

			continue
		}

		result := analyzer.Analyze(displayName(file), data)
		if err := reportDiagnostics(h, result, hints); err != nil {
			return nil, err
		}

		if result.HasErrors() {
			hasErrors = true
			continue
		}

		schemas = append(schemas, result.Schema)
	}

	if hasErrors {
		return nil, ErrInputErrors
	}

	return schemas, nil
}

func reportDiagnostics(h runner.Handler, result *analysis.AnalyzedFile, hints bool) error {
	for _, d := range result.Diagnostics {
		if d.Severity == analysis.SeverityHint && !hints {
			continue
		}

		if err := h.Err(d.Error()); err != nil {
			return err
		}

		var perr *nfcheck.ParseError
		if errors.As(d.Err, &perr) && perr.Text != "" {
			if err := h.Err("\t" + perr.Text); err != nil {
				return err
			}
		}
	}

	return nil
}

func displayName(file string) string {
	if file == stdinName {
		return "<stdin>"
	}

	return file
}

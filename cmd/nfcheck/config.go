package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rlch/nfcheck"
	"github.com/rlch/nfcheck/runner"
)

// loadConfig loads --config when given, otherwise the nearest config file
// above the first input. Flags set on the command line win over both.
func loadConfig(cmd *cli.Command) (*nfcheck.Config, error) {
	var (
		cfg *nfcheck.Config
		err error
	)

	if path := cmd.String("config"); path != "" {
		cfg, err = nfcheck.LoadConfigFile(path)
	} else {
		cfg, err = nfcheck.LoadConfig(configDir(cmd.Args().Slice()))
	}

	if err != nil {
		return nil, err
	}

	applyFlags(cmd, cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configDir is where the config search starts: the first input's directory,
// or the working directory for standard input.
func configDir(args []string) string {
	if len(args) == 0 || args[0] == stdinName {
		return "."
	}

	info, err := os.Stat(args[0])
	if err == nil && info.IsDir() {
		return args[0]
	}

	return filepath.Dir(args[0])
}

func applyFlags(cmd *cli.Command, cfg *nfcheck.Config) {
	if cmd.IsSet("format") {
		cfg.Format = cmd.String("format")
	}

	if cmd.IsSet("color") {
		cfg.Color = cmd.String("color")
	}

	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}

	if cmd.IsSet("max-attributes") {
		cfg.MaxAttributes = cmd.Int("max-attributes")
	}

	if cmd.IsSet("max-subsets") {
		cfg.MaxSubsets = cmd.Int("max-subsets")
	}

	if cmd.IsSet("assert") {
		cfg.Assert = cmd.StringSlice("assert")
	}
}

func validateConfig(cfg *nfcheck.Config) error {
	switch cfg.Color {
	case runner.ColorAuto, runner.ColorAlways, runner.ColorNever:
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", cfg.Color)
	}

	if cfg.MaxAttributes < 0 || cfg.MaxSubsets < 0 || cfg.Workers < 0 {
		return errors.New("limits must not be negative")
	}

	return nil
}

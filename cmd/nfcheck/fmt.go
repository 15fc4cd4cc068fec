package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rlch/nfcheck"
)

func fmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Rewrite schema files in canonical form",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "write result to the source file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list files whose formatting differs",
			},
		},
		Action: runFmt,
	}
}

func runFmt(_ context.Context, cmd *cli.Command) error {
	root := cmd.Root()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}

	files, err := collectFiles(cmd.Args().Slice(), cfg.Extensions)
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}

	failed := false

	for _, file := range files {
		if err := formatFile(cmd, file, root.Reader, root.Writer); err != nil {
			printParseError(root.ErrWriter, file, err)

			failed = true
		}
	}

	if failed {
		return cli.Exit("", exitInput)
	}

	return nil
}

func formatFile(cmd *cli.Command, file string, stdin io.Reader, stdout io.Writer) error {
	data, err := readInput(file, stdin)
	if err != nil {
		return err
	}

	schema, err := nfcheck.Parse(displayName(file), data)
	if err != nil {
		return err
	}

	out := nfcheck.Format(schema)
	changed := out != string(data)

	switch {
	case cmd.Bool("list"):
		if changed {
			_, err = fmt.Fprintln(stdout, displayName(file))
		}
	case cmd.Bool("write") && file != stdinName:
		if changed {
			err = writeFile(file, out)
		}
	default:
		_, err = io.WriteString(stdout, out)
	}

	return err
}

// writeFile replaces the content of an existing file, keeping its mode.
func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}

func printParseError(w io.Writer, file string, err error) {
	var perr *nfcheck.ParseError
	if !errors.As(err, &perr) {
		fmt.Fprintf(w, "%s: error: %v\n", displayName(file), err)
		return
	}

	fmt.Fprintf(w, "%s:%d:%d: error: %v\n", displayName(file), perr.Line, perr.Column, perr.Kind)

	if perr.Err != nil {
		fmt.Fprintf(w, "\t%v\n", perr.Err)
	}

	fmt.Fprintf(w, "\t%s\n", perr.Text)
}

// Command nfcheck reports candidate keys and the normal forms of relation
// schemas.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "nfcheck:", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "nfcheck",
		Usage:   "Find candidate keys and check relations for 2NF, 3NF and BCNF",
		Version: version,
		Reader:  stdin,
		Writer:  stdout,
		// ErrWriter receives diagnostics and logs.
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("NFCHECK_DEBUG"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a config file (default: nearest .nfcheck.yaml)",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			fmtCommand(),
		},
	}
}

// newLogger builds a development logger writing to w, at Info level or Debug
// with --debug.
func newLogger(cmd *cli.Command, w io.Writer) *zap.Logger {
	level := zapcore.InfoLevel
	if cmd.Bool("debug") {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))

	return zap.New(core, zap.Development())
}

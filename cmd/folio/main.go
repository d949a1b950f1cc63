// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run parses the global flags, loads configuration, wires the engine and
// dispatches to a command. Results go to stdout as JSON; logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("folio", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML config file (default: $CONFIG_PATH, then ./config.yaml)")
	global.Usage = func() { printUsage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if global.NArg() == 0 {
		printUsage(stderr, global)
		return exitUsage
	}

	name := global.Arg(0)
	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "folio: unknown command %q\n\n", name)
		printUsage(stderr, global)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "folio: %v\n", err)
		return exitFailure
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: stderr,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(ctx).With().Str("command", name).Logger()

	components, err := initRecommend(cfg, logging.Logger())
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize recommendation engine")
		return exitFailure
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing training history")
		}
	}()

	env := &commandEnv{
		cfg:        cfg,
		components: components,
		logger:     logger,
		out:        stdout,
		errOut:     stderr,
	}
	if err := cmd.run(ctx, env, global.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		logger.Error().Err(err).Msg("command failed")
		return exitFailure
	}
	return exitOK
}

// loadConfig reads an explicit file when one is given, otherwise the
// default search path.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadWithKoanf()
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: folio [-config file] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	global.PrintDefaults()
}

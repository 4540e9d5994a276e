package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"moneytracker/internal/backend"
	"moneytracker/internal/cli"
	"moneytracker/internal/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// Diagnostics go to stderr so command output stays pipeable.
	logger := cli.SetupLogger(cfg, stderr).WithComponent(log.ComponentCLI)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	app, err := cli.NewApp(ctx, cfg, logger, cli.Options{Publish: true})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	}()
	if app.Backend.Type == backend.MemoryBackend {
		logger.Warn("Memory backend selected; changes end with this command")
	}

	if err := newRunner(app.Tracker, stdin, stdout).run(ctx, args); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

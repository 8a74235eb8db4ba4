// Command loadrush is an HTTP load generator: it drives a configurable
// number of concurrent workers against one or more target URLs, collects
// per-request results, and reports aggregate latency and throughput
// statistics once the run completes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/torosent/loadrush/internal/config"
	"github.com/torosent/loadrush/internal/engine"
	"github.com/torosent/loadrush/internal/output"
	"github.com/torosent/loadrush/internal/result"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	testConfig, err := cfg.ToTestConfig()
	if err != nil {
		return err
	}
	if err := testConfig.Validate(); err != nil {
		return err
	}

	eng, err := engine.New(testConfig)
	if err != nil {
		return err
	}

	var failureLogger output.FailureLogger
	if cfg.LogErrors {
		failureLogger = output.NewStderrFailureLogger(os.Stderr)
	}
	eng.OnProgress = func(r result.RequestResult) {
		if failureLogger != nil {
			failureLogger.LogFailure(r)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runResult, err := eng.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if cfg.JSONOutput {
		export := output.NewExport(runResult.RunID, runResult.StartTime, runResult.EndTime, runResult.Stats, runResult.Results, false)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(export); err != nil {
			return err
		}
	} else {
		output.PrintSummary(os.Stdout, runResult.RunID, runResult.StartTime, runResult.EndTime, runResult.Stats)
	}

	if cfg.OutputFile != "" {
		export := output.NewExport(runResult.RunID, runResult.StartTime, runResult.EndTime, runResult.Stats, runResult.Results, true)
		if err := output.WriteExport(cfg.OutputFile, export); err != nil {
			return err
		}
	}

	return nil
}

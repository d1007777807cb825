// Package cmd provides CLI commands for the statlab application.
// This file holds the shared wiring: configuration, logging, the report
// runner, and run-history recording.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/config"
	"github.com/adalundhe/statlab/core/report"
	"github.com/adalundhe/statlab/core/runstore"
	"github.com/adalundhe/statlab/core/storage"
	"github.com/adalundhe/statlab/core/suite"
)

// env bundles the pieces every analysis command needs.
type env struct {
	cfg    *config.Config
	dirs   *storage.Dirs
	logger *slog.Logger
	runner *suite.Runner
}

// newEnv resolves storage directories, loads the layered configuration, and
// builds the report runner.
func newEnv() (*env, error) {
	logger := newLogger()

	dirs, err := storage.ResolveDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directories: %w", err)
	}

	manager := config.NewManager(dirs)
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := manager.Get()

	plotDir := rootPlotDir
	if plotDir == "" {
		plotDir = cfg.Output.PlotDir
	}

	runner, err := suite.NewRunner(cfg, plotDir, logger)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, dirs: dirs, logger: logger, runner: runner}, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if rootVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// executeReport runs report definitions, renders their output, and records
// the runs in history.
func executeReport(cmd *cobra.Command, reps ...*suite.Report) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	results := make([]*suite.Result, 0, len(reps))
	for _, rep := range reps {
		res, err := e.runner.Run(rep)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	if err := renderResults(cmd.OutOrStdout(), e.cfg, results...); err != nil {
		return err
	}

	e.record(results...)
	return nil
}

// renderResults writes results as aligned tables or as JSON, depending on the
// effective output format.
func renderResults(w io.Writer, cfg *config.Config, results ...*suite.Result) error {
	if jsonOutput(cfg) {
		if len(results) == 1 {
			return report.JSON(w, results[0])
		}
		return report.JSON(w, results)
	}

	width := 0
	if f, ok := w.(*os.File); ok {
		width = report.TerminalWidth(f)
	}

	for _, res := range results {
		for _, tab := range res.Tables {
			if err := tab.RenderWidth(w, width); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
		for _, path := range res.Plots {
			fmt.Fprintf(w, "wrote %s\n", path)
		}
	}
	return nil
}

func jsonOutput(cfg *config.Config) bool {
	return rootJSON || cfg.Output.Format == "json"
}

// record stores runs in the history database. History failures are logged
// rather than returned; the analysis output has already been rendered.
func (e *env) record(results ...*suite.Result) {
	if rootNoHistory || !e.cfg.History.Enabled {
		return
	}

	store, err := runstore.Open(e.cfg.HistoryPath(e.dirs), e.logger)
	if err != nil {
		e.logger.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()

	for _, res := range results {
		_, err := store.Record(runstore.Run{
			Command: string(res.Kind),
			Dataset: res.Dataset,
			Params:  res.Params,
			Metrics: res.Metrics,
		})
		if err != nil {
			e.logger.Warn("run not recorded", "name", res.Name, "error", err)
		}
	}
}

// reportName falls back to the kind when no explicit name was given.
func reportName(name string, kind suite.Kind) string {
	if name != "" {
		return name
	}
	return string(kind)
}

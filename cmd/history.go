package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/report"
	"github.com/adalundhe/statlab/core/runstore"
)

var (
	historyCommand string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis runs",
	Long: `List past runs from the history database, newest first. Every
analysis command records its parameters and headline metrics unless
--no-history is set.

Examples:
  statlab history
  statlab history --command conjoint --limit 5
  statlab history --json | jq '.[0].metrics'`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().StringVar(&historyCommand, "command", "", "Only list runs of this command")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	store, err := runstore.Open(e.cfg.HistoryPath(e.dirs), e.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(historyCommand, historyLimit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput(e.cfg) {
		if runs == nil {
			runs = []runstore.Run{}
		}
		return report.JSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tab := &report.Table{Headers: []string{"id", "command", "dataset", "created", "metrics"}}
	for _, run := range runs {
		tab.AddRow(
			shortID(run.ID),
			run.Command,
			run.Dataset,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			formatMetrics(run.Metrics),
		)
	}
	return tab.Render(w)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	store, err := runstore.Open(e.cfg.HistoryPath(e.dirs), e.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput(e.cfg) {
		return report.JSON(w, run)
	}

	info := &report.Table{Title: "Run " + run.ID, Headers: []string{"field", "value"}}
	info.AddRow("command", run.Command)
	info.AddRow("dataset", run.Dataset)
	info.AddRow("created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if err := info.Render(w); err != nil {
		return err
	}

	if len(run.Params) > 0 {
		fmt.Fprintln(w)
		params := &report.Table{Title: "Parameters", Headers: []string{"param", "value"}}
		for _, k := range slices.Sorted(maps.Keys(run.Params)) {
			params.AddRow(k, run.Params[k])
		}
		if err := params.Render(w); err != nil {
			return err
		}
	}

	if len(run.Metrics) > 0 {
		fmt.Fprintln(w)
		metrics := &report.Table{Title: "Metrics", Headers: []string{"metric", "value"}}
		for _, k := range slices.Sorted(maps.Keys(run.Metrics)) {
			metrics.AddRow(k, strconv.FormatFloat(run.Metrics[k], 'g', -1, 64))
		}
		if err := metrics.Render(w); err != nil {
			return err
		}
	}
	return nil
}

// shortID abbreviates a run UUID for the list view.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatMetrics renders a metrics map as "name=value" pairs in key order.
func formatMetrics(metrics map[string]float64) string {
	parts := make([]string, 0, len(metrics))
	for _, k := range slices.Sorted(maps.Keys(metrics)) {
		parts = append(parts, k+"="+strconv.FormatFloat(metrics[k], 'g', 4, 64))
	}
	return strings.Join(parts, " ")
}

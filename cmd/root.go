package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootJSON      bool
	rootVerbose   bool
	rootPlotDir   string
	rootNoHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "statlab",
	Short: "Statlab - classroom statistical analyses",
	Long: `Statlab runs the statistical analyses behind a marketing-analytics
course: dataset summaries, K-means segmentation, KNN classification,
Poisson regression, field-experiment evaluation, and Bayesian conjoint
estimation via Metropolis-Hastings.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootJSON, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootPlotDir, "plot-dir", "", "Directory for plot files (default from config)")
	rootCmd.PersistentFlags().BoolVar(&rootNoHistory, "no-history", false, "Skip recording the run in history")
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/suite"
)

var (
	poissonOutcome  string
	poissonFeatures []string
	poissonName     string
)

var poissonCmd = &cobra.Command{
	Use:   "poisson <dataset>",
	Short: "Fit a Poisson regression to count data",
	Long: `Fit a Poisson log-linear model two ways and report them side by
side: a gradient-free maximization of the hand-rolled log-likelihood, and an
iteratively reweighted least squares fit with standard errors.

Examples:
  statlab poisson --outcome visits --features "price,promo" stores.csv
  statlab poisson --outcome claims --features age insurance.dta`,
	Args: cobra.ExactArgs(1),
	RunE: runPoisson,
}

func init() {
	rootCmd.AddCommand(poissonCmd)

	poissonCmd.Flags().StringVarP(&poissonOutcome, "outcome", "o", "", "Count outcome column")
	poissonCmd.Flags().StringSliceVarP(&poissonFeatures, "features", "f", nil, "Regressor columns")
	poissonCmd.Flags().StringVar(&poissonName, "name", "", "Report name recorded in history")
	poissonCmd.MarkFlagRequired("outcome")
	poissonCmd.MarkFlagRequired("features")
}

func runPoisson(cmd *cobra.Command, args []string) error {
	return executeReport(cmd, &suite.Report{
		Name:     reportName(poissonName, suite.KindPoisson),
		Kind:     suite.KindPoisson,
		Dataset:  args[0],
		Outcome:  poissonOutcome,
		Features: poissonFeatures,
	})
}

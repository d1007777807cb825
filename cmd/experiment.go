package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/suite"
)

var (
	experimentOutcome    string
	experimentTreatment  string
	experimentCovariates []string
	experimentBinary     string
	experimentPlots      bool
	experimentSeed       uint64
	experimentName       string
)

var experimentCmd = &cobra.Command{
	Use:   "experiment <dataset>",
	Short: "Evaluate a randomized experiment",
	Long: `Estimate the average treatment effect of a two-arm experiment:
difference in means with a Welch t test, covariate balance checks, a
regression-adjusted estimate, and optionally a probit fit for a binary
outcome. The treatment column must be a 0/1 indicator.

Examples:
  statlab experiment --outcome spend --treatment coupon trial.csv
  statlab experiment --outcome spend --treatment coupon --covariates "age,tenure" trial.csv
  statlab experiment --outcome spend --treatment coupon --binary-outcome converted --plots trial.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExperiment,
}

func init() {
	rootCmd.AddCommand(experimentCmd)

	experimentCmd.Flags().StringVarP(&experimentOutcome, "outcome", "o", "", "Outcome column")
	experimentCmd.Flags().StringVarP(&experimentTreatment, "treatment", "t", "", "0/1 treatment indicator column")
	experimentCmd.Flags().StringSliceVar(&experimentCovariates, "covariates", nil, "Covariate columns for balance checks and adjustment")
	experimentCmd.Flags().StringVar(&experimentBinary, "binary-outcome", "", "Binary outcome column for a probit fit")
	experimentCmd.Flags().BoolVar(&experimentPlots, "plots", false, "Write CLT and LLN simulation plots for the outcome")
	experimentCmd.Flags().Uint64Var(&experimentSeed, "seed", 0, "Seed for the simulation plots")
	experimentCmd.Flags().StringVar(&experimentName, "name", "", "Report name recorded in history")
	experimentCmd.MarkFlagRequired("outcome")
	experimentCmd.MarkFlagRequired("treatment")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	return executeReport(cmd, &suite.Report{
		Name:          reportName(experimentName, suite.KindExperiment),
		Kind:          suite.KindExperiment,
		Dataset:       args[0],
		Outcome:       experimentOutcome,
		Treatment:     experimentTreatment,
		Covariates:    experimentCovariates,
		BinaryOutcome: experimentBinary,
		Plots:         experimentPlots,
		Seed:          experimentSeed,
	})
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/suite"
)

var (
	describeColumns []string
	describeName    string
)

var describeCmd = &cobra.Command{
	Use:   "describe <dataset> [dataset ...]",
	Short: "Summarize the columns of a dataset",
	Long: `Summarize every column of a CSV or Stata dataset: count, mean,
standard deviation, quartiles, and extremes for numeric columns; distinct
levels and the modal value for categorical ones.

Examples:
  statlab describe survey.csv
  statlab describe --columns "age,income" survey.csv
  statlab describe --columns "visit_*" panel.dta waves.dta
  statlab describe --json survey.csv | jq '.tables[0]'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringSliceVarP(&describeColumns, "columns", "c", nil, "Columns to include (glob patterns allowed)")
	describeCmd.Flags().StringVar(&describeName, "name", "", "Report name recorded in history")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	reps := make([]*suite.Report, 0, len(args))
	for _, path := range args {
		reps = append(reps, &suite.Report{
			Name:    reportName(describeName, suite.KindDescribe),
			Kind:    suite.KindDescribe,
			Dataset: path,
			Columns: describeColumns,
		})
	}
	return executeReport(cmd, reps...)
}

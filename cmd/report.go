package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/suite"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report <suite.yaml>",
	Short: "Run a suite of reports from a YAML file",
	Long: `Run every report defined in a suite file, in order, against a
shared dataset cache. Execution stops at the first failing report.

A suite file names its reports and may override configuration per report:

  name: weekly
  output: out/plots
  reports:
    - name: segments
      kind: cluster
      dataset: data/customers.csv
      k: 4
      standardize: true
      plot: segments.png
    - name: streaming
      kind: conjoint
      simulate: true
      config:
        sampler:
          steps: 50000

Examples:
  statlab report weekly.yaml
  statlab report --output /tmp/plots weekly.yaml
  statlab report --json weekly.yaml | jq '.[].metrics'`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOutput, "output", "O", "", "Plot directory, overriding the suite's output setting")
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	s, err := suite.Load(args[0])
	if err != nil {
		return err
	}
	if reportOutput != "" {
		s.Output = reportOutput
	}

	results, err := e.runner.RunSuite(s)
	if err != nil {
		return err
	}
	if err := renderResults(cmd.OutOrStdout(), e.cfg, results...); err != nil {
		return err
	}

	e.record(results...)
	return nil
}

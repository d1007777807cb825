package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/suite"
)

var (
	clusterColumns     []string
	clusterK           int
	clusterStandardize bool
	clusterPlot        string
	clusterSeed        uint64
	clusterName        string
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <dataset>",
	Short: "Segment rows with K-means",
	Long: `Run K-means over the numeric columns of a dataset and report the
centroids, cluster sizes, and silhouette score.

Examples:
  statlab cluster --k 4 --standardize customers.csv
  statlab cluster --columns "recency,frequency,monetary" --plot segments.png customers.csv
  statlab cluster --k 2 --seed 7 blobs.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().StringSliceVarP(&clusterColumns, "columns", "c", nil, "Feature columns (default: every numeric column)")
	clusterCmd.Flags().IntVar(&clusterK, "k", 0, "Number of clusters (default from config)")
	clusterCmd.Flags().BoolVar(&clusterStandardize, "standardize", false, "Scale each feature to zero mean and unit variance")
	clusterCmd.Flags().StringVar(&clusterPlot, "plot", "", "Write a cluster scatter plot (.png or .html)")
	clusterCmd.Flags().Uint64Var(&clusterSeed, "seed", 0, "Seed for centroid initialization (default from config)")
	clusterCmd.Flags().StringVar(&clusterName, "name", "", "Report name recorded in history")
}

func runCluster(cmd *cobra.Command, args []string) error {
	return executeReport(cmd, &suite.Report{
		Name:        reportName(clusterName, suite.KindCluster),
		Kind:        suite.KindCluster,
		Dataset:     args[0],
		Columns:     clusterColumns,
		K:           clusterK,
		Standardize: clusterStandardize,
		Plot:        clusterPlot,
		Seed:        clusterSeed,
	})
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/statlab/core/suite"
)

var (
	classifyLabel     string
	classifyFeatures  []string
	classifyNeighbors int
	classifyFraction  float64
	classifyPredict   []float64
	classifySeed      uint64
	classifyName      string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <dataset>",
	Short: "Classify rows with K-nearest neighbors",
	Long: `Split a labeled dataset into train and test sets, fit a KNN
classifier, and report the held-out confusion matrix and accuracy.

Examples:
  statlab classify --label species iris.csv
  statlab classify --label churned --neighbors 7 --test-fraction 0.3 customers.csv
  statlab classify --label species --predict 5.1,3.5,1.4,0.2 iris.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyLabel, "label", "l", "", "Categorical column holding the class labels")
	classifyCmd.Flags().StringSliceVarP(&classifyFeatures, "features", "f", nil, "Feature columns (default: every numeric column)")
	classifyCmd.Flags().IntVarP(&classifyNeighbors, "neighbors", "k", 0, "Number of neighbors (default from config)")
	classifyCmd.Flags().Float64Var(&classifyFraction, "test-fraction", 0, "Held-out fraction of rows (default from config)")
	classifyCmd.Flags().Float64SliceVar(&classifyPredict, "predict", nil, "Feature values of a single point to classify")
	classifyCmd.Flags().Uint64Var(&classifySeed, "seed", 0, "Seed for the train/test shuffle (default from config)")
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "Report name recorded in history")
	classifyCmd.MarkFlagRequired("label")
}

func runClassify(cmd *cobra.Command, args []string) error {
	return executeReport(cmd, &suite.Report{
		Name:         reportName(classifyName, suite.KindClassify),
		Kind:         suite.KindClassify,
		Dataset:      args[0],
		Label:        classifyLabel,
		Features:     classifyFeatures,
		Neighbors:    classifyNeighbors,
		TestFraction: classifyFraction,
		Predict:      classifyPredict,
		Seed:         classifySeed,
	})
}

package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/adalundhe/statlab/core/dataset"
	"github.com/adalundhe/statlab/core/regress"
)

// ATEResult is the unadjusted difference-in-means estimate of the average
// treatment effect, with a Welch t test against zero effect.
type ATEResult struct {
	Effect      float64
	StdErr      float64
	T           float64
	DF          float64
	P           float64
	ControlMean float64
	TreatedMean float64
	NControl    int
	NTreated    int
}

// ATE estimates the average treatment effect as the difference in outcome
// means between arms.
func ATE(outcome []float64, treatment []bool) (*ATEResult, error) {
	if len(outcome) != len(treatment) {
		return nil, fmt.Errorf("ate: outcome has %d rows, treatment %d", len(outcome), len(treatment))
	}
	treated, control := splitByArm(outcome, treatment)
	tt, err := WelchTTest(treated, control)
	if err != nil {
		return nil, fmt.Errorf("ate: %w", err)
	}
	return &ATEResult{
		Effect:      tt.Diff,
		StdErr:      tt.StdErr,
		T:           tt.T,
		DF:          tt.DF,
		P:           tt.P,
		ControlMean: tt.MeanY,
		TreatedMean: tt.MeanX,
		NControl:    tt.NY,
		NTreated:    tt.NX,
	}, nil
}

// ATEFromTable reads the outcome and treatment columns from a table and
// estimates the unadjusted effect.
func ATEFromTable(tbl *dataset.Table, outcome, treatment string) (*ATEResult, error) {
	y, err := tbl.Numeric(outcome)
	if err != nil {
		return nil, fmt.Errorf("ate: %w", err)
	}
	arm, err := treatmentArm(tbl, treatment)
	if err != nil {
		return nil, fmt.Errorf("ate: %w", err)
	}
	return ATE(y, arm)
}

// ATEOLS estimates the covariate-adjusted effect by regressing the outcome on
// an intercept, the treatment flag, and the covariates. The treatment
// coefficient (the second term) is the adjusted effect.
func ATEOLS(tbl *dataset.Table, outcome, treatment string, covariates ...string) (*regress.OLSResult, error) {
	y, x, terms, err := adjustmentDesign(tbl, outcome, treatment, covariates)
	if err != nil {
		return nil, err
	}
	fit, err := regress.FitOLS(x, y, terms)
	if err != nil {
		return nil, fmt.Errorf("ate: %w", err)
	}
	return fit, nil
}

// ATEProbit estimates the adjusted effect on a binary outcome with a probit
// fit.
func ATEProbit(tbl *dataset.Table, outcome, treatment string, covariates ...string) (*regress.GLMResult, error) {
	y, x, terms, err := adjustmentDesign(tbl, outcome, treatment, covariates)
	if err != nil {
		return nil, err
	}
	fit, err := regress.FitGLM(x, y, regress.BinomialProbit(), terms)
	if err != nil {
		return nil, fmt.Errorf("ate: %w", err)
	}
	return fit, nil
}

func adjustmentDesign(tbl *dataset.Table, outcome, treatment string, covariates []string) ([]float64, *mat.Dense, []string, error) {
	y, err := tbl.Numeric(outcome)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ate: %w", err)
	}
	if _, err := treatmentArm(tbl, treatment); err != nil {
		return nil, nil, nil, fmt.Errorf("ate: %w", err)
	}
	cols := append([]string{treatment}, covariates...)
	x, terms, err := tbl.DesignMatrix(true, cols...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ate: %w", err)
	}
	return y, x, terms, nil
}

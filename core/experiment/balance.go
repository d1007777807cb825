package experiment

import (
	"errors"
	"fmt"

	"github.com/adalundhe/statlab/core/dataset"
)

// BalanceRow compares one covariate across the two arms of an experiment.
type BalanceRow struct {
	Covariate   string
	ControlMean float64
	TreatedMean float64
	Diff        float64
	T           float64
	P           float64
}

// Balance checks whether randomization produced comparable arms: for each
// covariate it reports the per-arm means and a Welch t test of their
// difference.
func Balance(tbl *dataset.Table, treatment string, covariates ...string) ([]BalanceRow, error) {
	if len(covariates) == 0 {
		return nil, errors.New("balance: no covariates named")
	}
	arm, err := treatmentArm(tbl, treatment)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	rows := make([]BalanceRow, 0, len(covariates))
	for _, name := range covariates {
		vals, err := tbl.Numeric(name)
		if err != nil {
			return nil, fmt.Errorf("balance: %w", err)
		}
		treated, control := splitByArm(vals, arm)
		tt, err := WelchTTest(treated, control)
		if err != nil {
			return nil, fmt.Errorf("balance: covariate %q: %w", name, err)
		}
		rows = append(rows, BalanceRow{
			Covariate:   name,
			ControlMean: tt.MeanY,
			TreatedMean: tt.MeanX,
			Diff:        tt.Diff,
			T:           tt.T,
			P:           tt.P,
		})
	}
	return rows, nil
}

// treatmentArm reads a numeric 0/1 column as assignment flags. Both arms must
// be occupied.
func treatmentArm(tbl *dataset.Table, treatment string) ([]bool, error) {
	vals, err := tbl.Numeric(treatment)
	if err != nil {
		return nil, err
	}
	arm := make([]bool, len(vals))
	treated, control := 0, 0
	for i, v := range vals {
		switch v {
		case 0:
			control++
		case 1:
			arm[i] = true
			treated++
		default:
			return nil, fmt.Errorf("treatment column %q must be 0 or 1, found %v at row %d", treatment, v, i+1)
		}
	}
	if treated == 0 || control == 0 {
		return nil, fmt.Errorf("treatment column %q has no variation", treatment)
	}
	return arm, nil
}

func splitByArm(vals []float64, arm []bool) (treated, control []float64) {
	for i, v := range vals {
		if arm[i] {
			treated = append(treated, v)
		} else {
			control = append(control, v)
		}
	}
	return treated, control
}

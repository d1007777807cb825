// Package experiment replicates field-experiment analyses: covariate balance
// checks, treatment effect estimates, and sampling-distribution simulations.
package experiment

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult reports a two-sample t test. Diff is MeanX minus MeanY and P is
// the two-sided p value.
type TTestResult struct {
	MeanX  float64
	MeanY  float64
	Diff   float64
	StdErr float64
	T      float64
	DF     float64
	P      float64
	NX     int
	NY     int
}

// WelchTTest compares the means of two independent samples without assuming
// equal variances, with Welch-Satterthwaite degrees of freedom.
func WelchTTest(x, y []float64) (*TTestResult, error) {
	if len(x) < 2 || len(y) < 2 {
		return nil, errors.New("t test: each sample needs at least two observations")
	}
	mx, vx := stat.MeanVariance(x, nil)
	my, vy := stat.MeanVariance(y, nil)
	nx, ny := float64(len(x)), float64(len(y))

	ax, ay := vx/nx, vy/ny
	se := math.Sqrt(ax + ay)
	if se == 0 {
		return nil, errors.New("t test: samples are essentially constant")
	}
	df := (ax + ay) * (ax + ay) / (ax*ax/(nx-1) + ay*ay/(ny-1))
	return newTTestResult(mx, my, se, df, len(x), len(y)), nil
}

// PooledTTest compares the means of two independent samples under a common
// variance assumption.
func PooledTTest(x, y []float64) (*TTestResult, error) {
	if len(x) < 2 || len(y) < 2 {
		return nil, errors.New("t test: each sample needs at least two observations")
	}
	mx, vx := stat.MeanVariance(x, nil)
	my, vy := stat.MeanVariance(y, nil)
	nx, ny := float64(len(x)), float64(len(y))

	df := nx + ny - 2
	pooled := ((nx-1)*vx + (ny-1)*vy) / df
	se := math.Sqrt(pooled * (1/nx + 1/ny))
	if se == 0 {
		return nil, errors.New("t test: samples are essentially constant")
	}
	return newTTestResult(mx, my, se, df, len(x), len(y)), nil
}

func newTTestResult(mx, my, se, df float64, nx, ny int) *TTestResult {
	t := (mx - my) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return &TTestResult{
		MeanX:  mx,
		MeanY:  my,
		Diff:   mx - my,
		StdErr: se,
		T:      t,
		DF:     df,
		P:      2 * dist.CDF(-math.Abs(t)),
		NX:     nx,
		NY:     ny,
	}
}

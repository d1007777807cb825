package regress

import (
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GLMResult holds an iteratively reweighted least squares fit.
type GLMResult struct {
	Family string
	Link   string

	Terms   []string
	Coeffs  []float64
	StdErrs []float64
	ZStats  []float64
	PValues []float64

	LogLikelihood float64
	Deviance      float64
	Iterations    int
	Converged     bool
	N             int
	DF            int
}

const (
	glmMaxIterations = 100
	glmTolerance     = 1e-8
)

// FitGLM fits a generalized linear model by IRLS. Standard errors come from
// the Fisher information at the final coefficients; z statistics and
// p values use the normal reference.
func FitGLM(x *mat.Dense, y []float64, fam Family, terms []string) (*GLMResult, error) {
	if x == nil {
		return nil, fmt.Errorf("regress: nil design matrix")
	}
	n, p := x.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("regress: %d outcomes for %d rows", len(y), n)
	}
	if n <= p {
		return nil, fmt.Errorf("regress: %d rows for %d coefficients, need more rows", n, p)
	}
	for i, v := range y {
		if !fam.ValidY(v) {
			return nil, fmt.Errorf("regress: outcome %d is %v, want %s", i, v, fam.YWant)
		}
	}
	terms, err := checkTerms(terms, p)
	if err != nil {
		return nil, err
	}

	beta := make([]float64, p)
	xw := mat.NewDense(n, p, nil)
	zw := make([]float64, n)
	zwMat := mat.NewDense(n, 1, zw)

	// reweight fills xw = sqrt(W) X and zw = sqrt(W) z for the working
	// least squares problem at beta.
	reweight := func(beta []float64) {
		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			eta := vek.Dot(beta, row)
			mu := fam.Mean(eta)
			d := fam.DMeanDEta(eta)
			if d < 1e-10 {
				d = 1e-10
			}
			v := fam.Variance(mu)
			if v < 1e-10 {
				v = 1e-10
			}
			sw := d / math.Sqrt(v)
			for j, xij := range row {
				xw.Set(i, j, sw*xij)
			}
			zw[i] = sw * (eta + (y[i]-mu)/d)
		}
	}

	iterations := 0
	converged := false
	next := make([]float64, p)
	for iter := 1; iter <= glmMaxIterations; iter++ {
		iterations = iter
		reweight(beta)

		var qr mat.QR
		qr.Factorize(xw)
		var sol mat.Dense
		if err := qr.SolveTo(&sol, false, zwMat); err != nil {
			return nil, fmt.Errorf("irls step %d: %w", iter, err)
		}

		var maxDelta, maxBeta float64
		for j := 0; j < p; j++ {
			next[j] = sol.At(j, 0)
			if delta := math.Abs(next[j] - beta[j]); delta > maxDelta {
				maxDelta = delta
			}
			if abs := math.Abs(next[j]); abs > maxBeta {
				maxBeta = abs
			}
		}
		copy(beta, next)

		if maxDelta <= glmTolerance*(1+maxBeta) {
			converged = true
			break
		}
	}

	// Fisher information at the final coefficients: (sqrt(W) X)' (sqrt(W) X).
	reweight(beta)
	var fisher mat.Dense
	fisher.Mul(xw.T(), xw)
	var cov mat.Dense
	if err := cov.Inverse(&fisher); err != nil {
		return nil, fmt.Errorf("invert fisher information: %w", err)
	}

	var logLik, deviance float64
	for i := 0; i < n; i++ {
		mu := fam.Mean(vek.Dot(beta, x.RawRowView(i)))
		ll := fam.LogLik(y[i], mu)
		logLik += ll
		deviance += 2 * (fam.SaturatedLogLik(y[i]) - ll)
	}

	norm := distuv.UnitNormal
	stdErrs := make([]float64, p)
	zStats := make([]float64, p)
	pValues := make([]float64, p)
	for j := 0; j < p; j++ {
		stdErrs[j] = math.Sqrt(cov.At(j, j))
		zStats[j] = beta[j] / stdErrs[j]
		pValues[j] = 2 * norm.CDF(-math.Abs(zStats[j]))
	}

	return &GLMResult{
		Family:        fam.Name,
		Link:          fam.Link,
		Terms:         terms,
		Coeffs:        beta,
		StdErrs:       stdErrs,
		ZStats:        zStats,
		PValues:       pValues,
		LogLikelihood: logLik,
		Deviance:      deviance,
		Iterations:    iterations,
		Converged:     converged,
		N:             n,
		DF:            n - p,
	}, nil
}

// Package regress implements the regression fits behind the reports: an
// explicit Poisson log-likelihood with gradient-free maximization, ordinary
// least squares via QR, and iteratively reweighted least squares for the
// GLM families the analyses use (Poisson log and binomial probit).
package regress

import (
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// PoissonLogLikelihood evaluates the Poisson log-likelihood at beta under a
// log link: with eta_i the i-th row of X beta, the sum of
// y_i*eta_i - exp(eta_i) - ln Gamma(y_i + 1).
func PoissonLogLikelihood(x *mat.Dense, y []float64, beta []float64) float64 {
	n, p := x.Dims()
	if len(y) != n || len(beta) != p {
		return math.Inf(-1)
	}

	var ll float64
	for i := 0; i < n; i++ {
		eta := vek.Dot(beta, x.RawRowView(i))
		lg, _ := math.Lgamma(y[i] + 1)
		ll += y[i]*eta - math.Exp(eta) - lg
	}
	return ll
}

// PoissonMLEResult holds a gradient-free Poisson maximum-likelihood fit.
type PoissonMLEResult struct {
	Terms         []string
	Coeffs        []float64
	LogLikelihood float64
	Evaluations   int
	Status        string
}

// FitPoissonMLE maximizes the Poisson log-likelihood with Nelder-Mead. A nil
// initial vector starts from zero. Outcomes must be nonnegative counts.
func FitPoissonMLE(x *mat.Dense, y []float64, terms []string, initial []float64) (*PoissonMLEResult, error) {
	if x == nil {
		return nil, fmt.Errorf("regress: nil design matrix")
	}
	n, p := x.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("regress: %d outcomes for %d rows", len(y), n)
	}
	for i, v := range y {
		if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("regress: outcome %d is %v, want a nonnegative count", i, v)
		}
	}
	terms, err := checkTerms(terms, p)
	if err != nil {
		return nil, err
	}
	if initial == nil {
		initial = make([]float64, p)
	} else if len(initial) != p {
		return nil, fmt.Errorf("regress: initial vector has %d coefficients, want %d", len(initial), p)
	}

	problem := optimize.Problem{
		Func: func(beta []float64) float64 { return -PoissonLogLikelihood(x, y, beta) },
	}
	start := append([]float64(nil), initial...)

	result, err := optimize.Minimize(problem, start, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("maximize poisson log-likelihood: %w", err)
	}

	return &PoissonMLEResult{
		Terms:         terms,
		Coeffs:        result.X,
		LogLikelihood: -result.F,
		Evaluations:   result.Stats.FuncEvaluations,
		Status:        result.Status.String(),
	}, nil
}

// checkTerms fills in or validates coefficient names for a p-column design.
func checkTerms(terms []string, p int) ([]string, error) {
	if terms == nil {
		terms = make([]string, p)
		for j := range terms {
			terms[j] = fmt.Sprintf("x%d", j)
		}
		return terms, nil
	}
	if len(terms) != p {
		return nil, fmt.Errorf("regress: %d term names for %d columns", len(terms), p)
	}
	return terms, nil
}

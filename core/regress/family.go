package regress

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Family bundles the pieces IRLS needs for one GLM variant: the inverse
// link, its derivative, the variance function, and per-observation
// log-likelihood terms.
type Family struct {
	Name string
	Link string

	// Mean maps the linear predictor to the conditional mean (inverse link).
	Mean func(eta float64) float64

	// DMeanDEta is the derivative of Mean.
	DMeanDEta func(eta float64) float64

	// Variance is Var(Y) as a function of the mean.
	Variance func(mu float64) float64

	// LogLik is one observation's log-likelihood at mean mu.
	LogLik func(y, mu float64) float64

	// SaturatedLogLik is one observation's log-likelihood in the saturated
	// model, used for the deviance.
	SaturatedLogLik func(y float64) float64

	// ValidY reports whether an outcome is admissible.
	ValidY func(y float64) bool

	// YWant describes admissible outcomes in error messages.
	YWant string
}

// PoissonLog is the Poisson family with a log link.
func PoissonLog() Family {
	return Family{
		Name:      "poisson",
		Link:      "log",
		Mean:      math.Exp,
		DMeanDEta: math.Exp,
		Variance:  func(mu float64) float64 { return mu },
		LogLik: func(y, mu float64) float64 {
			lg, _ := math.Lgamma(y + 1)
			return y*math.Log(mu) - mu - lg
		},
		SaturatedLogLik: func(y float64) float64 {
			if y == 0 {
				return 0
			}
			lg, _ := math.Lgamma(y + 1)
			return y*math.Log(y) - y - lg
		},
		ValidY: func(y float64) bool { return y >= 0 && y == math.Trunc(y) && !math.IsInf(y, 0) },
		YWant:  "a nonnegative count",
	}
}

// BinomialProbit is the Bernoulli family with a probit link.
func BinomialProbit() Family {
	norm := distuv.UnitNormal
	return Family{
		Name:      "binomial",
		Link:      "probit",
		Mean:      norm.CDF,
		DMeanDEta: norm.Prob,
		Variance:  func(mu float64) float64 { return mu * (1 - mu) },
		LogLik: func(y, mu float64) float64 {
			mu = clampProb(mu)
			if y == 1 {
				return math.Log(mu)
			}
			return math.Log(1 - mu)
		},
		SaturatedLogLik: func(y float64) float64 { return 0 },
		ValidY:          func(y float64) bool { return y == 0 || y == 1 },
		YWant:           "0 or 1",
	}
}

func clampProb(p float64) float64 {
	const eps = 1e-12
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}

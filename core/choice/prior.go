package choice

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adalundhe/statlab/core/mcmc"
)

// Prior places an independent zero-mean Gaussian on every coefficient, with
// a distinct standard deviation for the price coefficient.
type Prior struct {
	// SD is the prior standard deviation for every coefficient except price.
	SD float64

	// PriceSD is the prior standard deviation for the price coefficient.
	PriceSD float64

	// PriceIndex is the coefficient index of price, or -1 when no price
	// coefficient is present.
	PriceIndex int
}

// DefaultPrior returns a weakly informative prior: N(0, 5) on every
// coefficient and N(0, 1) on price.
func DefaultPrior(priceIndex int) Prior {
	return Prior{SD: 5, PriceSD: 1, PriceIndex: priceIndex}
}

func (p Prior) validate(dim int) error {
	if p.SD <= 0 {
		return fmt.Errorf("choice: prior sd %v, want > 0", p.SD)
	}
	if p.PriceSD <= 0 {
		return fmt.Errorf("choice: price prior sd %v, want > 0", p.PriceSD)
	}
	if p.PriceIndex < -1 || p.PriceIndex >= dim {
		return fmt.Errorf("choice: price index %d out of range for %d coefficients", p.PriceIndex, dim)
	}
	return nil
}

// LogDensity evaluates the log prior density at beta.
func (p Prior) LogDensity(beta []float64) float64 {
	coef := distuv.Normal{Mu: 0, Sigma: p.SD}
	price := distuv.Normal{Mu: 0, Sigma: p.PriceSD}

	var lp float64
	for j, b := range beta {
		if j == p.PriceIndex {
			lp += price.LogProb(b)
		} else {
			lp += coef.LogProb(b)
		}
	}
	return lp
}

// Posterior combines the choice log-likelihood with the prior log density.
// It implements mcmc.LogPosterior; the sampler sees only the scalar score.
type Posterior struct {
	data  *Data
	prior Prior
}

// NewPosterior validates the prior against the data dimension.
func NewPosterior(data *Data, prior Prior) (*Posterior, error) {
	if data == nil {
		return nil, fmt.Errorf("choice: nil data")
	}
	if err := prior.validate(data.Dim()); err != nil {
		return nil, err
	}
	return &Posterior{data: data, prior: prior}, nil
}

// LogProb returns log-likelihood + log-prior at beta.
func (p *Posterior) LogProb(beta []float64) float64 {
	return p.data.LogLikelihood(beta) + p.prior.LogDensity(beta)
}

var _ mcmc.LogPosterior = (*Posterior)(nil)

package mcmc

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Chain is the recorded draw history of a sampling run. Draws are append-only
// while the sampler runs and must be treated as read-only afterwards.
type Chain struct {
	// Draws holds one parameter vector per post-burn-in iteration.
	Draws [][]float64

	// Dim is the parameter vector length.
	Dim int

	// Accepted counts accepted candidates across all Steps iterations,
	// burn-in included.
	Accepted int

	// Steps and BurnIn echo the configuration that produced the chain.
	Steps  int
	BurnIn int
}

// Len returns the number of recorded draws (Steps - BurnIn).
func (c *Chain) Len() int { return len(c.Draws) }

// AcceptanceRate returns the fraction of iterations whose candidate was
// accepted, over the full run including burn-in.
func (c *Chain) AcceptanceRate() float64 {
	if c.Steps == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(c.Steps)
}

// Param extracts the draw sequence for a single coordinate.
func (c *Chain) Param(j int) []float64 {
	out := make([]float64, len(c.Draws))
	for i, draw := range c.Draws {
		out[i] = draw[j]
	}
	return out
}

// Mean returns the per-coordinate posterior mean.
func (c *Chain) Mean() []float64 {
	out := make([]float64, c.Dim)
	for j := 0; j < c.Dim; j++ {
		out[j] = stat.Mean(c.Param(j), nil)
	}
	return out
}

// StdDev returns the per-coordinate posterior standard deviation.
func (c *Chain) StdDev() []float64 {
	out := make([]float64, c.Dim)
	for j := 0; j < c.Dim; j++ {
		out[j] = stat.StdDev(c.Param(j), nil)
	}
	return out
}

// Quantile returns the per-coordinate empirical quantile at probability p.
func (c *Chain) Quantile(p float64) []float64 {
	out := make([]float64, c.Dim)
	for j := 0; j < c.Dim; j++ {
		xs := c.Param(j)
		sort.Float64s(xs)
		out[j] = stat.Quantile(p, stat.Empirical, xs, nil)
	}
	return out
}

// CredibleInterval returns per-coordinate equal-tailed credible interval
// bounds at the given level (for example 0.95).
func (c *Chain) CredibleInterval(level float64) (lower, upper []float64) {
	tail := (1 - level) / 2
	return c.Quantile(tail), c.Quantile(1 - tail)
}

// ParamSummary describes the marginal posterior of one coefficient.
type ParamSummary struct {
	Name   string
	Mean   float64
	StdDev float64
	Lower  float64
	Upper  float64
}

// Summary computes the marginal posterior summary for every coordinate.
// names must have one entry per coordinate; level is the credible interval
// mass (for example 0.95).
func (c *Chain) Summary(names []string, level float64) ([]ParamSummary, error) {
	if len(names) != c.Dim {
		return nil, fmt.Errorf("mcmc: %d names for %d parameters", len(names), c.Dim)
	}
	if level <= 0 || level >= 1 {
		return nil, fmt.Errorf("mcmc: credible level must be in (0,1), got %v", level)
	}

	mean := c.Mean()
	sd := c.StdDev()
	lower, upper := c.CredibleInterval(level)

	out := make([]ParamSummary, c.Dim)
	for j := range out {
		out[j] = ParamSummary{
			Name:   names[j],
			Mean:   mean[j],
			StdDev: sd[j],
			Lower:  lower[j],
			Upper:  upper[j],
		}
	}
	return out, nil
}

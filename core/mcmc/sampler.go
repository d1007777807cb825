// Package mcmc implements random-walk Metropolis-Hastings sampling over an
// arbitrary log-posterior density.
//
// The sampler is deliberately minimal: it knows nothing about the model it is
// fitting beyond a single scoring method, performs a fixed number of
// sequential iterations, and touches no external resources while running.
// All randomness flows from an explicitly seeded generator, so a fixed seed
// reproduces the draw sequence bit for bit.
package mcmc

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// LogPosterior scores a parameter vector with the log of its (unnormalized)
// posterior density. Implementations return math.Inf(-1) for parameter
// regions with zero posterior mass; the sampler rejects such candidates
// rather than erroring.
type LogPosterior interface {
	LogProb(params []float64) float64
}

// LogPosteriorFunc adapts a plain function to the LogPosterior interface.
type LogPosteriorFunc func(params []float64) float64

// LogProb implements LogPosterior.
func (f LogPosteriorFunc) LogProb(params []float64) float64 { return f(params) }

// seedStream separates the proposal stream from other generators seeded with
// the same user-visible seed.
const seedStream = 0x9E3779B97F4A7C15

// Config controls a sampling run.
type Config struct {
	// Steps is the total number of iterations, including burn-in.
	Steps int

	// BurnIn is the number of leading iterations discarded from the
	// returned chain. Must be smaller than Steps.
	BurnIn int

	// ProposalScale is the standard deviation of the zero-mean Gaussian
	// perturbation added independently to every coordinate when proposing
	// a candidate.
	ProposalScale float64

	// Seed fixes the pseudo-random stream for reproducible chains.
	Seed uint64
}

// Validate reports whether the configuration describes a runnable chain.
func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("mcmc: steps must be positive, got %d", c.Steps)
	}
	if c.BurnIn < 0 {
		return fmt.Errorf("mcmc: burn-in must be non-negative, got %d", c.BurnIn)
	}
	if c.BurnIn >= c.Steps {
		return fmt.Errorf("mcmc: burn-in %d must be smaller than steps %d", c.BurnIn, c.Steps)
	}
	if c.ProposalScale < 0 || math.IsNaN(c.ProposalScale) {
		return fmt.Errorf("mcmc: proposal scale must be non-negative, got %v", c.ProposalScale)
	}
	return nil
}

// Sampler draws correlated samples from a log-posterior via random-walk
// Metropolis-Hastings.
type Sampler struct {
	target LogPosterior
	cfg    Config
	rng    *rand.Rand
}

// New returns a Sampler for the given target density.
func New(target LogPosterior, cfg Config) (*Sampler, error) {
	if target == nil {
		return nil, fmt.Errorf("mcmc: target log-posterior is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{
		target: target,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedStream)),
	}, nil
}

// Run executes the chain from the given initial parameter vector and returns
// the post-burn-in draw history. The initial vector is not mutated.
//
// Each iteration proposes candidate = current + N(0, ProposalScale) per
// coordinate and accepts it when a uniform draw in [0,1) falls below the raw
// ratio exp(candidate - current) of log-posteriors. The ratio may exceed 1,
// in which case the comparison always succeeds; this is equivalent to the
// textbook min(1, ratio) rule and is kept in its raw form deliberately.
// The current vector is recorded as the iteration's draw whether or not the
// candidate was accepted. The loop always runs to completion.
func (s *Sampler) Run(initial []float64) (*Chain, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("mcmc: initial parameter vector is empty")
	}

	dim := len(initial)
	current := make([]float64, dim)
	copy(current, initial)
	currentLP := s.target.LogProb(current)

	chain := &Chain{
		Draws:  make([][]float64, 0, s.cfg.Steps-s.cfg.BurnIn),
		Dim:    dim,
		Steps:  s.cfg.Steps,
		BurnIn: s.cfg.BurnIn,
	}

	candidate := make([]float64, dim)
	for i := 0; i < s.cfg.Steps; i++ {
		for j := range candidate {
			candidate[j] = current[j] + s.rng.NormFloat64()*s.cfg.ProposalScale
		}

		candidateLP := s.target.LogProb(candidate)
		if s.accept(candidateLP, currentLP) {
			copy(current, candidate)
			currentLP = candidateLP
			chain.Accepted++
		}

		if i >= s.cfg.BurnIn {
			draw := make([]float64, dim)
			copy(draw, current)
			chain.Draws = append(chain.Draws, draw)
		}
	}

	return chain, nil
}

// accept applies the Metropolis rule. A candidate with log-posterior -Inf has
// acceptance ratio zero and is always rejected; math.Exp saturates on
// overflow, so an improvement large enough to overflow always accepts.
func (s *Sampler) accept(candidateLP, currentLP float64) bool {
	if math.IsInf(candidateLP, -1) {
		return false
	}
	return s.rng.Float64() < math.Exp(candidateLP-currentLP)
}

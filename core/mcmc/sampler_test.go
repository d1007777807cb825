package mcmc

import (
	"math"
	"testing"
)

// standardNormalAt returns a log-density with independent N(mu, 1) coordinates.
func standardNormalAt(mu float64) LogPosteriorFunc {
	return func(params []float64) float64 {
		var lp float64
		for _, v := range params {
			d := v - mu
			lp += -0.5 * d * d
		}
		return lp
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Steps: 100, BurnIn: 10, ProposalScale: 0.5}, false},
		{"zero_burnin", Config{Steps: 100, BurnIn: 0, ProposalScale: 0.5}, false},
		{"zero_scale", Config{Steps: 100, BurnIn: 10, ProposalScale: 0}, false},
		{"zero_steps", Config{Steps: 0, BurnIn: 0, ProposalScale: 0.5}, true},
		{"negative_steps", Config{Steps: -5, BurnIn: 0, ProposalScale: 0.5}, true},
		{"negative_burnin", Config{Steps: 100, BurnIn: -1, ProposalScale: 0.5}, true},
		{"burnin_equals_steps", Config{Steps: 100, BurnIn: 100, ProposalScale: 0.5}, true},
		{"burnin_exceeds_steps", Config{Steps: 100, BurnIn: 200, ProposalScale: 0.5}, true},
		{"negative_scale", Config{Steps: 100, BurnIn: 10, ProposalScale: -0.1}, true},
		{"nan_scale", Config{Steps: 100, BurnIn: 10, ProposalScale: math.NaN()}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("Validate(%+v) = nil, want error", tc.cfg)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate(%+v) = %v, want nil", tc.cfg, err)
			}
		})
	}
}

func TestNewRejectsNilTarget(t *testing.T) {
	if _, err := New(nil, Config{Steps: 10, ProposalScale: 1}); err == nil {
		t.Fatal("New(nil, ...) should fail")
	}
}

func TestRunRejectsEmptyInitial(t *testing.T) {
	s, err := New(standardNormalAt(0), Config{Steps: 10, ProposalScale: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(nil); err == nil {
		t.Fatal("Run(nil) should fail")
	}
}

// TestReproducibleDraws verifies that a fixed seed yields a bit-identical
// draw sequence across independent runs.
func TestReproducibleDraws(t *testing.T) {
	cfg := Config{Steps: 500, BurnIn: 50, ProposalScale: 0.7, Seed: 42}

	run := func() *Chain {
		s, err := New(standardNormalAt(1.5), cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		chain, err := s.Run([]float64{0, 0, 0})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return chain
	}

	a, b := run(), run()
	if a.Len() != b.Len() {
		t.Fatalf("chain lengths differ: %d vs %d", a.Len(), b.Len())
	}
	if a.Accepted != b.Accepted {
		t.Fatalf("accept counts differ: %d vs %d", a.Accepted, b.Accepted)
	}
	for i := range a.Draws {
		for j := range a.Draws[i] {
			if a.Draws[i][j] != b.Draws[i][j] {
				t.Fatalf("draw %d coordinate %d differs: %v vs %v",
					i, j, a.Draws[i][j], b.Draws[i][j])
			}
		}
	}
}

func TestSeedChangesDraws(t *testing.T) {
	run := func(seed uint64) *Chain {
		s, err := New(standardNormalAt(0), Config{Steps: 200, BurnIn: 0, ProposalScale: 0.7, Seed: seed})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		chain, err := s.Run([]float64{0})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return chain
	}

	a, b := run(1), run(2)
	same := true
	for i := range a.Draws {
		if a.Draws[i][0] != b.Draws[i][0] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical chains")
	}
}

// TestChainLength verifies len(draws) == steps - burnIn.
func TestChainLength(t *testing.T) {
	cases := []struct {
		steps, burnIn int
	}{
		{1, 0},
		{100, 0},
		{100, 99},
		{1000, 250},
	}

	for _, tc := range cases {
		s, err := New(standardNormalAt(0), Config{Steps: tc.steps, BurnIn: tc.burnIn, ProposalScale: 0.3, Seed: 7})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		chain, err := s.Run([]float64{0, 0})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if chain.Len() != tc.steps-tc.burnIn {
			t.Errorf("steps=%d burnIn=%d: len=%d, want %d",
				tc.steps, tc.burnIn, chain.Len(), tc.steps-tc.burnIn)
		}
	}
}

// TestZeroProposalScale verifies the degenerate random walk: with scale zero
// every candidate equals the current point, so every candidate is accepted
// and the chain never moves off the initial vector.
func TestZeroProposalScale(t *testing.T) {
	initial := []float64{1.25, -3.5}
	s, err := New(standardNormalAt(0), Config{Steps: 300, BurnIn: 30, ProposalScale: 0, Seed: 11})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chain, err := s.Run(initial)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rate := chain.AcceptanceRate(); rate != 1.0 {
		t.Errorf("acceptance rate = %v, want 1.0", rate)
	}
	for i, draw := range chain.Draws {
		for j := range draw {
			if draw[j] != initial[j] {
				t.Fatalf("draw %d = %v, want initial %v", i, draw, initial)
			}
		}
	}
}

// TestInfiniteTargetNeverAccepts verifies that a target returning -Inf
// everywhere except at the exact initial point rejects every candidate and
// leaves the chain pinned at the start.
func TestInfiniteTargetNeverAccepts(t *testing.T) {
	initial := []float64{0.5, 0.5}
	target := LogPosteriorFunc(func(params []float64) float64 {
		for i, v := range params {
			if v != initial[i] {
				return math.Inf(-1)
			}
		}
		return 0
	})

	s, err := New(target, Config{Steps: 400, BurnIn: 40, ProposalScale: 0.5, Seed: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chain, err := s.Run(initial)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if chain.Accepted != 0 {
		t.Errorf("accepted = %d, want 0", chain.Accepted)
	}
	for i, draw := range chain.Draws {
		for j := range draw {
			if draw[j] != initial[j] {
				t.Fatalf("draw %d = %v, want initial %v", i, draw, initial)
			}
		}
	}
}

// TestEscapesInvalidStart verifies that a finite candidate proposed from a
// -Inf starting point is always accepted: the acceptance ratio saturates to
// +Inf rather than raising.
func TestEscapesInvalidStart(t *testing.T) {
	target := LogPosteriorFunc(func(params []float64) float64 {
		if params[0] < 0 {
			return math.Inf(-1)
		}
		d := params[0] - 1
		return -0.5 * d * d
	})

	s, err := New(target, Config{Steps: 2000, BurnIn: 0, ProposalScale: 0.8, Seed: 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chain, err := s.Run([]float64{-2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if chain.Accepted == 0 {
		t.Fatal("chain never escaped the invalid starting region")
	}
	last := chain.Draws[chain.Len()-1][0]
	if last < 0 {
		t.Errorf("chain ended in invalid region: %v", last)
	}
}

// TestRecoversNormalMean runs the sampler against a known unimodal target and
// checks the posterior mean.
func TestRecoversNormalMean(t *testing.T) {
	const mu = 3.0
	s, err := New(standardNormalAt(mu), Config{Steps: 20000, BurnIn: 2000, ProposalScale: 1.0, Seed: 99})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chain, err := s.Run([]float64{0})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mean := chain.Mean()[0]
	if math.Abs(mean-mu) > 0.15 {
		t.Errorf("posterior mean = %v, want %v +/- 0.15", mean, mu)
	}

	rate := chain.AcceptanceRate()
	if rate <= 0.05 || rate >= 0.95 {
		t.Errorf("acceptance rate %v outside sane range for this target", rate)
	}

	if !s.accept(2, 1) {
		t.Error("improvement with ratio > 1 must always accept")
	}
}

func TestInitialNotMutated(t *testing.T) {
	initial := []float64{1, 2, 3}
	want := []float64{1, 2, 3}

	s, err := New(standardNormalAt(0), Config{Steps: 100, BurnIn: 0, ProposalScale: 1, Seed: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(initial); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := range initial {
		if initial[i] != want[i] {
			t.Fatalf("initial vector mutated: %v", initial)
		}
	}
}

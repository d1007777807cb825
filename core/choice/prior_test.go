package choice

import (
	"math"
	"testing"
)

func normalLogPDF(x, sd float64) float64 {
	return -0.5*math.Log(2*math.Pi) - math.Log(sd) - x*x/(2*sd*sd)
}

func TestPriorLogDensity(t *testing.T) {
	p := Prior{SD: 5, PriceSD: 1, PriceIndex: 1}
	beta := []float64{1, -2}

	want := normalLogPDF(1, 5) + normalLogPDF(-2, 1)
	if got := p.LogDensity(beta); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogDensity = %v, want %v", got, want)
	}
}

func TestPriorWithoutPriceCoefficient(t *testing.T) {
	p := Prior{SD: 2, PriceSD: 1, PriceIndex: -1}
	beta := []float64{0.5, -0.5}

	want := normalLogPDF(0.5, 2) + normalLogPDF(-0.5, 2)
	if got := p.LogDensity(beta); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogDensity = %v, want %v", got, want)
	}
}

func TestNewPosteriorValidation(t *testing.T) {
	d := twoGroupData(t)

	cases := []struct {
		name  string
		prior Prior
	}{
		{"zero_sd", Prior{SD: 0, PriceSD: 1, PriceIndex: -1}},
		{"negative_price_sd", Prior{SD: 1, PriceSD: -1, PriceIndex: -1}},
		{"price_index_out_of_range", Prior{SD: 1, PriceSD: 1, PriceIndex: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPosterior(d, tc.prior); err == nil {
				t.Fatal("NewPosterior should fail")
			}
		})
	}

	if _, err := NewPosterior(nil, DefaultPrior(-1)); err == nil {
		t.Fatal("NewPosterior(nil, ...) should fail")
	}
}

func TestPosteriorCombinesLikelihoodAndPrior(t *testing.T) {
	d := twoGroupData(t)
	prior := Prior{SD: 5, PriceSD: 1, PriceIndex: 0}

	post, err := NewPosterior(d, prior)
	if err != nil {
		t.Fatalf("NewPosterior failed: %v", err)
	}

	beta := []float64{0.7}
	want := d.LogLikelihood(beta) + prior.LogDensity(beta)
	if got := post.LogProb(beta); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogProb = %v, want %v", got, want)
	}
}

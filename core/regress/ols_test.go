package regress

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFitOLSExactLine(t *testing.T) {
	n := 10
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		xi := float64(i)
		x.Set(i, 0, 1)
		x.Set(i, 1, xi)
		y[i] = 2 + 3*xi
	}

	fit, err := FitOLS(x, y, []string{"intercept", "x"})
	if err != nil {
		t.Fatalf("FitOLS failed: %v", err)
	}

	if math.Abs(fit.Coeffs[0]-2) > 1e-9 || math.Abs(fit.Coeffs[1]-3) > 1e-9 {
		t.Errorf("coefficients = %v, want [2 3]", fit.Coeffs)
	}
	if fit.R2 < 1-1e-12 {
		t.Errorf("R2 = %v, want 1 on a noiseless line", fit.R2)
	}
	if fit.N != n || fit.DF != n-2 {
		t.Errorf("N=%d DF=%d, want %d and %d", fit.N, fit.DF, n, n-2)
	}
}

func TestFitOLSNoisyRecovery(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 21))
	n := 100
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		xi := rng.Float64()
		x.Set(i, 0, 1)
		x.Set(i, 1, xi)
		y[i] = 1 + 2*xi + rng.NormFloat64()*0.5
	}

	fit, err := FitOLS(x, y, nil)
	if err != nil {
		t.Fatalf("FitOLS failed: %v", err)
	}

	want := []float64{1, 2}
	for j := range want {
		if fit.StdErrs[j] <= 0 {
			t.Fatalf("standard error %d = %v, want > 0", j, fit.StdErrs[j])
		}
		if math.Abs(fit.Coeffs[j]-want[j]) > 5*fit.StdErrs[j] {
			t.Errorf("coefficient %d = %v (se %v), want near %v",
				j, fit.Coeffs[j], fit.StdErrs[j], want[j])
		}
		if fit.PValues[j] < 0 || fit.PValues[j] > 1 {
			t.Errorf("p value %d = %v outside [0, 1]", j, fit.PValues[j])
		}
	}

	// The slope is strong relative to the noise, so it should be
	// overwhelmingly significant.
	if fit.PValues[1] > 1e-4 {
		t.Errorf("slope p value = %v, want < 1e-4", fit.PValues[1])
	}
	if fit.R2 <= 0 || fit.R2 >= 1 {
		t.Errorf("R2 = %v, want in (0, 1)", fit.R2)
	}
	if fit.AdjR2 >= fit.R2 {
		t.Errorf("adjusted R2 %v not below R2 %v", fit.AdjR2, fit.R2)
	}
	if math.Abs(fit.Sigma-0.5) > 0.15 {
		t.Errorf("residual sigma = %v, want near 0.5", fit.Sigma)
	}
}

func TestFitOLSValidation(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 0, 1, 1})

	if _, err := FitOLS(nil, []float64{1}, nil); err == nil {
		t.Error("nil design should fail")
	}
	if _, err := FitOLS(x, []float64{1}, nil); err == nil {
		t.Error("outcome length mismatch should fail")
	}
	if _, err := FitOLS(x, []float64{1, 2}, nil); err == nil {
		t.Error("n <= p should fail")
	}
	if _, err := FitOLS(mat.NewDense(3, 1, []float64{1, 1, 1}), []float64{1, 2, 3}, []string{"a", "b"}); err == nil {
		t.Error("term count mismatch should fail")
	}
}

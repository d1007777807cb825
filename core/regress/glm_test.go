package regress

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func simulatePoisson(n int, b0, b1 float64, seed uint64) (*mat.Dense, []float64) {
	src := rand.NewPCG(seed, seed+1)
	rng := rand.New(src)

	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		xi := rng.Float64() * 2
		x.Set(i, 0, 1)
		x.Set(i, 1, xi)
		y[i] = distuv.Poisson{Lambda: math.Exp(b0 + b1*xi), Src: src}.Rand()
	}
	return x, y
}

func TestFitGLMPoissonMatchesHandRolledMLE(t *testing.T) {
	x, y := simulatePoisson(200, 0.5, 0.7, 31)

	glm, err := FitGLM(x, y, PoissonLog(), []string{"intercept", "x"})
	if err != nil {
		t.Fatalf("FitGLM failed: %v", err)
	}
	if !glm.Converged {
		t.Fatalf("IRLS did not converge in %d iterations", glm.Iterations)
	}

	mle, err := FitPoissonMLE(x, y, nil, nil)
	if err != nil {
		t.Fatalf("FitPoissonMLE failed: %v", err)
	}

	// Both maximize the same likelihood, so the estimates must agree.
	for j := range glm.Coeffs {
		if math.Abs(glm.Coeffs[j]-mle.Coeffs[j]) > 1e-3 {
			t.Errorf("coefficient %d: IRLS %v vs Nelder-Mead %v", j, glm.Coeffs[j], mle.Coeffs[j])
		}
	}
	if math.Abs(glm.LogLikelihood-mle.LogLikelihood) > 1e-4 {
		t.Errorf("log-likelihoods differ: %v vs %v", glm.LogLikelihood, mle.LogLikelihood)
	}

	want := []float64{0.5, 0.7}
	for j := range want {
		if math.Abs(glm.Coeffs[j]-want[j]) > 0.3 {
			t.Errorf("coefficient %d = %v, want near %v", j, glm.Coeffs[j], want[j])
		}
	}
	if glm.Deviance <= 0 {
		t.Errorf("deviance = %v, want > 0", glm.Deviance)
	}
}

func TestFitGLMProbitRecovery(t *testing.T) {
	src := rand.NewPCG(37, 38)
	rng := rand.New(src)

	n := 400
	b0, b1 := -0.3, 0.9
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		xi := rng.Float64()*4 - 2
		x.Set(i, 0, 1)
		x.Set(i, 1, xi)
		p := distuv.UnitNormal.CDF(b0 + b1*xi)
		y[i] = distuv.Bernoulli{P: p, Src: src}.Rand()
	}

	fit, err := FitGLM(x, y, BinomialProbit(), []string{"intercept", "x"})
	if err != nil {
		t.Fatalf("FitGLM failed: %v", err)
	}
	if !fit.Converged {
		t.Fatalf("IRLS did not converge in %d iterations", fit.Iterations)
	}

	if math.Abs(fit.Coeffs[0]-b0) > 0.3 {
		t.Errorf("intercept = %v, want near %v", fit.Coeffs[0], b0)
	}
	if math.Abs(fit.Coeffs[1]-b1) > 0.3 {
		t.Errorf("slope = %v, want near %v", fit.Coeffs[1], b1)
	}
	if fit.PValues[1] > 1e-4 {
		t.Errorf("slope p value = %v, want < 1e-4", fit.PValues[1])
	}
	if fit.StdErrs[1] <= 0 {
		t.Errorf("slope standard error = %v, want > 0", fit.StdErrs[1])
	}
}

func TestFitGLMValidation(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 1, 1})

	if _, err := FitGLM(x, []float64{0, 1, 2}, BinomialProbit(), nil); err == nil {
		t.Error("probit outcome outside {0,1} should fail")
	}
	if _, err := FitGLM(x, []float64{0, -1, 2}, PoissonLog(), nil); err == nil {
		t.Error("negative count should fail")
	}
	if _, err := FitGLM(x, []float64{0, 1.5, 2}, PoissonLog(), nil); err == nil {
		t.Error("fractional count should fail")
	}
	if _, err := FitGLM(nil, []float64{1}, PoissonLog(), nil); err == nil {
		t.Error("nil design should fail")
	}
	if _, err := FitGLM(mat.NewDense(1, 1, []float64{1}), []float64{1}, PoissonLog(), nil); err == nil {
		t.Error("n <= p should fail")
	}
}

func TestFamilies(t *testing.T) {
	pois := PoissonLog()
	if got := pois.Mean(0); got != 1 {
		t.Errorf("poisson Mean(0) = %v, want 1", got)
	}
	if got := pois.Variance(3); got != 3 {
		t.Errorf("poisson Variance(3) = %v, want 3", got)
	}
	if !pois.ValidY(4) || pois.ValidY(4.5) || pois.ValidY(-1) {
		t.Error("poisson ValidY misclassifies outcomes")
	}

	probit := BinomialProbit()
	if got := probit.Mean(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("probit Mean(0) = %v, want 0.5", got)
	}
	if got := probit.Variance(0.5); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("probit Variance(0.5) = %v, want 0.25", got)
	}
	if !probit.ValidY(0) || !probit.ValidY(1) || probit.ValidY(0.5) {
		t.Error("probit ValidY misclassifies outcomes")
	}

	// Log-likelihood at the observed outcome is finite even at extreme means.
	if ll := probit.LogLik(1, 1); math.IsInf(ll, 0) || math.IsNaN(ll) {
		t.Errorf("probit LogLik(1, 1) = %v, want finite", ll)
	}
}

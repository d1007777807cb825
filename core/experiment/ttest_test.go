package experiment

import (
	"math"
	"testing"
)

func TestWelchTTestHandComputed(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}

	got, err := WelchTTest(x, y)
	if err != nil {
		t.Fatalf("WelchTTest failed: %v", err)
	}

	// Means 2.5 and 5, variances 5/3 and 20/3. Equal arm sizes make the
	// Welch standard error sqrt(25/12), so t = -sqrt(3), and the
	// Welch-Satterthwaite df is exactly 75/17.
	if got.MeanX != 2.5 || got.MeanY != 5 {
		t.Errorf("means = %v, %v, want 2.5, 5", got.MeanX, got.MeanY)
	}
	if math.Abs(got.Diff+2.5) > 1e-12 {
		t.Errorf("Diff = %v, want -2.5", got.Diff)
	}
	if math.Abs(got.StdErr-math.Sqrt(25.0/12.0)) > 1e-12 {
		t.Errorf("StdErr = %v, want %v", got.StdErr, math.Sqrt(25.0/12.0))
	}
	if math.Abs(got.T+math.Sqrt(3)) > 1e-12 {
		t.Errorf("T = %v, want %v", got.T, -math.Sqrt(3))
	}
	if math.Abs(got.DF-75.0/17.0) > 1e-9 {
		t.Errorf("DF = %v, want %v", got.DF, 75.0/17.0)
	}
	if got.P <= 0.10 || got.P >= 0.20 {
		t.Errorf("P = %v, want in (0.10, 0.20)", got.P)
	}
	if got.NX != 4 || got.NY != 4 {
		t.Errorf("NX, NY = %d, %d, want 4, 4", got.NX, got.NY)
	}

	// Swapping the samples flips the sign but not the p value.
	flipped, err := WelchTTest(y, x)
	if err != nil {
		t.Fatalf("WelchTTest failed: %v", err)
	}
	if math.Abs(flipped.T-math.Sqrt(3)) > 1e-12 {
		t.Errorf("flipped T = %v, want %v", flipped.T, math.Sqrt(3))
	}
	if math.Abs(flipped.P-got.P) > 1e-12 {
		t.Errorf("flipped P = %v, want %v", flipped.P, got.P)
	}
}

func TestPooledTTestHandComputed(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}

	got, err := PooledTTest(x, y)
	if err != nil {
		t.Fatalf("PooledTTest failed: %v", err)
	}

	// Pooled variance 25/6 gives t = -sqrt(3) on 6 degrees of freedom.
	if math.Abs(got.T+math.Sqrt(3)) > 1e-12 {
		t.Errorf("T = %v, want %v", got.T, -math.Sqrt(3))
	}
	if got.DF != 6 {
		t.Errorf("DF = %v, want 6", got.DF)
	}
	if got.P <= 0.10 || got.P >= 0.20 {
		t.Errorf("P = %v, want in (0.10, 0.20)", got.P)
	}
}

func TestTTestIdenticalSamples(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	got, err := WelchTTest(x, x)
	if err != nil {
		t.Fatalf("WelchTTest failed: %v", err)
	}
	if got.T != 0 {
		t.Errorf("T = %v, want 0", got.T)
	}
	if math.Abs(got.P-1) > 1e-12 {
		t.Errorf("P = %v, want 1", got.P)
	}
}

func TestTTestErrors(t *testing.T) {
	if _, err := WelchTTest([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("short first sample should fail")
	}
	if _, err := PooledTTest([]float64{1, 2}, nil); err == nil {
		t.Error("empty second sample should fail")
	}
	if _, err := WelchTTest([]float64{3, 3, 3}, []float64{3, 3, 3}); err == nil {
		t.Error("constant samples should fail")
	}
	if _, err := PooledTTest([]float64{3, 3, 3}, []float64{3, 3, 3}); err == nil {
		t.Error("constant samples should fail")
	}
}

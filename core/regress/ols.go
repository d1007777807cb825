package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OLSResult holds an ordinary least squares fit with classical inference.
type OLSResult struct {
	Terms   []string
	Coeffs  []float64
	StdErrs []float64
	TStats  []float64
	PValues []float64

	N     int
	DF    int
	Sigma float64
	RSS   float64
	R2    float64
	AdjR2 float64
}

// FitOLS solves least squares by QR factorization and reports classical
// standard errors, t statistics, two-sided p values, and R squared. The
// design must have more rows than columns.
func FitOLS(x *mat.Dense, y []float64, terms []string) (*OLSResult, error) {
	if x == nil {
		return nil, fmt.Errorf("regress: nil design matrix")
	}
	n, p := x.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("regress: %d outcomes for %d rows", len(y), n)
	}
	if n <= p {
		return nil, fmt.Errorf("regress: %d rows for %d coefficients, need more rows", n, p)
	}
	terms, err := checkTerms(terms, p)
	if err != nil {
		return nil, err
	}

	var qr mat.QR
	qr.Factorize(x)

	var betaMat mat.Dense
	if err := qr.SolveTo(&betaMat, false, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}
	coeffs := make([]float64, p)
	for j := range coeffs {
		coeffs[j] = betaMat.At(j, 0)
	}

	betaVec := mat.NewVecDense(p, coeffs)
	var rss float64
	for i := 0; i < n; i++ {
		r := y[i] - mat.Dot(betaVec, x.RowView(i))
		rss += r * r
	}

	df := n - p
	sigma2 := rss / float64(df)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("invert normal equations: %w", err)
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	stdErrs := make([]float64, p)
	tStats := make([]float64, p)
	pValues := make([]float64, p)
	for j := 0; j < p; j++ {
		stdErrs[j] = math.Sqrt(sigma2 * inv.At(j, j))
		tStats[j] = coeffs[j] / stdErrs[j]
		pValues[j] = 2 * tDist.CDF(-math.Abs(tStats[j]))
	}

	meanY := stat.Mean(y, nil)
	var tss float64
	for _, v := range y {
		d := v - meanY
		tss += d * d
	}
	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	adjR2 := 1 - (1-r2)*float64(n-1)/float64(df)

	return &OLSResult{
		Terms:   terms,
		Coeffs:  coeffs,
		StdErrs: stdErrs,
		TStats:  tStats,
		PValues: pValues,
		N:       n,
		DF:      df,
		Sigma:   math.Sqrt(sigma2),
		RSS:     rss,
		R2:      r2,
		AdjR2:   adjR2,
	}, nil
}

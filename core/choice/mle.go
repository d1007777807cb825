package choice

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// MLEResult holds a maximum-likelihood fit of the choice model.
type MLEResult struct {
	Coeffs        []float64
	LogLikelihood float64
	Evaluations   int
	Status        string
}

// FitMLE maximizes the choice log-likelihood with gradient-free Nelder-Mead.
// A nil initial vector starts from zero.
func FitMLE(data *Data, initial []float64) (*MLEResult, error) {
	if data == nil {
		return nil, fmt.Errorf("choice: nil data")
	}
	if initial == nil {
		initial = make([]float64, data.Dim())
	} else if len(initial) != data.Dim() {
		return nil, fmt.Errorf("choice: initial vector has %d coefficients, want %d", len(initial), data.Dim())
	}

	problem := optimize.Problem{
		Func: func(beta []float64) float64 { return -data.LogLikelihood(beta) },
	}
	start := append([]float64(nil), initial...)

	result, err := optimize.Minimize(problem, start, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("maximize choice log-likelihood: %w", err)
	}

	return &MLEResult{
		Coeffs:        result.X,
		LogLikelihood: -result.F,
		Evaluations:   result.Stats.FuncEvaluations,
		Status:        result.Status.String(),
	}, nil
}

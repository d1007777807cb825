package choice

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
)

// SimColumns names the coefficients produced by Simulate, in order. Hulu is
// the reference brand and carries no dummy.
var SimColumns = []string{"netflix", "prime", "ads", "price"}

// SimPriceIndex is the position of the price coefficient in SimColumns.
const SimPriceIndex = 3

// SimSpec configures the synthetic conjoint generator.
type SimSpec struct {
	Respondents  int
	Tasks        int
	Alternatives int

	// Coeffs are the true utility weights, aligned with SimColumns.
	Coeffs []float64

	// Prices are the price levels profiles draw from.
	Prices []float64
}

// DefaultSimSpec mirrors the streaming-service conjoint: 100 respondents,
// 10 tasks of 3 alternatives, true weights netflix 1.0, prime 0.5, ads -0.8,
// price -0.1, with hulu as the reference brand.
func DefaultSimSpec() SimSpec {
	return SimSpec{
		Respondents:  100,
		Tasks:        10,
		Alternatives: 3,
		Coeffs:       []float64{1.0, 0.5, -0.8, -0.1},
		Prices:       []float64{8, 10, 12, 15, 20},
	}
}

func (s SimSpec) validate() error {
	if s.Respondents <= 0 {
		return fmt.Errorf("choice: simulate: respondents %d, want > 0", s.Respondents)
	}
	if s.Tasks <= 0 {
		return fmt.Errorf("choice: simulate: tasks %d, want > 0", s.Tasks)
	}
	if s.Alternatives < 2 {
		return fmt.Errorf("choice: simulate: alternatives %d, want >= 2", s.Alternatives)
	}
	if len(s.Coeffs) != len(SimColumns) {
		return fmt.Errorf("choice: simulate: %d coefficients, want %d", len(s.Coeffs), len(SimColumns))
	}
	if len(s.Prices) == 0 {
		return fmt.Errorf("choice: simulate: no price levels")
	}
	return nil
}

// Simulate draws a synthetic conjoint dataset from the multinomial logit
// model. Each task compares one profile per brand (netflix, prime, hulu,
// cycling when a task has more than three alternatives); every profile gets
// a fair-coin ads flag and a uniform price level, and the chosen alternative
// is drawn from the softmax of the true utilities.
func Simulate(spec SimSpec, rng *rand.Rand) (*Data, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("choice: simulate: nil rng")
	}

	n := spec.Respondents * spec.Tasks * spec.Alternatives
	x := mat.NewDense(n, len(SimColumns), nil)
	chosen := make([]bool, n)
	groups := make([]int, n)

	util := make([]float64, spec.Alternatives)
	row, group := 0, 0
	for r := 0; r < spec.Respondents; r++ {
		for task := 0; task < spec.Tasks; task++ {
			base := row
			for a := 0; a < spec.Alternatives; a++ {
				var netflix, prime float64
				switch a % 3 {
				case 0:
					netflix = 1
				case 1:
					prime = 1
				}
				profile := []float64{
					netflix,
					prime,
					float64(rng.IntN(2)),
					spec.Prices[rng.IntN(len(spec.Prices))],
				}
				x.SetRow(row, profile)
				util[a] = vek.Dot(spec.Coeffs, profile)
				groups[row] = group
				row++
			}
			chosen[base+drawSoftmax(util, rng)] = true
			group++
		}
	}

	return NewData(x, chosen, groups)
}

// drawSoftmax samples an index with probability proportional to exp(util).
func drawSoftmax(util []float64, rng *rand.Rand) int {
	maxU := util[0]
	for _, u := range util[1:] {
		if u > maxU {
			maxU = u
		}
	}

	weights := make([]float64, len(util))
	var sum float64
	for i, u := range util {
		w := math.Exp(u - maxU)
		weights[i] = w
		sum += w
	}

	target := rng.Float64() * sum
	var cum float64
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	return len(util) - 1
}

// Package choice implements the multinomial logit choice model: grouped
// long-format data, the log-likelihood, Gaussian priors, the posterior
// sampled by core/mcmc, and gradient-free maximum-likelihood estimation.
package choice

import (
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"

	"github.com/adalundhe/statlab/core/dataset"
)

// Data holds a choice dataset in long format: one row per alternative, rows
// partitioned into groups (one group per decision instance). Within every
// group exactly one row is chosen, and all groups have the same number of
// rows. Data is read-only once constructed.
type Data struct {
	x      *mat.Dense
	chosen []bool
	groups []int

	groupRows   [][]int
	chosenInGrp []int
	groupSize   int
}

// NewData validates and assembles a choice dataset. Group ids may appear in
// any row order; rows of a group need not be contiguous.
func NewData(x *mat.Dense, chosen []bool, groups []int) (*Data, error) {
	if x == nil {
		return nil, fmt.Errorf("choice: nil design matrix")
	}
	n, p := x.Dims()
	if n == 0 || p == 0 {
		return nil, fmt.Errorf("choice: empty design matrix")
	}
	if len(chosen) != n {
		return nil, fmt.Errorf("choice: %d chosen indicators for %d rows", len(chosen), n)
	}
	if len(groups) != n {
		return nil, fmt.Errorf("choice: %d group ids for %d rows", len(groups), n)
	}

	index := make(map[int]int)
	var groupRows [][]int
	for i, g := range groups {
		k, ok := index[g]
		if !ok {
			k = len(groupRows)
			index[g] = k
			groupRows = append(groupRows, nil)
		}
		groupRows[k] = append(groupRows[k], i)
	}

	size := len(groupRows[0])
	if size < 2 {
		return nil, fmt.Errorf("choice: group %d has %d rows, need at least 2", groups[groupRows[0][0]], size)
	}
	chosenInGrp := make([]int, len(groupRows))
	for k, rows := range groupRows {
		if len(rows) != size {
			return nil, fmt.Errorf("choice: group %d has %d rows, want %d", groups[rows[0]], len(rows), size)
		}
		found := -1
		for pos, i := range rows {
			if !chosen[i] {
				continue
			}
			if found >= 0 {
				return nil, fmt.Errorf("choice: group %d has more than one chosen row", groups[rows[0]])
			}
			found = pos
		}
		if found < 0 {
			return nil, fmt.Errorf("choice: group %d has no chosen row", groups[rows[0]])
		}
		chosenInGrp[k] = found
	}

	return &Data{
		x:           x,
		chosen:      append([]bool(nil), chosen...),
		groups:      append([]int(nil), groups...),
		groupRows:   groupRows,
		chosenInGrp: chosenInGrp,
		groupSize:   size,
	}, nil
}

// FromTable builds choice data from a loaded table. The choice column must
// hold 0/1 values and the group column integer ids; feature columns pass
// through dataset.DesignMatrix, so categorical features dummy-encode. The
// returned terms name the model coefficients.
func FromTable(t *dataset.Table, choiceCol, groupCol string, features ...string) (*Data, []string, error) {
	x, terms, err := t.DesignMatrix(false, features...)
	if err != nil {
		return nil, nil, err
	}

	chosenF, err := t.Numeric(choiceCol)
	if err != nil {
		return nil, nil, err
	}
	chosen := make([]bool, len(chosenF))
	for i, v := range chosenF {
		switch v {
		case 0:
		case 1:
			chosen[i] = true
		default:
			return nil, nil, fmt.Errorf("choice: %s row %d: choice value %v, want 0 or 1", t.Source(), i+1, v)
		}
	}

	groupsF, err := t.Numeric(groupCol)
	if err != nil {
		return nil, nil, err
	}
	groups := make([]int, len(groupsF))
	for i, v := range groupsF {
		g := int(v)
		if float64(g) != v {
			return nil, nil, fmt.Errorf("choice: %s row %d: group id %v is not an integer", t.Source(), i+1, v)
		}
		groups[i] = g
	}

	data, err := NewData(x, chosen, groups)
	if err != nil {
		return nil, nil, err
	}
	return data, terms, nil
}

// Rows returns the number of long-format rows.
func (d *Data) Rows() int {
	n, _ := d.x.Dims()
	return n
}

// Dim returns the number of model coefficients.
func (d *Data) Dim() int {
	_, p := d.x.Dims()
	return p
}

// Groups returns the number of decision instances.
func (d *Data) Groups() int { return len(d.groupRows) }

// GroupSize returns the constant number of alternatives per group.
func (d *Data) GroupSize() int { return d.groupSize }

// LogLikelihood evaluates the multinomial logit log-likelihood at beta: the
// sum over groups of the log softmax probability of the chosen alternative.
// Utilities are stabilized by subtracting the group maximum before
// exponentiating.
func (d *Data) LogLikelihood(beta []float64) float64 {
	if len(beta) != d.Dim() {
		return math.Inf(-1)
	}

	util := make([]float64, d.groupSize)
	var ll float64
	for k, rows := range d.groupRows {
		maxU := math.Inf(-1)
		for pos, i := range rows {
			u := vek.Dot(beta, d.x.RawRowView(i))
			util[pos] = u
			if u > maxU {
				maxU = u
			}
		}

		var sum float64
		for _, u := range util {
			sum += math.Exp(u - maxU)
		}
		ll += util[d.chosenInGrp[k]] - maxU - math.Log(sum)
	}
	return ll
}

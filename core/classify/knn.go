// Package classify implements the K-nearest-neighbors classifier used by the
// classification report: majority vote among the K nearest training points
// by Euclidean distance, with ties broken by the label seen earliest in the
// training data.
package classify

import (
	"fmt"
	"sort"

	"github.com/viterin/vek"
)

// KNN is a fitted K-nearest-neighbors classifier. It keeps the training
// points and answers queries by scanning them; training data is never
// mutated after Fit.
type KNN struct {
	k      int
	dim    int
	points [][]float64
	labels []string
	norms  []float64

	// order ranks each distinct label by first appearance in the training
	// data; vote ties resolve to the lowest rank.
	order map[string]int
	names []string
}

// Fit validates the training set and returns a classifier.
func Fit(points [][]float64, labels []string, k int) (*KNN, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("classify: no training points")
	}
	if len(labels) != n {
		return nil, fmt.Errorf("classify: %d labels for %d points", len(labels), n)
	}
	if k <= 0 {
		return nil, fmt.Errorf("classify: k = %d, want > 0", k)
	}
	if k > n {
		return nil, fmt.Errorf("classify: k = %d exceeds %d training points", k, n)
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, fmt.Errorf("classify: zero-dimensional points")
	}

	m := &KNN{
		k:      k,
		dim:    dim,
		points: points,
		labels: labels,
		norms:  make([]float64, n),
		order:  make(map[string]int),
	}
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("classify: point %d has %d coordinates, want %d", i, len(p), dim)
		}
		m.norms[i] = vek.Dot(p, p)
	}
	for _, lab := range labels {
		if _, ok := m.order[lab]; !ok {
			m.order[lab] = len(m.names)
			m.names = append(m.names, lab)
		}
	}
	return m, nil
}

// K returns the neighbor count.
func (m *KNN) K() int { return m.k }

// Labels returns the distinct training labels in first-seen order.
func (m *KNN) Labels() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Predict votes among the K nearest training points. Equidistant points
// rank by training index, and vote ties resolve to the label seen earliest
// in the training data.
func (m *KNN) Predict(query []float64) (string, error) {
	if len(query) != m.dim {
		return "", fmt.Errorf("classify: query has %d coordinates, want %d", len(query), m.dim)
	}

	qNorm := vek.Dot(query, query)
	dists := make([]float64, len(m.points))
	for i, p := range m.points {
		// Squared distance ranks the same as Euclidean.
		d := qNorm + m.norms[i] - 2*vek.Dot(query, p)
		if d < 0 {
			d = 0
		}
		dists[i] = d
	}

	idx := make([]int, len(m.points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return dists[idx[a]] < dists[idx[b]] })

	votes := make(map[string]int, m.k)
	for _, i := range idx[:m.k] {
		votes[m.labels[i]]++
	}

	winner := ""
	best := -1
	for lab, count := range votes {
		switch {
		case count > best:
			winner, best = lab, count
		case count == best && m.order[lab] < m.order[winner]:
			winner = lab
		}
	}
	return winner, nil
}

// PredictBatch predicts every query in order.
func (m *KNN) PredictBatch(queries [][]float64) ([]string, error) {
	out := make([]string, len(queries))
	for i, q := range queries {
		lab, err := m.Predict(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		out[i] = lab
	}
	return out, nil
}

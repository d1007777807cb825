package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Silhouette computes the mean silhouette coefficient of a clustering:
// per point, (b - a) / max(a, b) where a is the mean distance to the rest
// of its own cluster and b the smallest mean distance to another cluster.
// Points in singleton clusters score zero.
func Silhouette(points [][]float64, assignments []int) (float64, error) {
	n := len(points)
	if n == 0 {
		return 0, fmt.Errorf("cluster: no points")
	}
	if len(assignments) != n {
		return 0, fmt.Errorf("cluster: %d assignments for %d points", len(assignments), n)
	}

	k := 0
	for _, a := range assignments {
		if a < 0 {
			return 0, fmt.Errorf("cluster: negative assignment %d", a)
		}
		if a+1 > k {
			k = a + 1
		}
	}
	if k < 2 {
		return 0, fmt.Errorf("cluster: silhouette needs at least 2 clusters, have %d", k)
	}

	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}
	for j, c := range counts {
		if c == 0 {
			return 0, fmt.Errorf("cluster: cluster %d is empty", j)
		}
	}

	var total float64
	sums := make([]float64, k)
	for i, p := range points {
		for j := range sums {
			sums[j] = 0
		}
		for other, q := range points {
			if other == i {
				continue
			}
			sums[assignments[other]] += euclidean(p, q)
		}

		own := assignments[i]
		if counts[own] == 1 {
			continue // singleton scores zero
		}
		a := sums[own] / float64(counts[own]-1)

		b := math.MaxFloat64
		for j := range sums {
			if j == own {
				continue
			}
			if mean := sums[j] / float64(counts[j]); mean < b {
				b = mean
			}
		}

		total += (b - a) / math.Max(a, b)
	}
	return total / float64(n), nil
}

func euclidean(p, q []float64) float64 {
	var sum float64
	for d := range p {
		delta := p[d] - q[d]
		sum += delta * delta
	}
	return math.Sqrt(sum)
}

// Standardize z-scores every feature so mixed-unit columns weigh equally.
// Constant features center to zero.
func Standardize(points [][]float64) ([][]float64, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("cluster: no points")
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("cluster: point %d has %d coordinates, want %d", i, len(p), dim)
		}
	}

	col := make([]float64, len(points))
	means := make([]float64, dim)
	sds := make([]float64, dim)
	for d := 0; d < dim; d++ {
		for i, p := range points {
			col[i] = p[d]
		}
		mean, sd := stat.MeanStdDev(col, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		means[d], sds[d] = mean, sd
	}

	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dim)
		for d, v := range p {
			row[d] = (v - means[d]) / sds[d]
		}
		out[i] = row
	}
	return out, nil
}

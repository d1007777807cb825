// Package cluster implements the K-means routine behind the clustering
// report: Lloyd iterations over in-memory points with explicit seeding, a
// fixed iteration cap, and early stop once no centroid moves beyond a
// floating-point tolerance.
package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/viterin/vek"
)

// seedStream derives the second PCG stream word from the user seed.
const seedStream = 0x9E3779B97F4A7C15

// Config configures a K-means fit.
type Config struct {
	// K is the number of clusters.
	K int

	// MaxIterations caps the Lloyd iterations. Default 100.
	MaxIterations int

	// Tolerance is the centroid movement (Euclidean) below which the fit
	// counts as converged. Default 1e-9.
	Tolerance float64

	// Seed drives centroid initialization.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.MaxIterations == 0 {
		c.MaxIterations = 100
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-9
	}
	return c
}

func (c Config) validate(n int) error {
	if c.K <= 0 {
		return fmt.Errorf("cluster: k = %d, want > 0", c.K)
	}
	if c.K > n {
		return fmt.Errorf("cluster: k = %d exceeds %d points", c.K, n)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("cluster: max iterations = %d, want > 0", c.MaxIterations)
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return fmt.Errorf("cluster: tolerance = %v, want >= 0", c.Tolerance)
	}
	return nil
}

// Result holds a completed K-means fit.
type Result struct {
	// Centroids are the final cluster centers, k × dim.
	Centroids [][]float64

	// Assignments maps each input point to its centroid index.
	Assignments []int

	// Counts holds the cluster sizes.
	Counts []int

	// Iterations is the number of Lloyd iterations performed.
	Iterations int

	// Inertia is the total squared distance of points to their centroids.
	Inertia float64

	// Converged reports whether the fit stopped on tolerance rather than
	// the iteration cap.
	Converged bool
}

// state holds one fit's working memory: points with precomputed squared
// norms, so the assignment step can use ||x-c||^2 = ||x||^2 + ||c||^2 - 2 x.c.
type state struct {
	n, k, dim int

	points [][]float64
	norms  []float64

	centroids [][]float64
	cnorms    []float64

	assignments []int
	counts      []int
	inertia     float64
}

func newState(points [][]float64, k int) (*state, error) {
	n := len(points)
	dim := len(points[0])
	if dim == 0 {
		return nil, fmt.Errorf("cluster: zero-dimensional points")
	}

	s := &state{
		n:           n,
		k:           k,
		dim:         dim,
		points:      points,
		norms:       make([]float64, n),
		centroids:   make([][]float64, k),
		cnorms:      make([]float64, k),
		assignments: make([]int, n),
		counts:      make([]int, k),
	}
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("cluster: point %d has %d coordinates, want %d", i, len(p), dim)
		}
		s.norms[i] = vek.Dot(p, p)
	}
	for j := range s.centroids {
		s.centroids[j] = make([]float64, dim)
	}
	return s, nil
}

// seedCentroids copies k distinct points chosen by a seeded permutation.
func (s *state) seedCentroids(rng *rand.Rand) {
	perm := rng.Perm(s.n)
	for j := 0; j < s.k; j++ {
		copy(s.centroids[j], s.points[perm[j]])
	}
}

func (s *state) computeCentroidNorms() {
	for j, c := range s.centroids {
		s.cnorms[j] = vek.Dot(c, c)
	}
}

// assign labels every point with its nearest centroid and accumulates the
// objective. Negative distances from cancellation clamp to zero.
func (s *state) assign() {
	for j := range s.counts {
		s.counts[j] = 0
	}

	var total float64
	for i, p := range s.points {
		minDist := math.MaxFloat64
		minJ := 0
		for j, c := range s.centroids {
			dist := s.norms[i] + s.cnorms[j] - 2*vek.Dot(p, c)
			if dist < 0 {
				dist = 0
			}
			if dist < minDist {
				minDist = dist
				minJ = j
			}
		}
		s.assignments[i] = minJ
		s.counts[minJ]++
		total += minDist
	}
	s.inertia = total
}

// fixEmptyClusters hands each empty cluster the point farthest from its
// assigned centroid, keeping every mean well defined.
func (s *state) fixEmptyClusters() {
	for j := 0; j < s.k; j++ {
		if s.counts[j] > 0 {
			continue
		}

		maxDist, maxIdx := -1.0, -1
		for i, p := range s.points {
			cur := s.assignments[i]
			if s.counts[cur] <= 1 {
				continue
			}
			dist := s.norms[i] + s.cnorms[cur] - 2*vek.Dot(p, s.centroids[cur])
			if dist > maxDist {
				maxDist = dist
				maxIdx = i
			}
		}
		if maxIdx < 0 {
			continue
		}

		s.counts[s.assignments[maxIdx]]--
		s.assignments[maxIdx] = j
		s.counts[j] = 1
		copy(s.centroids[j], s.points[maxIdx])
		s.cnorms[j] = s.norms[maxIdx]
	}
}

// update recomputes centroids as cluster means and returns the squared
// Euclidean movement of the centroid that moved farthest.
func (s *state) update() float64 {
	sums := make([][]float64, s.k)
	for j := range sums {
		sums[j] = make([]float64, s.dim)
	}
	for i, p := range s.points {
		sum := sums[s.assignments[i]]
		for d, v := range p {
			sum[d] += v
		}
	}

	var maxMove float64
	for j, sum := range sums {
		if s.counts[j] == 0 {
			continue
		}
		inv := 1 / float64(s.counts[j])
		var move float64
		for d := range sum {
			mean := sum[d] * inv
			delta := mean - s.centroids[j][d]
			move += delta * delta
			s.centroids[j][d] = mean
		}
		if move > maxMove {
			maxMove = move
		}
	}
	return maxMove
}

// Fit runs K-means over the points. Centroids are seeded from a fixed
// random draw of data points; iterations stop at the cap or as soon as no
// centroid moves beyond the tolerance.
func Fit(points [][]float64, cfg Config) (*Result, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("cluster: no points")
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(len(points)); err != nil {
		return nil, err
	}

	s, err := newState(points, cfg.K)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedStream))
	s.seedCentroids(rng)

	result := &Result{}
	tolSq := cfg.Tolerance * cfg.Tolerance
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		s.computeCentroidNorms()
		s.assign()
		s.fixEmptyClusters()

		result.Iterations = iter
		if moved := s.update(); moved <= tolSq {
			result.Converged = true
			break
		}
	}

	// Final pass so assignments and inertia match the returned centroids.
	s.computeCentroidNorms()
	s.assign()

	result.Centroids = s.centroids
	result.Assignments = s.assignments
	result.Counts = s.counts
	result.Inertia = s.inertia
	return result, nil
}

package experiment

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Rander draws one value from a distribution. The gonum distuv distributions
// satisfy it; seed them through their Src field.
type Rander interface {
	Rand() float64
}

// CLTResult holds a simulated sampling distribution of the mean.
type CLTResult struct {
	Means      []float64
	SampleSize int
	GrandMean  float64
	StdErr     float64
}

// CLT simulates the sampling distribution of the mean: it draws repeated
// samples of size sampleSize from dist and records each sample mean. StdErr
// is the standard deviation of the recorded means.
func CLT(dist Rander, sampleSize, draws int) (*CLTResult, error) {
	if dist == nil {
		return nil, errors.New("clt: nil distribution")
	}
	if sampleSize < 1 {
		return nil, fmt.Errorf("clt: sample size %d, want at least 1", sampleSize)
	}
	if draws < 2 {
		return nil, fmt.Errorf("clt: %d draws, want at least 2", draws)
	}
	means := make([]float64, draws)
	for i := range means {
		sum := 0.0
		for j := 0; j < sampleSize; j++ {
			sum += dist.Rand()
		}
		means[i] = sum / float64(sampleSize)
	}
	grand, se := stat.MeanStdDev(means, nil)
	return &CLTResult{Means: means, SampleSize: sampleSize, GrandMean: grand, StdErr: se}, nil
}

// LLN simulates the law of large numbers: the running mean after each of n
// draws from dist.
func LLN(dist Rander, n int) ([]float64, error) {
	if dist == nil {
		return nil, errors.New("lln: nil distribution")
	}
	if n < 1 {
		return nil, fmt.Errorf("lln: %d draws, want at least 1", n)
	}
	path := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += dist.Rand()
		path[i] = sum / float64(i+1)
	}
	return path, nil
}

package classify

import (
	"fmt"
	"math/rand/v2"
)

// Split shuffles the dataset with the supplied rng and carves off the last
// testFraction of it as a held-out set.
func Split(points [][]float64, labels []string, testFraction float64, rng *rand.Rand) (trainX [][]float64, trainY []string, testX [][]float64, testY []string, err error) {
	n := len(points)
	if n == 0 {
		return nil, nil, nil, nil, fmt.Errorf("classify: no points to split")
	}
	if len(labels) != n {
		return nil, nil, nil, nil, fmt.Errorf("classify: %d labels for %d points", len(labels), n)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("classify: test fraction %v, want in (0, 1)", testFraction)
	}
	if rng == nil {
		return nil, nil, nil, nil, fmt.Errorf("classify: nil rng")
	}

	testN := int(float64(n) * testFraction)
	if testN == 0 || testN == n {
		return nil, nil, nil, nil, fmt.Errorf("classify: test fraction %v leaves an empty split for %d points", testFraction, n)
	}

	perm := rng.Perm(n)
	cut := n - testN
	for pos, i := range perm {
		if pos < cut {
			trainX = append(trainX, points[i])
			trainY = append(trainY, labels[i])
		} else {
			testX = append(testX, points[i])
			testY = append(testY, labels[i])
		}
	}
	return trainX, trainY, testX, testY, nil
}

// Confusion is a confusion matrix: Counts[i][j] is how often label Labels[i]
// was predicted as Labels[j].
type Confusion struct {
	Labels []string
	Counts [][]int
}

// ConfusionMatrix tallies predictions against actual labels. Label order is
// first appearance across actual then predicted values.
func ConfusionMatrix(actual, predicted []string) (*Confusion, error) {
	if len(actual) == 0 {
		return nil, fmt.Errorf("classify: no labels")
	}
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("classify: %d predictions for %d labels", len(predicted), len(actual))
	}

	index := make(map[string]int)
	var names []string
	add := func(lab string) {
		if _, ok := index[lab]; !ok {
			index[lab] = len(names)
			names = append(names, lab)
		}
	}
	for _, lab := range actual {
		add(lab)
	}
	for _, lab := range predicted {
		add(lab)
	}

	counts := make([][]int, len(names))
	for i := range counts {
		counts[i] = make([]int, len(names))
	}
	for i := range actual {
		counts[index[actual[i]]][index[predicted[i]]]++
	}
	return &Confusion{Labels: names, Counts: counts}, nil
}

// Accuracy returns the fraction of diagonal (correct) predictions.
func (c *Confusion) Accuracy() float64 {
	var correct, total int
	for i, row := range c.Counts {
		for j, n := range row {
			total += n
			if i == j {
				correct += n
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// Accuracy is a shorthand for the fraction of matching predictions.
func Accuracy(actual, predicted []string) (float64, error) {
	if len(actual) == 0 {
		return 0, fmt.Errorf("classify: no labels")
	}
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("classify: %d predictions for %d labels", len(predicted), len(actual))
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual)), nil
}

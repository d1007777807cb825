package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "uuid is abbreviated",
			input:    "0f8fad5b-d9cb-469f-a165-70867728950e",
			expected: "0f8fad5b",
		},
		{
			name:     "short id passes through",
			input:    "abc123",
			expected: "abc123",
		},
		{
			name:     "empty id",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shortID(tt.input))
		})
	}
}

func TestFormatMetrics(t *testing.T) {
	metrics := map[string]float64{
		"accuracy":   0.9375,
		"train_size": 9,
		"test_size":  3,
	}
	assert.Equal(t, "accuracy=0.9375 test_size=3 train_size=9", formatMetrics(metrics))
}

func TestFormatMetricsEmpty(t *testing.T) {
	assert.Equal(t, "", formatMetrics(nil))
}

package report

import (
	"math"
	"strconv"
)

// Float formats v with prec digits after the point. NaN renders as NA.
func Float(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// PValue formats p with four digits, switching to scientific notation below
// 1e-4 so small values stay distinguishable from zero.
func PValue(p float64) string {
	if math.IsNaN(p) {
		return "NA"
	}
	if p > 0 && p < 1e-4 {
		return strconv.FormatFloat(p, 'e', 2, 64)
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}

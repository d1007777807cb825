// Package dataset loads CSV and Stata files into immutable named-column tables.
package dataset

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/gobwas/glob"
	"gonum.org/v1/gonum/mat"
)

// Kind identifies how a column's values are stored.
type Kind int

const (
	// KindNumeric columns hold float64 values.
	KindNumeric Kind = iota

	// KindCategorical columns hold string labels.
	KindCategorical
)

var kindNames = map[Kind]string{
	KindNumeric:     "numeric",
	KindCategorical: "categorical",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type column struct {
	kind   Kind
	floats []float64
	labels []string
}

// Table is an in-memory column table. It is read once from a source and
// never mutated afterwards; accessors return copies.
type Table struct {
	source string
	names  []string
	cols   map[string]*column
	rows   int
}

// Source returns the name of the file or reader the table was loaded from.
func (t *Table) Source() string { return t.source }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Names returns the column names in file order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the table contains a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Kind returns the storage kind of the named column.
func (t *Table) Kind(name string) (Kind, error) {
	col, ok := t.cols[name]
	if !ok {
		return 0, fmt.Errorf("dataset: %s: no column %q", t.source, name)
	}
	return col.kind, nil
}

// Numeric returns a copy of the named numeric column.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("dataset: %s: no column %q", t.source, name)
	}
	if col.kind != KindNumeric {
		return nil, fmt.Errorf("dataset: %s: column %q is %s, not numeric", t.source, name, col.kind)
	}
	out := make([]float64, len(col.floats))
	copy(out, col.floats)
	return out, nil
}

// Categorical returns a copy of the named categorical column.
func (t *Table) Categorical(name string) ([]string, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("dataset: %s: no column %q", t.source, name)
	}
	if col.kind != KindCategorical {
		return nil, fmt.Errorf("dataset: %s: column %q is %s, not categorical", t.source, name, col.kind)
	}
	out := make([]string, len(col.labels))
	copy(out, col.labels)
	return out, nil
}

// Levels returns the distinct labels of a categorical column in
// first-observed order.
func (t *Table) Levels(name string) ([]string, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("dataset: %s: no column %q", t.source, name)
	}
	if col.kind != KindCategorical {
		return nil, fmt.Errorf("dataset: %s: column %q is %s, not categorical", t.source, name, col.kind)
	}
	return distinctLevels(col.labels), nil
}

func distinctLevels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	var levels []string
	for _, lab := range labels {
		if !seen[lab] {
			seen[lab] = true
			levels = append(levels, lab)
		}
	}
	return levels
}

// SelectColumns expands glob patterns over the column names, preserving
// table order. No patterns selects every column. A pattern matching no
// column is an error.
func (t *Table) SelectColumns(patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		return t.Names(), nil
	}

	matched := make([]bool, len(t.names))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("dataset: bad column pattern %q: %w", p, err)
		}
		hit := false
		for i, name := range t.names {
			if g.Match(name) {
				matched[i] = true
				hit = true
			}
		}
		if !hit {
			return nil, fmt.Errorf("dataset: %s: pattern %q matches no column", t.source, p)
		}
	}

	var out []string
	for i, name := range t.names {
		if matched[i] {
			out = append(out, name)
		}
	}
	return out, nil
}

// NumericRows gathers the named numeric columns into one row-major slice per
// data row, in the order requested.
func (t *Table) NumericRows(names ...string) ([][]float64, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("dataset: %s: no columns requested", t.source)
	}
	cols := make([][]float64, len(names))
	for j, name := range names {
		col, ok := t.cols[name]
		if !ok {
			return nil, fmt.Errorf("dataset: %s: no column %q", t.source, name)
		}
		if col.kind != KindNumeric {
			return nil, fmt.Errorf("dataset: %s: column %q is %s, not numeric", t.source, name, col.kind)
		}
		cols[j] = col.floats
	}

	rows := make([][]float64, t.rows)
	for i := range rows {
		row := make([]float64, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows, nil
}

// DesignMatrix assembles a regression design matrix from the named columns.
// Numeric columns pass through; categorical columns expand into dummy
// indicators with the first observed level as the reference. The returned
// term names parallel the matrix columns.
func (t *Table) DesignMatrix(intercept bool, names ...string) (*mat.Dense, []string, error) {
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("dataset: %s: design matrix needs at least one column", t.source)
	}

	var (
		terms []string
		data  [][]float64
	)
	if intercept {
		ones := make([]float64, t.rows)
		for i := range ones {
			ones[i] = 1
		}
		terms = append(terms, "intercept")
		data = append(data, ones)
	}

	for _, name := range names {
		col, ok := t.cols[name]
		if !ok {
			return nil, nil, fmt.Errorf("dataset: %s: no column %q", t.source, name)
		}
		switch col.kind {
		case KindNumeric:
			terms = append(terms, name)
			data = append(data, col.floats)
		case KindCategorical:
			levels := distinctLevels(col.labels)
			if len(levels) < 2 {
				return nil, nil, fmt.Errorf("dataset: %s: categorical column %q has a single level", t.source, name)
			}
			for _, lv := range levels[1:] {
				dummy := make([]float64, t.rows)
				for i, lab := range col.labels {
					if lab == lv {
						dummy[i] = 1
					}
				}
				terms = append(terms, name+"="+lv)
				data = append(data, dummy)
			}
		}
	}

	x := mat.NewDense(t.rows, len(terms), nil)
	for j, c := range data {
		x.SetCol(j, c)
	}
	return x, terms, nil
}

// ColumnSummary holds per-column descriptive statistics. The quantile fields
// are meaningful for numeric columns; Distinct and Top for categorical ones.
type ColumnSummary struct {
	Name   string
	Kind   Kind
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64

	Distinct int
	Top      string
}

// Summary computes descriptive statistics for every column in table order.
func (t *Table) Summary() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.names))
	for _, name := range t.names {
		col := t.cols[name]
		cs := ColumnSummary{Name: name, Kind: col.kind, N: t.rows}

		switch col.kind {
		case KindNumeric:
			s := stats.Sample{Xs: append([]float64(nil), col.floats...)}
			s.Sort()
			cs.Mean = s.Mean()
			cs.StdDev = s.StdDev()
			cs.Min = s.Quantile(0)
			cs.Q25 = s.Quantile(0.25)
			cs.Median = s.Quantile(0.5)
			cs.Q75 = s.Quantile(0.75)
			cs.Max = s.Quantile(1)
		case KindCategorical:
			nan := math.NaN()
			cs.Mean, cs.StdDev = nan, nan
			cs.Min, cs.Q25, cs.Median, cs.Q75, cs.Max = nan, nan, nan, nan, nan

			counts := make(map[string]int, len(col.labels))
			levels := distinctLevels(col.labels)
			for _, lab := range col.labels {
				counts[lab]++
			}
			cs.Distinct = len(levels)
			best := -1
			for _, lv := range levels {
				if counts[lv] > best {
					cs.Top = lv
					best = counts[lv]
				}
			}
		}
		out = append(out, cs)
	}
	return out
}

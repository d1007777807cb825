package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kshedden/datareader"
)

// LoadError describes a malformed input table. Loading fails fast on the
// first problem rather than letting bad values reach a model fit.
type LoadError struct {
	// Source names the file or reader being loaded.
	Source string

	// Row is the 1-based data row of the problem, or 0 when the problem is
	// not tied to a row.
	Row int

	// Column names the offending column, empty when not column-specific.
	Column string

	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load %s", e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LoadError) Unwrap() error { return e.Err }

// ReadCSV parses a comma-separated table with a required header row.
// Column types are inferred: a column whose every value parses as a float64
// is numeric, anything else is categorical. Ragged rows, empty cells, and
// duplicate or empty header names fail with a *LoadError.
func ReadCSV(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &LoadError{Source: source, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &LoadError{Source: source, Column: fmt.Sprintf("#%d", i+1), Err: errors.New("empty column name")}
		}
		if seen[h] {
			return nil, &LoadError{Source: source, Column: h, Err: errors.New("duplicate column name")}
		}
		seen[h] = true
		names[i] = h
	}

	var records [][]string
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Source: source, Row: row, Err: err}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("no data rows")}
	}

	cols := make(map[string]*column, len(names))
	for j, name := range names {
		raw := make([]string, len(records))
		numeric := true
		for i, rec := range records {
			v := strings.TrimSpace(rec[j])
			if v == "" {
				return nil, &LoadError{Source: source, Row: i + 1, Column: name, Err: errors.New("empty value")}
			}
			raw[i] = v
			if numeric {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					numeric = false
				}
			}
		}
		if numeric {
			floats := make([]float64, len(raw))
			for i, v := range raw {
				floats[i], _ = strconv.ParseFloat(v, 64)
			}
			cols[name] = &column{kind: KindNumeric, floats: floats}
		} else {
			cols[name] = &column{kind: KindCategorical, labels: raw}
		}
	}

	return &Table{source: source, names: names, cols: cols, rows: len(records)}, nil
}

// ReadStata parses a Stata .dta file. Numeric variables become numeric
// columns, string variables categorical ones. Missing values fail with a
// *LoadError naming the row and column.
func ReadStata(r io.ReadSeeker, source string) (*Table, error) {
	sr, err := datareader.NewStataReader(r)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("read stata header: %w", err)}
	}
	series, err := sr.Read(-1)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("read stata data: %w", err)}
	}
	if len(series) == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("no columns")}
	}

	names := make([]string, 0, len(series))
	cols := make(map[string]*column, len(series))
	rows := -1
	for _, s := range series {
		name := s.Name
		if _, ok := cols[name]; ok {
			return nil, &LoadError{Source: source, Column: name, Err: errors.New("duplicate column name")}
		}

		var n int
		if floats, missing, err := s.AsFloat64Slice(); err == nil {
			if i := firstMissing(missing); i >= 0 {
				return nil, &LoadError{Source: source, Row: i + 1, Column: name, Err: errors.New("missing value")}
			}
			cols[name] = &column{kind: KindNumeric, floats: floats}
			n = len(floats)
		} else {
			labels, missing, err := s.AsStringSlice()
			if err != nil {
				return nil, &LoadError{Source: source, Column: name, Err: fmt.Errorf("unsupported column type: %w", err)}
			}
			if i := firstMissing(missing); i >= 0 {
				return nil, &LoadError{Source: source, Row: i + 1, Column: name, Err: errors.New("missing value")}
			}
			cols[name] = &column{kind: KindCategorical, labels: labels}
			n = len(labels)
		}

		if rows == -1 {
			rows = n
		} else if rows != n {
			return nil, &LoadError{Source: source, Column: name, Err: fmt.Errorf("column length %d does not match %d", n, rows)}
		}
		names = append(names, name)
	}
	if rows <= 0 {
		return nil, &LoadError{Source: source, Err: errors.New("no data rows")}
	}

	return &Table{source: source, names: names, cols: cols, rows: rows}, nil
}

func firstMissing(missing []bool) int {
	for i, m := range missing {
		if m {
			return i
		}
	}
	return -1
}

// LoadFile reads a table from disk, dispatching on the file extension:
// .csv and .dta are supported.
func LoadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, &LoadError{Source: path, Err: err}
		}
		defer f.Close()
		return ReadCSV(f, path)
	case ".dta":
		f, err := os.Open(path)
		if err != nil {
			return nil, &LoadError{Source: path, Err: err}
		}
		defer f.Close()
		return ReadStata(f, path)
	default:
		return nil, &LoadError{Source: path, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(path))}
	}
}

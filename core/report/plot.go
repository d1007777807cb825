package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// Histogram saves a histogram of values as PNG.
func Histogram(path, title string, values []float64, bins int) error {
	if len(values) == 0 {
		return errors.New("histogram: no values")
	}
	if bins < 1 {
		bins = 30
	}
	p := plot.New()
	p.Title.Text = title
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)
	return save(p, path)
}

// Line saves ys against their 1-based index, as PNG or, when path ends in
// .html, as an interactive chart.
func Line(path, title, xlabel string, ys []float64) error {
	if len(ys) == 0 {
		return errors.New("line: no values")
	}
	if isHTML(path) {
		return writeHTML(path, func(w io.Writer) error {
			return LineHTML(w, title, ys)
		})
	}
	pts := make(plotter.XYs, len(ys))
	for i, v := range ys {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}
	p.Add(l)
	return save(p, path)
}

// Trace saves the draw history of one chain parameter.
func Trace(path, title string, draws []float64) error {
	return Line(path, title, "iteration", draws)
}

// ClusterScatter saves 2D points colored by cluster assignment with the
// centroids overlaid as crosses, as PNG or, when path ends in .html, as an
// interactive chart. Only the first two coordinates of each point are drawn.
func ClusterScatter(path, title string, points [][]float64, assignments []int, centroids [][]float64) error {
	if err := checkScatter(points, assignments, centroids); err != nil {
		return err
	}
	if isHTML(path) {
		return writeHTML(path, func(w io.Writer) error {
			return ClusterScatterHTML(w, title, points, assignments, centroids)
		})
	}

	p := plot.New()
	p.Title.Text = title
	for c := range centroids {
		var xys plotter.XYs
		for i, pt := range points {
			if assignments[i] == c {
				xys = append(xys, plotter.XY{X: pt[0], Y: pt[1]})
			}
		}
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("scatter: %w", err)
		}
		s.GlyphStyle.Color = plotutil.Color(c)
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("cluster %d", c), s)
	}

	var cxys plotter.XYs
	for _, ct := range centroids {
		cxys = append(cxys, plotter.XY{X: ct[0], Y: ct[1]})
	}
	cs, err := plotter.NewScatter(cxys)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	cs.GlyphStyle.Shape = draw.CrossGlyph{}
	cs.GlyphStyle.Radius = vg.Points(5)
	p.Add(cs)
	return save(p, path)
}

func checkScatter(points [][]float64, assignments []int, centroids [][]float64) error {
	if len(points) == 0 {
		return errors.New("scatter: no points")
	}
	if len(points) != len(assignments) {
		return fmt.Errorf("scatter: %d points but %d assignments", len(points), len(assignments))
	}
	if len(centroids) == 0 {
		return errors.New("scatter: no centroids")
	}
	for i, pt := range points {
		if len(pt) < 2 {
			return fmt.Errorf("scatter: point %d has %d coordinates, want at least 2", i, len(pt))
		}
		if assignments[i] < 0 || assignments[i] >= len(centroids) {
			return fmt.Errorf("scatter: point %d assigned to cluster %d of %d", i, assignments[i], len(centroids))
		}
	}
	for i, ct := range centroids {
		if len(ct) < 2 {
			return fmt.Errorf("scatter: centroid %d has %d coordinates, want at least 2", i, len(ct))
		}
	}
	return nil
}

func isHTML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".html")
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

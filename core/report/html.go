package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ClusterScatterHTML renders 2D points colored by cluster as an interactive
// chart, one series per cluster plus a centroid series.
func ClusterScatterHTML(w io.Writer, title string, points [][]float64, assignments []int, centroids [][]float64) error {
	if err := checkScatter(points, assignments, centroids); err != nil {
		return err
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	for c := range centroids {
		var series []opts.ScatterData
		for i, pt := range points {
			if assignments[i] == c {
				series = append(series, opts.ScatterData{Value: []interface{}{pt[0], pt[1]}})
			}
		}
		scatter.AddSeries(fmt.Sprintf("cluster %d", c), series)
	}
	centers := make([]opts.ScatterData, 0, len(centroids))
	for _, ct := range centroids {
		centers = append(centers, opts.ScatterData{
			Value:      []interface{}{ct[0], ct[1]},
			Symbol:     "diamond",
			SymbolSize: 14,
		})
	}
	scatter.AddSeries("centroids", centers)
	return scatter.Render(w)
}

// LineHTML renders ys against their 1-based index as an interactive chart.
func LineHTML(w io.Writer, title string, ys []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))

	xs := make([]string, len(ys))
	data := make([]opts.LineData, len(ys))
	for i, v := range ys {
		xs[i] = strconv.Itoa(i + 1)
		data[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(xs).AddSeries(title, data)
	return line.Render(w)
}

func writeHTML(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

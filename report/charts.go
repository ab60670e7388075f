package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ezoic/churnscope/analysis"
	"github.com/ezoic/churnscope/metrics"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// Chart file names written by RenderCharts.
const (
	CorrelationChart = "correlation_matrix.png"
	ImportanceChart  = "feature_importance.png"
)

// RenderCharts writes the correlation heatmap and the top-n importance bar
// chart into dir, creating it if needed. It returns the written paths.
func RenderCharts(dir string, a *analysis.AnalyzeResult, topN int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create chart dir %s", dir)
	}
	logger := log.GetLoggerWithName("report")

	heat, err := CorrelationHeatmap(a.Correlation)
	if err != nil {
		return nil, err
	}
	bars, err := ImportanceBars(a.Top(topN))
	if err != nil {
		return nil, err
	}

	var written []string
	for _, c := range []struct {
		p    *plot.Plot
		name string
	}{{heat, CorrelationChart}, {bars, ImportanceChart}} {
		path := filepath.Join(dir, c.name)
		if err := c.p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
			return written, errors.Wrapf(err, "save %s", path)
		}
		logger.Info("Chart written", log.PathKey, path)
		written = append(written, path)
	}
	return written, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with row 0 at the top.
type corrGrid struct {
	c *metrics.Correlation
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.c.Names)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := len(g.c.Names)
	return g.c.At(n-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// CorrelationHeatmap draws an annotated correlation matrix on a blue-red
// diverging palette fixed to [-1, 1].
func CorrelationHeatmap(c *metrics.Correlation) (*plot.Plot, error) {
	n := len(c.Names)
	if n == 0 {
		return nil, errors.New("correlation heatmap: no columns")
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{c}, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	var labels plotter.XYLabels
	for r := 0; r < n; r++ {
		for col := 0; col < n; col++ {
			v := c.At(n-1-r, col)
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(col), Y: float64(r)})
			labels.Labels = append(labels.Labels, annotate(v))
		}
	}
	annot, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, errors.Wrap(err, "correlation heatmap labels")
	}
	for i := range annot.TextStyle {
		annot.TextStyle[i].XAlign = draw.XCenter
		annot.TextStyle[i].YAlign = draw.YCenter
	}

	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	p.Add(hm, annot)

	yNames := make([]string, n)
	for i, name := range c.Names {
		yNames[n-1-i] = name
	}
	p.NominalX(c.Names...)
	p.NominalY(yNames...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

func annotate(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

// ImportanceBars draws a bar chart of signed coefficients in the given order.
func ImportanceBars(weights []analysis.FeatureWeight) (*plot.Plot, error) {
	if len(weights) == 0 {
		return nil, errors.New("importance chart: no features")
	}
	values := make(plotter.Values, len(weights))
	names := make([]string, len(weights))
	for i, w := range weights {
		values[i] = w.Coefficient
		names[i] = w.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, errors.Wrap(err, "importance bar chart")
	}
	bars.Color = color.RGBA{R: 0, G: 128, B: 128, A: 255}
	bars.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Feature Importance from Logistic Regression", len(weights))
	p.X.Label.Text = "Features"
	p.Y.Label.Text = "Importance"
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

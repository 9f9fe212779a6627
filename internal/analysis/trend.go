package analysis

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/kpiscope/internal/chart"
	"github.com/KaramelBytes/kpiscope/internal/utils"
	"gonum.org/v1/gonum/stat"
)

// Series is a named numeric sequence indexed 0..N-1.
type Series struct {
	Name   string
	Values []float64
}

func (s Series) Len() int { return len(s.Values) }

// Segment holds the values predicted from one window, for x = Start, Start+1, ...
type Segment struct {
	Start int
	Y     []float64
}

// Trend is the result of sliding a fixed window across a series.
type Trend struct {
	WindowSize int
	// Slopes[k] is fitted on [k, k+WindowSize) and belongs to index k+WindowSize.
	Slopes   []float64
	Segments []Segment
}

// TrendOptions controls PlotTrend and PlotFittedTrend.
type TrendOptions struct {
	WindowSize int
	Save       bool
	SaveDir    string
	Show       bool
}

func DefaultTrendOptions() TrendOptions {
	return TrendOptions{WindowSize: 10, SaveDir: "./img", Show: true}
}

// FitTrend fits a least-squares line to every window [i-ws, i) for i in
// [ws, N). It predicts the next min(ws, N-i) points from each fit. A window
// size at or above N yields an empty trend.
func FitTrend(values []float64, windowSize int) (*Trend, error) {
	if windowSize <= 0 {
		return nil, invalid("window_size", "must be positive, got %d", windowSize)
	}
	n := len(values)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	tr := &Trend{WindowSize: windowSize}
	for i := windowSize; i < n; i++ {
		left := i - windowSize
		alpha, beta := fitLine(xs[left:i], values[left:i])
		end := min(i+windowSize, n)
		pred := make([]float64, 0, end-i)
		for _, x := range xs[i:end] {
			pred = append(pred, alpha+beta*x)
		}
		tr.Slopes = append(tr.Slopes, beta)
		tr.Segments = append(tr.Segments, Segment{Start: i, Y: pred})
	}
	return tr, nil
}

// fitLine returns intercept and slope. A window without x variance (a single
// point) fits a flat line through the mean.
func fitLine(x, y []float64) (alpha, beta float64) {
	if len(x) < 2 {
		return stat.Mean(y, nil), 0
	}
	return stat.LinearRegression(x, y, nil, false)
}

// TrendFileName is the output file name (without extension) of a trend chart.
func TrendFileName(name string, windowSize int) string {
	return utils.SafeName(fmt.Sprintf("trend_%s_ws_%d", name, windowSize))
}

// PlotTrend draws s with its windowed predictions on top and the slope
// sequence below. It saves and shows the figure as requested.
func PlotTrend(s Series, opt TrendOptions, r chart.Renderer, v chart.Viewer) error {
	tr, err := FitTrend(s.Values, opt.WindowSize)
	if err != nil {
		return err
	}
	return PlotFittedTrend(s, tr, opt, r, v)
}

// PlotFittedTrend is PlotTrend for a trend already fitted to s with
// opt.WindowSize.
func PlotFittedTrend(s Series, tr *Trend, opt TrendOptions, r chart.Renderer, v chart.Viewer) error {
	if tr == nil {
		return invalid("trend", "no fitted trend")
	}
	if tr.WindowSize != opt.WindowSize {
		return invalid("window_size", "trend was fitted with %d, options ask for %d", tr.WindowSize, opt.WindowSize)
	}
	if len(tr.Slopes) != max(s.Len()-tr.WindowSize, 0) {
		return invalid("trend", "%d slopes do not fit series %s of length %d", len(tr.Slopes), s.Name, s.Len())
	}
	if opt.Save && r == nil {
		return invalid("save", "saving requires a renderer")
	}
	fig := trendFigure(s, tr)
	name := TrendFileName(s.Name, opt.WindowSize)
	if opt.Save {
		if _, err := r.Render(fig, filepath.Join(opt.SaveDir, name)); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}
	if opt.Show && v != nil {
		if err := v.Show(fig, name); err != nil {
			return fmt.Errorf("show %s: %w", name, err)
		}
	}
	return nil
}

func trendFigure(s Series, tr *Trend) chart.Figure {
	n := s.Len()
	ws := tr.WindowSize

	raw := make([]chart.Point, n)
	for i, y := range s.Values {
		raw[i] = chart.Point{X: float64(i), Y: y}
	}
	top := chart.Panel{
		Title:  "origin data",
		YLabel: s.Name,
		Layers: []chart.Layer{{Kind: chart.Line, Points: raw}},
		XRange: &chart.Range{Min: 0, Max: float64(n)},
		Ticks:  chart.IndexTicks(0, n, 1, strconv.Itoa),
	}
	for _, seg := range tr.Segments {
		pts := make([]chart.Point, len(seg.Y))
		for j, y := range seg.Y {
			pts[j] = chart.Point{X: float64(seg.Start + j), Y: y}
		}
		top.Layers = append(top.Layers, chart.Layer{Kind: chart.Line, Points: pts, Accent: true})
	}

	slopes := make([]chart.Point, len(tr.Slopes))
	for i, b := range tr.Slopes {
		slopes[i] = chart.Point{X: float64(i), Y: b}
	}
	bottom := chart.Panel{
		Title:  "trend plot",
		YLabel: "slope",
		Layers: []chart.Layer{{Kind: chart.Line, Points: slopes}},
		XRange: &chart.Range{Min: float64(-ws), Max: float64(n - ws)},
		Ticks:  chart.IndexTicks(-ws, n-ws, 1, strconv.Itoa),
	}
	if len(tr.Slopes) > 0 {
		bottom.HLines = []chart.HLine{{Y: 0, XMin: 0, XMax: float64(len(tr.Slopes) - 1)}}
	}
	return chart.Figure{Panels: []chart.Panel{top, bottom}}
}

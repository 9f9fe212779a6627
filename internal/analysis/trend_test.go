package analysis

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/kpiscope/internal/chart"
)

func linearSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3*float64(i) + 2
	}
	return out
}

func TestFitTrendLinearSlope(t *testing.T) {
	vals := linearSeries(20)
	tr, err := FitTrend(vals, 5)
	if err != nil {
		t.Fatalf("FitTrend: %v", err)
	}
	if len(tr.Slopes) != 15 {
		t.Fatalf("expected 15 slopes, got %d", len(tr.Slopes))
	}
	for i, b := range tr.Slopes {
		if math.Abs(b-3) > 1e-9 {
			t.Errorf("slope %d = %v, want 3", i, b)
		}
	}
	for _, seg := range tr.Segments {
		wantLen := min(5, 20-seg.Start)
		if len(seg.Y) != wantLen {
			t.Fatalf("segment at %d has %d points, want %d", seg.Start, len(seg.Y), wantLen)
		}
		for j, y := range seg.Y {
			if want := vals[seg.Start+j]; math.Abs(y-want) > 1e-9 {
				t.Errorf("segment %d point %d = %v, want %v", seg.Start, j, y, want)
			}
		}
	}
	if tr.Segments[0].Start != 5 || tr.Segments[len(tr.Segments)-1].Start != 19 {
		t.Fatalf("segments should start at 5..19")
	}
}

func TestFitTrendSlopeCount(t *testing.T) {
	for _, tc := range []struct{ n, ws int }{{10, 3}, {10, 9}, {10, 10}, {10, 25}, {0, 1}} {
		tr, err := FitTrend(make([]float64, tc.n), tc.ws)
		if err != nil {
			t.Fatalf("n=%d ws=%d: %v", tc.n, tc.ws, err)
		}
		if want := max(0, tc.n-tc.ws); len(tr.Slopes) != want {
			t.Errorf("n=%d ws=%d: got %d slopes, want %d", tc.n, tc.ws, len(tr.Slopes), want)
		}
	}
}

func TestFitTrendRejectsNonPositiveWindow(t *testing.T) {
	for _, ws := range []int{0, -3} {
		_, err := FitTrend([]float64{1, 2, 3}, ws)
		var ice *InvalidConfigurationError
		if !errors.As(err, &ice) || ice.Param != "window_size" {
			t.Fatalf("ws=%d: expected window_size error, got %v", ws, err)
		}
	}
}

func TestFitTrendSinglePointWindow(t *testing.T) {
	vals := []float64{4, 9, 1, 7}
	tr, err := FitTrend(vals, 1)
	if err != nil {
		t.Fatalf("FitTrend: %v", err)
	}
	for i, b := range tr.Slopes {
		if b != 0 {
			t.Errorf("slope %d = %v, want 0", i, b)
		}
		if got := tr.Segments[i].Y[0]; got != vals[i] {
			t.Errorf("prediction %d = %v, want previous value %v", i, got, vals[i])
		}
	}
}

func TestPlotTrendFigure(t *testing.T) {
	r := &recordingRenderer{}
	v := &recordingViewer{}
	s := Series{Name: "cpu", Values: linearSeries(20)}
	opt := TrendOptions{WindowSize: 5, Save: true, SaveDir: "out", Show: true}
	if err := PlotTrend(s, opt, r, v); err != nil {
		t.Fatalf("PlotTrend: %v", err)
	}
	if len(r.paths) != 1 || r.paths[0] != filepath.Join("out", "trend_cpu_ws_5") {
		t.Fatalf("render paths = %v", r.paths)
	}
	if len(v.names) != 1 || v.names[0] != "trend_cpu_ws_5" {
		t.Fatalf("viewer calls = %v", v.names)
	}
	fig := r.figs[0]
	if len(fig.Panels) != 2 {
		t.Fatalf("expected two panels, got %d", len(fig.Panels))
	}
	top, bottom := fig.Panels[0], fig.Panels[1]
	if len(top.Layers) != 1+15 {
		t.Fatalf("top panel should hold raw data plus 15 segments, got %d layers", len(top.Layers))
	}
	if !top.Layers[1].Accent || top.Layers[0].Accent {
		t.Fatalf("only prediction segments should be accented")
	}
	if *top.XRange != (chart.Range{Min: 0, Max: 20}) || len(top.Ticks) != 20 || top.YLabel != "cpu" {
		t.Fatalf("unexpected top panel %+v", top)
	}
	if *bottom.XRange != (chart.Range{Min: -5, Max: 15}) {
		t.Fatalf("bottom x range = %+v", *bottom.XRange)
	}
	if len(bottom.Ticks) != 20 || bottom.Ticks[0].Value != -5 || bottom.Ticks[0].Label != "-5" {
		t.Fatalf("bottom ticks = %+v", bottom.Ticks)
	}
	if len(bottom.HLines) != 1 || bottom.HLines[0] != (chart.HLine{Y: 0, XMin: 0, XMax: 14}) {
		t.Fatalf("bottom hlines = %+v", bottom.HLines)
	}
	if len(bottom.Layers[0].Points) != 15 {
		t.Fatalf("expected 15 slope points")
	}
}

func TestPlotTrendWindowCoversSeries(t *testing.T) {
	r := &recordingRenderer{}
	s := Series{Name: "short", Values: []float64{1, 2, 3}}
	if err := PlotTrend(s, TrendOptions{WindowSize: 3, Save: true, SaveDir: "x"}, r, nil); err != nil {
		t.Fatalf("PlotTrend: %v", err)
	}
	bottom := r.figs[0].Panels[1]
	if len(bottom.Layers[0].Points) != 0 || len(bottom.HLines) != 0 {
		t.Fatalf("expected an empty slope panel, got %+v", bottom)
	}
	if len(r.figs[0].Panels[0].Layers) != 1 {
		t.Fatalf("expected only the raw layer")
	}
}

func TestPlotTrendValidation(t *testing.T) {
	s := Series{Name: "x", Values: []float64{1, 2}}
	if err := PlotTrend(s, TrendOptions{WindowSize: 0}, nil, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if err := PlotTrend(s, TrendOptions{WindowSize: 1, Save: true}, nil, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration without renderer, got %v", err)
	}
}

func TestPlotFittedTrendReusesFit(t *testing.T) {
	s := Series{Name: "cpu", Values: linearSeries(12)}
	tr, err := FitTrend(s.Values, 4)
	if err != nil {
		t.Fatal(err)
	}
	tr.Slopes[0] = 99
	r := &recordingRenderer{}
	opt := TrendOptions{WindowSize: 4, Save: true, SaveDir: "out"}
	if err := PlotFittedTrend(s, tr, opt, r, nil); err != nil {
		t.Fatalf("PlotFittedTrend: %v", err)
	}
	if len(r.paths) != 1 || r.paths[0] != filepath.Join("out", "trend_cpu_ws_4") {
		t.Fatalf("render paths = %v", r.paths)
	}
	slopes := r.figs[0].Panels[1].Layers[0].Points
	if len(slopes) != 8 || slopes[0].Y != 99 {
		t.Fatalf("figure should plot the given trend, got %+v", slopes)
	}

	bad := []struct {
		name string
		tr   *Trend
		opt  TrendOptions
	}{
		{"nil trend", nil, opt},
		{"window mismatch", tr, TrendOptions{WindowSize: 3}},
		{"length mismatch", &Trend{WindowSize: 4, Slopes: []float64{1}}, opt},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if err := PlotFittedTrend(s, tc.tr, tc.opt, &recordingRenderer{}, nil); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected invalid configuration, got %v", err)
			}
		})
	}
}

func TestPlotTrendWritesImage(t *testing.T) {
	st := chart.DefaultStyle()
	st.WidthIn, st.HeightIn = 5, 4
	p, err := chart.NewPlotter(st)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	s := Series{Name: "latency", Values: []float64{5, 6, 4, 8, 9, 7, 10, 12, 11, 13}}
	if err := PlotTrend(s, TrendOptions{WindowSize: 3, Save: true, SaveDir: dir}, p, nil); err != nil {
		t.Fatalf("PlotTrend: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "trend_latency_ws_3.png")); err != nil {
		t.Fatalf("missing chart: %v", err)
	}
}

// Package chart turns a small figure description into image files using gonum/plot.
package chart

import "image/color"

// Kind selects how a layer is drawn.
type Kind int

const (
	Line Kind = iota
	Scatter
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Scatter:
		return "scatter"
	default:
		return "unknown"
	}
}

type Point struct {
	X, Y float64
}

// Layer is one drawn data set. A nil Color uses the theme's series colour,
// or its trend colour when Accent is set.
type Layer struct {
	Kind   Kind
	Points []Point
	Color  color.Color
	Accent bool
}

// Tick is an explicit x-axis tick.
type Tick struct {
	Value float64
	Label string
}

// HLine is a horizontal reference line spanning [XMin, XMax].
type HLine struct {
	Y, XMin, XMax float64
}

// Range fixes an axis to [Min, Max].
type Range struct {
	Min, Max float64
}

// Panel is a single set of axes.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	Layers []Layer
	HLines []HLine
	// XRange, when non-nil, overrides the data-derived x limits.
	XRange *Range
	// Ticks, when non-empty, replaces the default x tick marker.
	Ticks         []Tick
	VerticalTicks bool
}

// Figure is a column of panels drawn top to bottom on one canvas.
type Figure struct {
	Panels []Panel
}

// Renderer persists a figure. path carries no extension; the written path is returned.
type Renderer interface {
	Render(fig Figure, path string) (string, error)
}

// Viewer displays a figure interactively.
type Viewer interface {
	Show(fig Figure, name string) error
}

// NopViewer discards figures.
type NopViewer struct{}

func (NopViewer) Show(Figure, string) error { return nil }

// IndexTicks returns ticks at every step-th integer in [from, to), labelled by label.
func IndexTicks(from, to, step int, label func(i int) string) []Tick {
	if step < 1 {
		step = 1
	}
	var ticks []Tick
	for i := from; i < to; i += step {
		ticks = append(ticks, Tick{Value: float64(i), Label: label(i)})
	}
	return ticks
}

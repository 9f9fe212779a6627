package chart

import (
	"fmt"
	"image/color"
	"strings"
)

// Theme holds the colours and fonts applied to every panel.
type Theme struct {
	Name       string
	Background color.Color
	Grid       color.Color // nil disables the grid
	Series     color.Color
	Trend      color.Color
	Reference  color.Color
	TitleSize  float64 // points
}

// Style is passed to the renderer on every call; there is no process-wide style.
type Style struct {
	WidthIn  float64
	HeightIn float64
	// Format is the image encoding and the extension appended to output paths.
	Format string
	Theme  Theme
}

// DefaultStyle mimics the ggplot look: grey panel, white grid, 20x10 inches.
func DefaultStyle() Style {
	return Style{
		WidthIn:  20,
		HeightIn: 10,
		Format:   "png",
		Theme:    GGPlotTheme(),
	}
}

// PlainStyle is DefaultStyle on a white background without a grid.
func PlainStyle() Style {
	s := DefaultStyle()
	s.Theme = PlainTheme()
	return s
}

func GGPlotTheme() Theme {
	return Theme{
		Name:       "ggplot",
		Background: color.RGBA{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff},
		Grid:       color.White,
		Series:     color.RGBA{R: 0xe2, G: 0x4a, B: 0x33, A: 0xff},
		Trend:      color.RGBA{B: 0xff, A: 0xff},
		Reference:  color.Black,
		TitleSize:  16,
	}
}

func PlainTheme() Theme {
	return Theme{
		Name:       "plain",
		Background: color.White,
		Series:     color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		Trend:      color.RGBA{B: 0xff, A: 0xff},
		Reference:  color.Black,
		TitleSize:  16,
	}
}

// ThemeByName resolves a theme from its config name.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ggplot":
		return GGPlotTheme(), nil
	case "plain", "default":
		return PlainTheme(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme: %s (use ggplot or plain)", name)
	}
}

var supportedFormats = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "tif": {}, "tiff": {}, "svg": {}, "pdf": {}, "eps": {},
}

// Validate checks dimensions and format.
func (s Style) Validate() error {
	if s.WidthIn <= 0 || s.HeightIn <= 0 {
		return fmt.Errorf("invalid figure size %.1fx%.1f in", s.WidthIn, s.HeightIn)
	}
	if _, ok := supportedFormats[strings.ToLower(s.Format)]; !ok {
		return fmt.Errorf("unsupported image format: %s", s.Format)
	}
	return nil
}

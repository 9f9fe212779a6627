package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/kpiscope/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plotter renders figures with gonum/plot using a fixed Style.
type Plotter struct {
	style Style
}

// NewPlotter validates style and returns a renderer bound to it.
func NewPlotter(style Style) (*Plotter, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	style.Format = strings.ToLower(style.Format)
	return &Plotter{style: style}, nil
}

func (p *Plotter) Style() Style { return p.style }

// Render encodes fig and writes it atomically to path plus the style's extension.
func (p *Plotter) Render(fig Figure, path string) (string, error) {
	var buf bytes.Buffer
	if err := p.Encode(fig, &buf); err != nil {
		return "", err
	}
	out := p.withExt(path)
	if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write figure: %w", err)
	}
	return out, nil
}

func (p *Plotter) withExt(path string) string {
	ext := "." + p.style.Format
	if strings.HasSuffix(strings.ToLower(path), ext) {
		return path
	}
	return path + ext
}

// Encode draws fig onto a canvas of the configured format and writes it to w.
func (p *Plotter) Encode(fig Figure, w io.Writer) error {
	if len(fig.Panels) == 0 {
		return errors.New("figure has no panels")
	}
	rows := make([][]*plot.Plot, len(fig.Panels))
	for i, pn := range fig.Panels {
		pl, err := p.buildPlot(pn)
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		rows[i] = []*plot.Plot{pl}
	}

	c, err := draw.NewFormattedCanvas(vg.Length(p.style.WidthIn)*vg.Inch, vg.Length(p.style.HeightIn)*vg.Inch, p.style.Format)
	if err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}
	dc := draw.New(c)
	if len(rows) == 1 {
		rows[0][0].Draw(dc)
	} else {
		tiles := draw.Tiles{
			Rows:      len(rows),
			Cols:      1,
			PadTop:    vg.Points(4),
			PadBottom: vg.Points(4),
			PadLeft:   vg.Points(4),
			PadRight:  vg.Points(8),
			PadY:      vg.Points(18),
		}
		canvases := plot.Align(rows, tiles, dc)
		for i := range rows {
			rows[i][0].Draw(canvases[i][0])
		}
	}
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", p.style.Format, err)
	}
	return nil
}

func (p *Plotter) buildPlot(pn Panel) (*plot.Plot, error) {
	th := p.style.Theme
	pl := plot.New()
	pl.Title.Text = pn.Title
	if th.TitleSize > 0 {
		pl.Title.TextStyle.Font.Size = vg.Points(th.TitleSize)
	}
	pl.X.Label.Text = pn.XLabel
	pl.Y.Label.Text = pn.YLabel
	if th.Background != nil {
		pl.BackgroundColor = th.Background
	}
	if th.Grid != nil {
		g := plotter.NewGrid()
		g.Vertical.Color = th.Grid
		g.Horizontal.Color = th.Grid
		pl.Add(g)
	}

	for _, l := range pn.Layers {
		xys := finiteXYs(l.Points)
		col := l.Color
		if col == nil {
			col = th.Series
			if l.Accent {
				col = th.Trend
			}
		}
		switch l.Kind {
		case Line:
			ln, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("line: %w", err)
			}
			ln.LineStyle.Color = col
			ln.LineStyle.Width = vg.Points(1.5)
			pl.Add(ln)
		case Scatter:
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("scatter: %w", err)
			}
			sc.GlyphStyle.Color = col
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(3)
			pl.Add(sc)
		default:
			return nil, fmt.Errorf("unsupported layer kind %d", l.Kind)
		}
	}

	for _, h := range pn.HLines {
		ln, err := plotter.NewLine(plotter.XYs{{X: h.XMin, Y: h.Y}, {X: h.XMax, Y: h.Y}})
		if err != nil {
			return nil, fmt.Errorf("hline: %w", err)
		}
		if th.Reference != nil {
			ln.LineStyle.Color = th.Reference
		}
		ln.LineStyle.Width = vg.Points(1)
		pl.Add(ln)
	}

	// limits go last; Add widens the axes
	if pn.XRange != nil {
		pl.X.Min = pn.XRange.Min
		pl.X.Max = pn.XRange.Max
	}
	if len(pn.Ticks) > 0 {
		ticks := make([]plot.Tick, len(pn.Ticks))
		for i, t := range pn.Ticks {
			ticks[i] = plot.Tick{Value: t.Value, Label: t.Label}
		}
		pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	}
	if pn.VerticalTicks {
		pl.X.Tick.Label.Rotation = math.Pi / 2
		pl.X.Tick.Label.XAlign = draw.XRight
		pl.X.Tick.Label.YAlign = draw.YCenter
	}
	return pl, nil
}

// finiteXYs drops points gonum would reject (NaN, ±Inf).
func finiteXYs(pts []Point) plotter.XYs {
	xys := make(plotter.XYs, 0, len(pts))
	for _, pt := range pts {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
	}
	return xys
}

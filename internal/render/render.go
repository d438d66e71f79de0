// Package render draws dashboard charts as PNG images.
package render

import (
	"errors"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"evdash/internal/engine"
)

// ErrNothingToDraw is returned for results without any label.
var ErrNothingToDraw = errors.New("no data to draw")

const (
	minSize = 64
	maxSize = 4096
)

// Renderer draws one aggregation result in its dashboard chart kind.
type Renderer struct {
	Width  int
	Height int
}

func New(width, height int) Renderer {
	return Renderer{Width: clamp(width), Height: clamp(height)}
}

// WithSize overrides the canvas size; non-positive values keep the default.
func (r Renderer) WithSize(width, height int) Renderer {
	if width > 0 {
		r.Width = clamp(width)
	}
	if height > 0 {
		r.Height = clamp(height)
	}
	return r
}

func (r Renderer) PNG(w io.Writer, res engine.Result) error {
	if len(res.Labels) == 0 {
		return ErrNothingToDraw
	}

	p := engine.PresentationOf(res.Field)
	switch {
	case p.Kind == engine.KindPie:
		return r.pie(w, res, p)
	// A line needs two points to span an x range.
	case p.Kind == engine.KindLine && len(res.Labels) > 1:
		return r.line(w, res, p)
	default:
		return r.bar(w, res, p)
	}
}

func (r Renderer) bar(w io.Writer, res engine.Result, p engine.Presentation) error {
	bars := make([]chart.Value, len(res.Labels))
	for i, label := range res.Labels {
		c := color(p.Palette, i)
		bars[i] = chart.Value{
			Label: label,
			Value: float64(res.Series[i]),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}

	// Bars share two thirds of the plot width, the rest is spacing.
	slot := (r.Width - 100) / len(bars)
	barWidth := max(1, slot*2/3)

	graph := chart.BarChart{
		Title:      p.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   barWidth,
		BarSpacing: max(1, slot-barWidth),
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount(res))}},
		Bars:       bars,
	}
	return graph.Render(chart.PNG, w)
}

func (r Renderer) line(w io.Writer, res engine.Result, p engine.Presentation) error {
	xs := make([]float64, len(res.Labels))
	ys := make([]float64, len(res.Labels))
	ticks := make([]chart.Tick, len(res.Labels))
	for i, label := range res.Labels {
		xs[i] = float64(i)
		ys[i] = float64(res.Series[i])
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	stroke := color(p.Palette, 0)
	if p.Border != nil {
		stroke = toDrawing(*p.Border)
	}

	graph := chart.Chart{
		Title:      p.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(xs) - 1)},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount(res))},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    p.Title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: stroke,
					StrokeWidth: 2,
					DotColor:    color(p.Palette, 0),
					DotWidth:    3,
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

func (r Renderer) pie(w io.Writer, res engine.Result, p engine.Presentation) error {
	values := make([]chart.Value, len(res.Labels))
	for i, label := range res.Labels {
		values[i] = chart.Value{
			Label: label,
			Value: float64(res.Series[i]),
			Style: chart.Style{FillColor: color(p.Palette, i)},
		}
	}

	graph := chart.PieChart{
		Title:  p.Title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}
	return graph.Render(chart.PNG, w)
}

func color(p engine.Palette, i int) drawing.Color {
	c, ok := p.At(i)
	if !ok {
		return chart.ColorBlue
	}
	return toDrawing(c)
}

func toDrawing(c engine.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(c.A * 255))}
}

func maxCount(res engine.Result) int {
	m := 1
	for _, n := range res.Series {
		m = max(m, n)
	}
	return m
}

func clamp(n int) int {
	return min(max(n, minSize), maxSize)
}

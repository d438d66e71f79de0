package engine

import (
	"fmt"
	"slices"
	"strconv"

	"evdash/internal/models"
)

// Color is an RGB color with alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// CSS renders the color the way chart.js expects it.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Palette is reused cyclically when a chart has more labels than colors.
type Palette []Color

func (p Palette) At(i int) (Color, bool) {
	if len(p) == 0 {
		return Color{}, false
	}
	return p[i%len(p)], true
}

type ChartKind string

const (
	KindBar  ChartKind = "bar"
	KindLine ChartKind = "line"
	KindPie  ChartKind = "pie"
)

// Presentation is how one dimension is drawn on the dashboard.
type Presentation struct {
	Kind    ChartKind
	Title   string
	Palette Palette
	Border  *Color
}

var (
	teal   = Color{75, 192, 192, 0.6}
	purple = Color{153, 102, 255, 0.6}
	blue   = Color{54, 162, 235, 0.6}

	piePalette = Palette{
		{255, 99, 132, 0.6},
		{54, 162, 235, 0.6},
		{255, 206, 86, 0.6},
		{75, 192, 192, 0.6},
		{153, 102, 255, 0.6},
		{255, 159, 64, 0.6},
	}
)

var presentations = map[Field]Presentation{
	Manufacturer: {Kind: KindBar, Title: "Number of EVs by Manufacturer", Palette: Palette{teal}},
	ModelYear:    {Kind: KindLine, Title: "EVs by Model Year", Palette: Palette{purple}, Border: &Color{153, 102, 255, 1}},
	VehicleType:  {Kind: KindPie, Title: "Number of EVs by Type", Palette: piePalette},
	City:         {Kind: KindBar, Title: "Number of EVs by City", Palette: Palette{blue}},
	Eligibility:  {Kind: KindPie, Title: "CAFV Eligibility", Palette: Palette{teal, purple}},
}

// PresentationOf returns the chart settings for f; unknown fields get a
// plain bar chart.
func PresentationOf(f Field) Presentation {
	if p, ok := presentations[f]; ok {
		return p
	}
	return Presentation{Kind: KindBar, Title: f.String(), Palette: Palette{teal}}
}

// ToSeries binds a result to a palette. Labels and counts pass through
// unchanged; label i gets palette color i modulo the palette length.
func ToSeries(res Result, palette Palette) models.ChartSeries {
	s := models.ChartSeries{
		Dimension: res.Field.String(),
		Labels:    slices.Clone(res.Labels),
		Data:      slices.Clone(res.Series),
	}
	if s.Labels == nil {
		s.Labels = []string{}
	}
	if s.Data == nil {
		s.Data = []int{}
	}
	if len(palette) > 0 {
		s.Colors = make([]string, len(res.Labels))
		for i := range res.Labels {
			c, _ := palette.At(i)
			s.Colors[i] = c.CSS()
		}
	}
	return s
}

// BindChart is ToSeries with the dimension's own palette, kind and title.
func BindChart(res Result) models.ChartSeries {
	p := PresentationOf(res.Field)
	s := ToSeries(res, p.Palette)
	s.Kind = string(p.Kind)
	s.Title = p.Title
	if p.Border != nil {
		s.BorderColor = p.Border.CSS()
	}
	return s
}

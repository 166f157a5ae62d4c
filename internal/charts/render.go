package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	Width  = 640
	Height = 480
)

var ErrNoData = errors.New("no chart data")

var (
	registerOnce sync.Once
	registerErr  error
	font         *truetype.Font
)

// Register loads the renderer font. It runs once per process; later calls
// return the first outcome.
func Register() error {
	registerOnce.Do(func() {
		font, registerErr = chart.GetDefaultFont()
	})
	return registerErr
}

// RenderPie writes the pie series of r as SVG. A pie needs at least one
// positive slice; anything else is ErrNoData.
func RenderPie(w io.Writer, r *Result) error {
	if r == nil || r.Pie.Empty() {
		return ErrNoData
	}
	values := r.Pie.Values()
	if !anyPositive(values) {
		return ErrNoData
	}
	if err := Register(); err != nil {
		return fmt.Errorf("chart registration: %w", err)
	}

	pie := chart.PieChart{
		Title:  "Crime Type Distribution",
		Font:   font,
		Width:  Width,
		Height: Height,
		Values: make([]chart.Value, 0, len(r.Pie.Labels)),
	}
	for i, label := range r.Pie.Labels {
		pie.Values = append(pie.Values, chart.Value{
			Label: label,
			Value: values[i],
			Style: chart.Style{
				FillColor:   hexColor(ColorAt(i)),
				StrokeColor: drawing.ColorWhite,
			},
		})
	}

	return pie.Render(chart.SVG, w)
}

func anyPositive(values []float64) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}

// RenderBar writes the bar series of r as SVG.
func RenderBar(w io.Writer, r *Result) error {
	if r == nil || r.Bar.Empty() {
		return ErrNoData
	}
	if err := Register(); err != nil {
		return fmt.Errorf("chart registration: %w", err)
	}

	values := r.Bar.Values()
	bar := chart.BarChart{
		Title:    "Crime Counts by Type",
		Font:     font,
		Width:    Width,
		Height:   Height,
		BarWidth: 48,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(values)},
		},
		Bars: make([]chart.Value, 0, len(r.Bar.Labels)),
	}
	for i, label := range r.Bar.Labels {
		bar.Bars = append(bar.Bars, chart.Value{
			Label: label,
			Value: values[i],
			Style: chart.Style{
				FillColor:   hexColor(BarColor),
				StrokeColor: hexColor(BarColor),
			},
		})
	}

	return bar.Render(chart.SVG, w)
}

// axisMax leaves headroom above the tallest bar and keeps the range non-empty
// when every count is equal or zero.
func axisMax(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return 1
	}
	return max * 1.1
}

// hexColor parses a CSS "#rrggbb" colour.
func hexColor(css string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(css, "#"))
}

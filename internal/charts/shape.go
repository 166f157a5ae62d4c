// Package charts turns aggregate mappings from the analysis service into
// chart series and renders them.
package charts

import "github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"

// Palette colours pie segments by position, wrapping after the last entry.
var Palette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#8A2BE2", "#4BC0C0", "#FF7F50", "#7FFF00"}

const (
	BarSeriesLabel = "Crime Count"
	BarColor       = "#007bff"
	HighestPrefix  = "Highest Crime Count: "
)

// Dataset mirrors a Chart.js dataset. BackgroundColor is either a single colour
// string or one colour per point.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor"`
}

// Series mirrors a Chart.js data object.
type Series struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Empty reports whether there is nothing to draw.
func (s Series) Empty() bool { return len(s.Labels) == 0 }

// Values returns the first dataset's data, or nil.
func (s Series) Values() []float64 {
	if len(s.Datasets) == 0 {
		return nil
	}
	return s.Datasets[0].Data
}

// Result is the chart-ready form of one analysis.
type Result struct {
	Pie               Series `json:"pie"`
	Bar               Series `json:"bar"`
	HighestCountCrime string `json:"highest_count_crime"`
}

// HighestText is the display line for the highest-count label, empty when the
// service named none. The label is shown as given, never recomputed.
func (r *Result) HighestText() string {
	if r == nil || r.HighestCountCrime == "" {
		return ""
	}
	return HighestPrefix + r.HighestCountCrime
}

// Shape builds chart series from raw service output, keeping service order.
func Shape(raw *models.RawAnalysis) *Result {
	if raw == nil {
		return &Result{}
	}

	pieLabels, pieValues := split(raw.PieData)
	colors := make([]string, len(pieLabels))
	for i := range pieLabels {
		colors[i] = ColorAt(i)
	}

	barLabels, barValues := split(raw.BarData)

	return &Result{
		Pie: Series{
			Labels:   pieLabels,
			Datasets: []Dataset{{Data: pieValues, BackgroundColor: colors}},
		},
		Bar: Series{
			Labels:   barLabels,
			Datasets: []Dataset{{Label: BarSeriesLabel, Data: barValues, BackgroundColor: BarColor}},
		},
		HighestCountCrime: raw.HighestCountCrime,
	}
}

// ColorAt returns the palette colour for the i-th segment.
func ColorAt(i int) string {
	return Palette[i%len(Palette)]
}

func split(entries []models.Entry) ([]string, []float64) {
	labels := make([]string, len(entries))
	values := make([]float64, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
		values[i] = e.Value
	}
	return labels, values
}

package charts

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
)

func sample() *models.RawAnalysis {
	return &models.RawAnalysis{
		PieData:           []models.Entry{{Label: "Theft", Value: 10}, {Label: "Assault", Value: 5}},
		BarData:           []models.Entry{{Label: "Theft", Value: 10}, {Label: "Assault", Value: 5}},
		HighestCountCrime: "Theft",
	}
}

func TestShape(t *testing.T) {
	r := Shape(sample())

	assert.Equal(t, []string{"Theft", "Assault"}, r.Pie.Labels)
	assert.Equal(t, []float64{10, 5}, r.Pie.Values())
	assert.Equal(t, []string{"#FF6384", "#36A2EB"}, r.Pie.Datasets[0].BackgroundColor)

	require.Len(t, r.Bar.Datasets, 1)
	assert.Equal(t, "Crime Count", r.Bar.Datasets[0].Label)
	assert.Equal(t, []string{"Theft", "Assault"}, r.Bar.Labels)
	assert.Equal(t, []float64{10, 5}, r.Bar.Values())

	assert.Contains(t, r.HighestText(), "Theft")
}

func TestShapeKeepsServiceOrder(t *testing.T) {
	r := Shape(&models.RawAnalysis{
		PieData: []models.Entry{{Label: "Zeta", Value: 1}, {Label: "Alpha", Value: 9}, {Label: "Mid", Value: 5}},
	})
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, r.Pie.Labels)
	assert.True(t, r.Bar.Empty())
}

func TestPaletteCycles(t *testing.T) {
	var entries []models.Entry
	for i := 0; i < 9; i++ {
		entries = append(entries, models.Entry{Label: fmt.Sprintf("c%d", i), Value: 1})
	}

	colors := Shape(&models.RawAnalysis{PieData: entries}).Pie.Datasets[0].BackgroundColor.([]string)
	assert.Equal(t, Palette[0], colors[7])
	assert.Equal(t, Palette[1], colors[8])
}

func TestHighestTextPassThrough(t *testing.T) {
	r := Shape(&models.RawAnalysis{
		BarData:           []models.Entry{{Label: "Theft", Value: 10}, {Label: "Fraud", Value: 50}},
		HighestCountCrime: "Theft",
	})
	assert.Equal(t, "Highest Crime Count: Theft", r.HighestText())

	var empty *Result
	assert.Empty(t, empty.HighestText())
	assert.Empty(t, Shape(nil).HighestText())
}

func TestRegisterIsIdempotent(t *testing.T) {
	require.NoError(t, Register())
	first := font
	require.NotNil(t, first)

	require.NoError(t, Register())
	require.NoError(t, Register())
	assert.Same(t, first, font)
}

func TestRenderSVG(t *testing.T) {
	r := Shape(sample())

	var pie bytes.Buffer
	require.NoError(t, RenderPie(&pie, r))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(pie.String()), "<svg"))
	assert.Contains(t, pie.String(), "Theft")

	var bar bytes.Buffer
	require.NoError(t, RenderBar(&bar, r))
	assert.Contains(t, bar.String(), "Assault")
}

func TestRenderBarEqualCounts(t *testing.T) {
	r := Shape(&models.RawAnalysis{BarData: []models.Entry{{Label: "Theft", Value: 3}, {Label: "Fraud", Value: 3}}})

	var buf bytes.Buffer
	assert.NoError(t, RenderBar(&buf, r))
}

func TestRenderPieWithoutPositiveSlices(t *testing.T) {
	for _, values := range [][]float64{{0, 0}, {0, -1}} {
		r := Shape(&models.RawAnalysis{PieData: []models.Entry{
			{Label: "Theft", Value: values[0]},
			{Label: "Fraud", Value: values[1]},
		}})

		var buf bytes.Buffer
		assert.ErrorIs(t, RenderPie(&buf, r), ErrNoData)
		assert.Zero(t, buf.Len())
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPie(&buf, &Result{}), ErrNoData)
	assert.ErrorIs(t, RenderBar(&buf, nil), ErrNoData)
}

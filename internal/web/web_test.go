package web

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
)

func TestRenderLanding(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageLanding, nil))
	assert.Contains(t, buf.String(), `href="/analysis"`)
}

func TestRenderAnalysisPreviewAndCharts(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rows := models.PreviewRows{{"type", "count"}}
	for i := 0; i < 7; i++ {
		rows = append(rows, []string{"Theft", "1"})
	}
	snap := services.Snapshot{
		File:        &models.UploadedFile{Name: "crimes.csv", Size: 10},
		Preview:     intake.BuildPreview(rows),
		States:      []string{"CA", "TX"},
		Years:       []string{"2020", "2021"},
		Selection:   models.AnalysisSelection{State: "TX", Year: "2021"},
		Status:      models.Succeeded(),
		Result:      charts.Shape(&models.RawAnalysis{PieData: []models.Entry{{Label: "Theft", Value: 1}}, HighestCountCrime: "Theft"}),
		HighestText: "Highest Crime Count: Theft",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageAnalysis, snap))
	html := buf.String()

	assert.Equal(t, 5, strings.Count(html, "<td>Theft</td>"))
	assert.Contains(t, html, `colspan="2">...and more rows</td>`)
	assert.Contains(t, html, `<option value="TX" selected>TX</option>`)
	assert.Contains(t, html, "Highest Crime Count: Theft")
	assert.Contains(t, html, "/analysis/charts/pie.svg")
	assert.NotContains(t, html, "/analysis/charts/bar.svg")
}

func TestRenderAnalysisLoadingDisablesSubmit(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageAnalysis, services.Snapshot{
		Status: models.Loading(),
		Error:  "",
	}))
	assert.Contains(t, buf.String(), `<button type="submit" disabled>Analyzing...</button>`)
}

func TestRenderAnalysisEscapesBanner(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageAnalysis, services.Snapshot{
		Status: models.Failed("<b>x</b>"),
		Error:  "Error performing analysis: <b>x</b>",
	}))
	assert.Contains(t, buf.String(), "Error performing analysis: &lt;b&gt;x&lt;/b&gt;")
}

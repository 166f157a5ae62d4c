package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	moreStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(header []string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// previewTable draws the header, the preview rows and, when truncated, one
// "...and more rows" line.
func previewTable(p models.Preview) string {
	t := newTable(p.Header)
	for _, row := range p.Rows {
		t.Row(row...)
	}
	rendered := t.Render()
	if p.More {
		rendered += "\n" + moreStyle.Render(intake.MoreRowsText)
	}
	return rendered
}

func seriesTable(title string, s charts.Series) string {
	t := newTable([]string{"Crime", "Value"})
	values := s.Values()
	for i, label := range s.Labels {
		t.Row(label, strconv.FormatFloat(values[i], 'f', -1, 64))
	}
	return titleStyle.Render(title) + "\n" + t.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLine(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}

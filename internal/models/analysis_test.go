package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestYearOptions(t *testing.T) {
	years := YearOptions(time.Date(2003, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2000", "2001", "2002", "2003"}, years)

	assert.Empty(t, YearOptions(time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSelectionComplete(t *testing.T) {
	assert.False(t, AnalysisSelection{}.Complete())
	assert.False(t, AnalysisSelection{State: "Lagos"}.Complete())
	assert.False(t, AnalysisSelection{Year: "2020"}.Complete())
	assert.True(t, AnalysisSelection{State: "Lagos", Year: "2020"}.Complete())
}

package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/velihant/financehub-api/internal/models"
)

func TestNextRun(t *testing.T) {
	from := time.Date(2026, time.January, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency models.ReportFrequency
		want      time.Time
	}{
		{
			name:      "daily runs tomorrow morning",
			frequency: models.ReportFrequencyDaily,
			want:      time.Date(2026, time.January, 16, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly runs in seven days",
			frequency: models.ReportFrequencyWeekly,
			want:      time.Date(2026, time.January, 22, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly runs on the first of next month",
			frequency: models.ReportFrequencyMonthly,
			want:      time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextRun(from, tt.frequency))
		})
	}
}

func TestNextRunMonthlyAtYearBoundary(t *testing.T) {
	from := time.Date(2026, time.December, 20, 9, 0, 0, 0, time.UTC)
	want := time.Date(2027, time.January, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, want, NextRun(from, models.ReportFrequencyMonthly))
}

func TestNextRunUnknownFrequencyIsPassthrough(t *testing.T) {
	from := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, from, NextRun(from, models.ReportFrequency("hourly")))
}

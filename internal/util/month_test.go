package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousMonth_SameYear(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{2026, 6, 2026, 5},   // June -> May
		{2026, 12, 2026, 11}, // Dec -> Nov
		{2026, 2, 2026, 1},   // Feb -> Jan
	}

	for _, tt := range tests {
		gotYear, gotMonth := PreviousMonth(tt.year, tt.month)
		if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
			t.Errorf("PreviousMonth(%d, %d) = (%d, %d), want (%d, %d)",
				tt.year, tt.month, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	gotYear, gotMonth := PreviousMonth(2026, 1)
	if gotYear != 2025 || gotMonth != 12 {
		t.Errorf("PreviousMonth(2026, 1) = (%d, %d), want (2025, 12)", gotYear, gotMonth)
	}
}

func TestMonthBounds(t *testing.T) {
	start, next := MonthBounds(time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), next)

	start, next = MonthBounds(time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestMonthBounds_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2024-03-31 20:00 UTC is already April 1st in Jakarta (UTC+7)
	start, _ := MonthBounds(time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.April, start.Month())
	assert.Equal(t, loc, start.Location())
}

func TestSameMonth(t *testing.T) {
	march15 := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	assert.True(t, SameMonth(march15, time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC), time.UTC))
	assert.False(t, SameMonth(march15, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), time.UTC))
	assert.False(t, SameMonth(march15, time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC), time.UTC))
}

func TestBudgetWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid year",
			now:       time.Date(2024, time.April, 10, 15, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "january reaches back into december",
			now:       time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "leap february",
			now:       time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := BudgetWindow(tt.now, time.UTC)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

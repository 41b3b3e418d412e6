package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecurringIntervalIsValid(t *testing.T) {
	tests := []struct {
		interval RecurringInterval
		expected bool
	}{
		{RecurringIntervalDaily, true},
		{RecurringIntervalWeekly, true},
		{RecurringIntervalMonthly, true},
		{RecurringIntervalYearly, true},
		{"HOURLY", false},
		{"monthly", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.interval.IsValid())
		})
	}
}

func TestNextRecurringDate(t *testing.T) {
	base := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from     time.Time
		interval RecurringInterval
		expected time.Time
	}{
		{"daily", base, RecurringIntervalDaily, time.Date(2024, time.January, 16, 10, 30, 0, 0, time.UTC)},
		{"weekly", base, RecurringIntervalWeekly, time.Date(2024, time.January, 22, 10, 30, 0, 0, time.UTC)},
		{"monthly keeps day of month", base, RecurringIntervalMonthly, time.Date(2024, time.February, 15, 10, 30, 0, 0, time.UTC)},
		{"yearly keeps month and day", base, RecurringIntervalYearly, time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)},
		{"daily across month end", time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), RecurringIntervalDaily, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"weekly across year end", time.Date(2024, time.December, 28, 0, 0, 0, 0, time.UTC), RecurringIntervalWeekly, time.Date(2025, time.January, 4, 0, 0, 0, 0, time.UTC)},
		{"monthly across year end", time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), RecurringIntervalMonthly, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"monthly from Jan 31 in leap year rolls into March", time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), RecurringIntervalMonthly, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{"monthly from Jan 31 in common year rolls into March", time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC), RecurringIntervalMonthly, time.Date(2023, time.March, 3, 0, 0, 0, 0, time.UTC)},
		{"monthly from Mar 31 rolls into May", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), RecurringIntervalMonthly, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{"yearly from leap day rolls to Mar 1", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), RecurringIntervalYearly, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"unknown interval is a no-op", base, "FORTNIGHTLY", base},
		{"empty interval is a no-op", base, "", base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRecurringDate(tt.from, tt.interval)
			assert.True(t, tt.expected.Equal(got), "NextRecurringDate(%s, %s) = %s, want %s", tt.from, tt.interval, got, tt.expected)
		})
	}
}

func TestNextRecurringDate_DailyAndWeeklyAreFixedDurations(t *testing.T) {
	start := time.Date(2023, time.January, 1, 8, 0, 0, 0, time.UTC)
	for d := 0; d < 800; d += 13 {
		from := start.AddDate(0, 0, d)
		assert.Equal(t, 24*time.Hour, NextRecurringDate(from, RecurringIntervalDaily).Sub(from))
		assert.Equal(t, 7*24*time.Hour, NextRecurringDate(from, RecurringIntervalWeekly).Sub(from))
	}
}

func TestNextRecurringDate_MonthlyPreservesDayUpTo28(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		for day := 1; day <= 28; day++ {
			from := time.Date(2025, month, day, 12, 0, 0, 0, time.UTC)
			next := NextRecurringDate(from, RecurringIntervalMonthly)
			assert.Equal(t, day, next.Day())
			assert.Equal(t, (int(month)%12)+1, int(next.Month()))
		}
	}
}

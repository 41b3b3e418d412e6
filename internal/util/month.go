package util

import "time"

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthBounds returns the first instant of t's month and of the following
// month, both in loc
func MonthBounds(t time.Time, loc *time.Location) (start, next time.Time) {
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// SameMonth returns true if a and b fall in the same calendar month and year in loc
func SameMonth(a, b time.Time, loc *time.Location) bool {
	la, lb := a.In(loc), b.In(loc)
	return la.Year() == lb.Year() && la.Month() == lb.Month()
}

// BudgetWindow returns the half-open range [start, end) that budget usage is
// measured over: start is the first day of the previous month and end is the
// last day of the current month, both at midnight in loc.
func BudgetWindow(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	prevYear, prevMonth := PreviousMonth(local.Year(), int(local.Month()))
	start = time.Date(prevYear, time.Month(prevMonth), 1, 0, 0, 0, 0, loc)
	// Day 0 of next month is the last day of this one
	end = time.Date(local.Year(), local.Month()+1, 0, 0, 0, 0, 0, loc)
	return start, end
}

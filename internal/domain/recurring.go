package domain

import "time"

type RecurringInterval string

const (
	RecurringIntervalDaily   RecurringInterval = "DAILY"
	RecurringIntervalWeekly  RecurringInterval = "WEEKLY"
	RecurringIntervalMonthly RecurringInterval = "MONTHLY"
	RecurringIntervalYearly  RecurringInterval = "YEARLY"
)

// IsValid reports whether i is one of the supported intervals
func (i RecurringInterval) IsValid() bool {
	switch i {
	case RecurringIntervalDaily, RecurringIntervalWeekly, RecurringIntervalMonthly, RecurringIntervalYearly:
		return true
	}
	return false
}

// NextRecurringDate adds exactly one interval unit to from.
//
// Month and year steps use time.AddDate, so overflowing days normalize into
// the following month: Jan 31 + 1 month is Mar 2 or Mar 3, and Feb 29 + 1
// year is Mar 1. Unknown intervals return from unchanged; callers that care
// check IsValid first.
func NextRecurringDate(from time.Time, interval RecurringInterval) time.Time {
	switch interval {
	case RecurringIntervalDaily:
		return from.AddDate(0, 0, 1)
	case RecurringIntervalWeekly:
		return from.AddDate(0, 0, 7)
	case RecurringIntervalMonthly:
		return from.AddDate(0, 1, 0)
	case RecurringIntervalYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

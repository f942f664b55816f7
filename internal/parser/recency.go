package parser

import (
	"strconv"
	"time"
)

// RecencyFilter is a pure predicate over the leading YYYY-MM of a record's
// start date. The window is evaluated at month granularity: the cutoff is
// the reference time minus the window, truncated to year and month, so
// callers must not assume day-level precision.
type RecencyFilter struct {
	cutoffYear  int
	cutoffMonth int
}

// NewRecencyFilter builds a filter whose cutoff is now minus windowDays,
// truncated to (year, month). The reference time is injected so tests can
// anchor the window.
func NewRecencyFilter(now time.Time, windowDays int) RecencyFilter {
	cutoff := now.AddDate(0, 0, -windowDays)
	return RecencyFilter{
		cutoffYear:  cutoff.Year(),
		cutoffMonth: int(cutoff.Month()),
	}
}

// IsRecent reports whether the date string falls inside the window. Dates
// shorter than seven characters or with unparseable year/month fields are
// treated as not recent rather than as errors.
func (f RecencyFilter) IsRecent(date string) bool {
	if len(date) < 7 {
		return false
	}

	year, err := strconv.Atoi(date[0:4])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(date[5:7])
	if err != nil {
		return false
	}

	if year > f.cutoffYear {
		return true
	}
	return year == f.cutoffYear && month >= f.cutoffMonth
}

// Copyright (c) 2024 Neomantra Corp

package mbin

import (
	"time"

	"github.com/neomantra/ymdflag"
)

// dateOnlyLayout and dateTimeLayout are the two date strings accepted
// by DateToUnixNanos, matching original_source's date_to_unix_nanos:
// a bare date defaults to midnight, both are always UTC.
const (
	dateOnlyLayout = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// DateToUnixNanos parses a "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" string
// as UTC and returns its unix-nanos timestamp.
func DateToUnixNanos(dateStr string) (int64, error) {
	layout := dateTimeLayout
	if len(dateStr) == len(dateOnlyLayout) {
		layout = dateOnlyLayout
	}
	t, err := time.ParseInLocation(layout, dateStr, time.UTC)
	if err != nil {
		return 0, wrapf(ErrInvalidDateFormat, "%q: %v", dateStr, err)
	}
	return t.UnixNano(), nil
}

// UnixNanosToDate formats a unix-nanos timestamp as "YYYY-MM-DD HH:MM:SS" UTC.
func UnixNanosToDate(unixNanos int64) string {
	return time.Unix(0, unixNanos).UTC().Format(dateTimeLayout)
}

// YearEndOr returns the earlier of date's next January 1st at midnight
// and cap. Used to walk an update range in year-aligned windows without
// ever requesting past the caller's true end date.
func YearEndOr(date, cap time.Time) time.Time {
	nextYearStart := time.Date(date.Year()+1, time.January, 1, 0, 0, 0, 0, date.Location())
	if nextYearStart.Before(cap) {
		return nextYearStart
	}
	return cap
}

// YMD returns the YYYYMMDD for t in t's location, or 0 for a zero time.
// Grounded directly on the teacher's internal/file/split.go, which
// calls this same function to build per-day output paths.
func YMD(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	return uint32(ymdflag.TimeToYMD(t))
}

// Package analytics computes dashboard summaries (streaks, weekly trends,
// mood distribution, badges) from snapshots of a user's records. Every
// function is pure: callers pass the records and the current day, and the
// location of that day is the calendar used for bucketing.
package analytics

import (
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKey is a calendar day with the time of day discarded.
type DayKey string

func KeyOf(t time.Time, loc *time.Location) DayKey {
	return DayKey(t.In(loc).Format(dayKeyLayout))
}

// Day walks are anchored at local noon. Some zones skip midnight on DST
// transitions, noon always exists.

// noonOf returns local noon of the day containing t.
func noonOf(t time.Time) time.Time {
	return dayOffset(t, 0)
}

// dayOffset returns local noon n calendar days away from the day of t.
func dayOffset(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 12, 0, 0, 0, t.Location())
}

// Time returns local noon of the day.
func (k DayKey) Time(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, err
	}
	return dayOffset(t, 0), nil
}

package analytics

import (
	"sort"
	"time"

	"github.com/limbo/wellness/pkg/entity"
)

func daySet(records []entity.MetricRecord, loc *time.Location) map[DayKey]struct{} {
	days := make(map[DayKey]struct{}, len(records))
	for _, r := range records {
		if r.Timestamp.IsZero() {
			continue
		}
		days[KeyOf(r.Timestamp, loc)] = struct{}{}
	}
	return days
}

// ComputeStreak counts consecutive calendar days with at least one record,
// walking backward from today and stopping at the first gap. A missing
// today gives 0.
func ComputeStreak(records []entity.MetricRecord, today time.Time) int {
	loc := today.Location()
	days := daySet(records, loc)
	if len(days) == 0 {
		return 0
	}
	streak := 0
	day := noonOf(today)
	for {
		if _, ok := days[KeyOf(day, loc)]; !ok {
			return streak
		}
		streak++
		day = dayOffset(day, -1)
	}
}

// LongestStreak returns the longest run of consecutive days anywhere in the
// history.
func LongestStreak(records []entity.MetricRecord, loc *time.Location) int {
	days := daySet(records, loc)
	if len(days) == 0 {
		return 0
	}
	sorted := make([]time.Time, 0, len(days))
	for k := range days {
		t, err := k.Time(loc)
		if err != nil {
			continue
		}
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})
	longest, run := 0, 0
	for i, day := range sorted {
		if i > 0 && KeyOf(dayOffset(sorted[i-1], 1), loc) == KeyOf(day, loc) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

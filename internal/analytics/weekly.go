package analytics

import (
	"time"

	"github.com/limbo/wellness/pkg/entity"
)

const WeekDays = 7

type DailyBucket struct {
	Date            DayKey   `json:"date"`
	Weekday         string   `json:"weekday"`
	MoodAverage     *float64 `json:"mood"`
	ActivityMinutes int      `json:"activity"`
	SampleCount     int      `json:"count"`
}

// ComputeWeeklySummary builds the trailing 7-day window ending today, oldest
// first. Mood records are folded into a per-day running mean, activity
// records are summed. Records outside the window, with zero timestamps or
// with unrecognized mood symbols are skipped.
func ComputeWeeklySummary(moodRecords, activityRecords []entity.MetricRecord, today time.Time) []DailyBucket {
	loc := today.Location()
	start := dayOffset(noonOf(today), -(WeekDays - 1))

	index := make(map[DayKey]int, WeekDays)
	means := make([]RunningMean, WeekDays)
	buckets := make([]DailyBucket, WeekDays)
	for i := range WeekDays {
		day := dayOffset(start, i)
		key := KeyOf(day, loc)
		index[key] = i
		buckets[i] = DailyBucket{
			Date:    key,
			Weekday: day.Weekday().String()[:3],
		}
	}

	for _, r := range moodRecords {
		if r.Timestamp.IsZero() {
			continue
		}
		i, ok := index[KeyOf(r.Timestamp, loc)]
		if !ok {
			continue
		}
		score := MoodScore(r.Payload.Mood)
		if score == 0 {
			continue
		}
		means[i].Add(score)
	}

	for _, r := range activityRecords {
		if r.Timestamp.IsZero() || r.Payload.Minutes <= 0 {
			continue
		}
		i, ok := index[KeyOf(r.Timestamp, loc)]
		if !ok {
			continue
		}
		buckets[i].ActivityMinutes += r.Payload.Minutes
	}

	for i := range buckets {
		buckets[i].MoodAverage = means[i].Mean()
		buckets[i].SampleCount = means[i].Count()
	}
	return buckets
}

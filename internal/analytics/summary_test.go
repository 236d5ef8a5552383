package analytics_test

import (
	"testing"
	"time"

	"github.com/limbo/wellness/internal/analytics"
	"github.com/limbo/wellness/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func sleepAt(t time.Time, hours float64, quality string) entity.MetricRecord {
	return entity.MetricRecord{
		Kind:      entity.KindSleep,
		Timestamp: t,
		Payload:   entity.RecordPayload{Hours: hours, Quality: quality},
	}
}

func TestSleepScore(t *testing.T) {
	testCases := []struct {
		Desc    string
		Records []entity.MetricRecord
		Score   int
	}{
		{Desc: "no logs", Records: nil, Score: 0},
		{Desc: "perfect night", Records: []entity.MetricRecord{sleepAt(today, 8, "😊")}, Score: 100},
		{Desc: "long sleep capped", Records: []entity.MetricRecord{sleepAt(today, 11, "😊")}, Score: 100},
		{Desc: "short and bad", Records: []entity.MetricRecord{sleepAt(today, 4, "😫")}, Score: 35},
		{
			Desc:    "averaged",
			Records: []entity.MetricRecord{sleepAt(today, 8, "😊"), sleepAt(daysAgo(1), 4, "😫")},
			Score:   68,
		},
		{Desc: "unknown quality counts as neutral", Records: []entity.MetricRecord{sleepAt(today, 8, "?")}, Score: 85},
		{
			Desc:    "invalid logs excluded",
			Records: []entity.MetricRecord{sleepAt(today, 0, "😊"), sleepAt(time.Time{}, 8, "😫"), sleepAt(today, 8, "😊")},
			Score:   100,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Score, analytics.SleepScore(tc.Records))
		})
	}
}

func TestWellnessScore(t *testing.T) {
	assert.Equal(t, 0, analytics.WellnessScore(analytics.Totals{}))
	assert.Equal(t, 50, analytics.WellnessScore(analytics.Totals{ActivityMinutes: 75, MoodCheckIns: 5, SleepScore: 50}))
	assert.Equal(t, 100, analytics.WellnessScore(analytics.Totals{ActivityMinutes: 150, MoodCheckIns: 10, SleepScore: 100}))
	assert.Equal(t, 100, analytics.WellnessScore(analytics.Totals{ActivityMinutes: 900, MoodCheckIns: 80, SleepScore: 100}))
}

func TestGoalProgress(t *testing.T) {
	totals := analytics.Totals{ActivityMinutes: 300, MoodCheckIns: 5, SleepScore: 72}
	testCases := []struct {
		Desc     string
		Goals    entity.WeeklyGoals
		Expected []analytics.Goal
	}{
		{
			Desc:  "default goals",
			Goals: analytics.DefaultGoals(),
			Expected: []analytics.Goal{
				{Name: "exercise", Percent: 100},
				{Name: "mood_check_ins", Percent: 50},
				{Name: "sleep_score", Percent: 72},
			},
		},
		{
			Desc:  "custom goals",
			Goals: entity.WeeklyGoals{ExerciseMinutes: 600, MoodCheckIns: 4},
			Expected: []analytics.Goal{
				{Name: "exercise", Percent: 50},
				{Name: "mood_check_ins", Percent: 100},
				{Name: "sleep_score", Percent: 72},
			},
		},
		{
			Desc:  "unset goals fall back to defaults",
			Goals: entity.WeeklyGoals{MoodCheckIns: 20},
			Expected: []analytics.Goal{
				{Name: "exercise", Percent: 100},
				{Name: "mood_check_ins", Percent: 25},
				{Name: "sleep_score", Percent: 72},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Expected, analytics.GoalProgress(totals, tc.Goals))
		})
	}
}

func TestMoodDistribution(t *testing.T) {
	records := []entity.MetricRecord{
		moodAt(today, "😊"),
		moodAt(today, "😢"),
		moodAt(daysAgo(3), "😊"),
		moodAt(daysAgo(40), "🙂"),
		moodAt(today, "🤖"),
		moodAt(time.Time{}, "😊"),
	}
	assert.Equal(t, []analytics.MoodCount{
		{Mood: "😢", Score: 1, Count: 1},
		{Mood: "🙂", Score: 4, Count: 1},
		{Mood: "😊", Score: 5, Count: 2},
	}, analytics.MoodDistribution(records))
	assert.Equal(t, 4, analytics.MoodCheckIns(records))
	assert.Empty(t, analytics.MoodDistribution(nil))
}

func TestTotalActivity(t *testing.T) {
	records := []entity.MetricRecord{
		exerciseAt(today, 30),
		exerciseAt(daysAgo(90), 45),
		exerciseAt(today, -5),
		exerciseAt(time.Time{}, 100),
	}
	assert.Equal(t, 75, analytics.TotalActivity(records))
}

func TestMoodScore(t *testing.T) {
	for _, m := range analytics.MoodScale {
		assert.Equal(t, m.Score, analytics.MoodScore(m.Symbol))
		assert.True(t, analytics.IsMoodSymbol(m.Symbol))
	}
	assert.Equal(t, 0, analytics.MoodScore("🤖"))
	assert.False(t, analytics.IsMoodSymbol(""))
}

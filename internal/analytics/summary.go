package analytics

import (
	"math"

	"github.com/limbo/wellness/pkg/entity"
)

const (
	ExerciseGoalMinutes = 150
	MoodCheckInGoal     = 10
	sleepTargetHours    = 8.0
)

// SleepQualityScale maps sleep quality symbols to a 0..1 weight.
var SleepQualityScale = map[string]float64{
	"😫": 0,
	"😐": 0.5,
	"😊": 1,
}

func IsSleepQuality(symbol string) bool {
	_, ok := SleepQualityScale[symbol]
	return ok
}

// SleepScore rates sleep logs on 0..100: 70 points for duration against an
// 8 hour target and 30 for reported quality, averaged over logs.
func SleepScore(records []entity.MetricRecord) int {
	var sum float64
	n := 0
	for _, r := range records {
		if r.Timestamp.IsZero() || r.Payload.Hours <= 0 {
			continue
		}
		quality, ok := SleepQualityScale[r.Payload.Quality]
		if !ok {
			quality = SleepQualityScale["😐"]
		}
		sum += math.Min(r.Payload.Hours/sleepTargetHours, 1)*70 + quality*30
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

func TotalActivity(records []entity.MetricRecord) int {
	total := 0
	for _, r := range records {
		if r.Timestamp.IsZero() || r.Payload.Minutes <= 0 {
			continue
		}
		total += r.Payload.Minutes
	}
	return total
}

type Goal struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

func DefaultGoals() entity.WeeklyGoals {
	return entity.WeeklyGoals{
		ExerciseMinutes: ExerciseGoalMinutes,
		MoodCheckIns:    MoodCheckInGoal,
	}
}

// GoalProgress reports each goal in percent, capped at 100. Non-positive
// targets fall back to the defaults.
func GoalProgress(totals Totals, goals entity.WeeklyGoals) []Goal {
	if goals.ExerciseMinutes <= 0 {
		goals.ExerciseMinutes = ExerciseGoalMinutes
	}
	if goals.MoodCheckIns <= 0 {
		goals.MoodCheckIns = MoodCheckInGoal
	}
	return []Goal{
		{Name: "exercise", Percent: percent(float64(totals.ActivityMinutes) / float64(goals.ExerciseMinutes) * 100)},
		{Name: "mood_check_ins", Percent: percent(float64(totals.MoodCheckIns) / float64(goals.MoodCheckIns) * 100)},
		{Name: "sleep_score", Percent: percent(float64(totals.SleepScore))},
	}
}

// WellnessScore weighs activity and mood check-ins at 30 points per goal
// reached and sleep at 40% of its score.
func WellnessScore(totals Totals) int {
	score := float64(totals.ActivityMinutes)/ExerciseGoalMinutes*30 +
		float64(totals.MoodCheckIns)/MoodCheckInGoal*30 +
		float64(totals.SleepScore)*0.4
	return int(math.Round(math.Max(0, math.Min(score, 100))))
}

func percent(v float64) float64 {
	return math.Max(0, math.Min(v, 100))
}

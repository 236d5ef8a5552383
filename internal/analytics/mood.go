package analytics

import (
	"github.com/limbo/wellness/pkg/entity"
)

type MoodSymbol struct {
	Symbol string
	Score  int
}

// MoodScale is ordered from the lowest to the highest score.
var MoodScale = [...]MoodSymbol{
	{Symbol: "😢", Score: 1},
	{Symbol: "😕", Score: 2},
	{Symbol: "😐", Score: 3},
	{Symbol: "🙂", Score: 4},
	{Symbol: "😊", Score: 5},
}

// MoodScore maps a mood symbol to 1..5. Unknown symbols give 0 and must not
// be folded into averages.
func MoodScore(symbol string) int {
	for _, m := range MoodScale {
		if m.Symbol == symbol {
			return m.Score
		}
	}
	return 0
}

func IsMoodSymbol(symbol string) bool {
	return MoodScore(symbol) != 0
}

// RunningMean folds scores one at a time with
// newMean = (oldMean*oldCount + score) / (oldCount+1).
// oldMean*oldCount is carried as the exact integer total, so the mean does
// not depend on the order in which scores arrive.
type RunningMean struct {
	total int
	count int
}

func (rm *RunningMean) Add(score int) {
	rm.total += score
	rm.count++
}

func (rm *RunningMean) Merge(other RunningMean) {
	rm.total += other.total
	rm.count += other.count
}

func (rm RunningMean) Count() int {
	return rm.count
}

// Mean returns nil when nothing was folded.
func (rm RunningMean) Mean() *float64 {
	if rm.count == 0 {
		return nil
	}
	mean := float64(rm.total) / float64(rm.count)
	return &mean
}

type MoodCount struct {
	Mood  string `json:"mood"`
	Score int    `json:"score"`
	Count int    `json:"count"`
}

// MoodDistribution counts recognized mood symbols in scale order. Symbols
// that never occur are omitted.
func MoodDistribution(records []entity.MetricRecord) []MoodCount {
	counts := make(map[string]int, len(MoodScale))
	for _, r := range records {
		if r.Timestamp.IsZero() || !IsMoodSymbol(r.Payload.Mood) {
			continue
		}
		counts[r.Payload.Mood]++
	}
	result := make([]MoodCount, 0, len(counts))
	for _, m := range MoodScale {
		if c := counts[m.Symbol]; c > 0 {
			result = append(result, MoodCount{Mood: m.Symbol, Score: m.Score, Count: c})
		}
	}
	return result
}

// MoodCheckIns counts mood records carrying a recognized symbol.
func MoodCheckIns(records []entity.MetricRecord) int {
	n := 0
	for _, r := range records {
		if !r.Timestamp.IsZero() && IsMoodSymbol(r.Payload.Mood) {
			n++
		}
	}
	return n
}

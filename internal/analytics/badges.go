package analytics

type BadgeID string

type Totals struct {
	ActivityMinutes int `json:"activity_minutes"`
	MoodCheckIns    int `json:"mood_check_ins"`
	SleepScore      int `json:"sleep_score"`
}

type badgeRule struct {
	id        BadgeID
	title     string
	satisfied func(Totals) bool
}

var badgeTable = [...]badgeRule{
	{
		id:        "exercise_150",
		title:     "🏃 150+ min Exercise",
		satisfied: func(t Totals) bool { return t.ActivityMinutes >= 150 },
	},
	{
		id:        "mood_logs_10",
		title:     "😊 10 Mood Logs",
		satisfied: func(t Totals) bool { return t.MoodCheckIns >= 10 },
	},
	{
		id:        "good_sleep",
		title:     "😴 Good Sleep",
		satisfied: func(t Totals) bool { return t.SleepScore >= 70 },
	},
	{
		id:        "exercise_300",
		title:     "💪 300+ min Beast Mode",
		satisfied: func(t Totals) bool { return t.ActivityMinutes >= 300 },
	},
	{
		id:        "emotion_explorer",
		title:     "🧠 Emotion Explorer",
		satisfied: func(t Totals) bool { return t.MoodCheckIns >= 25 },
	},
	{
		id:        "mood_master",
		title:     "🧘 Mood Master",
		satisfied: func(t Totals) bool { return t.MoodCheckIns >= 50 },
	},
}

// EvaluateBadges returns satisfied badge ids in table order.
func EvaluateBadges(totals Totals) []BadgeID {
	earned := make([]BadgeID, 0, len(badgeTable))
	for _, rule := range badgeTable {
		if rule.satisfied(totals) {
			earned = append(earned, rule.id)
		}
	}
	return earned
}

func BadgeTitle(id BadgeID) string {
	for _, rule := range badgeTable {
		if rule.id == id {
			return rule.title
		}
	}
	return ""
}

func AllBadges() []BadgeID {
	ids := make([]BadgeID, 0, len(badgeTable))
	for _, rule := range badgeTable {
		ids = append(ids, rule.id)
	}
	return ids
}

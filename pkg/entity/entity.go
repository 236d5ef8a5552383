package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
}

type Profile struct {
	ID    uuid.UUID `json:"uid"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// WeeklyGoals are a user's targets for the dashboard goal progress.
type WeeklyGoals struct {
	ExerciseMinutes int `json:"exercise_minutes"`
	MoodCheckIns    int `json:"mood_check_ins"`
}

type RecordKind string

const (
	KindMood     RecordKind = "mood"
	KindExercise RecordKind = "exercise"
	KindSleep    RecordKind = "sleep"
	KindMeal     RecordKind = "meal"
)

func (k RecordKind) Valid() bool {
	switch k {
	case KindMood, KindExercise, KindSleep, KindMeal:
		return true
	}
	return false
}

// RecordPayload holds the kind-specific part of a record. Only the fields
// relevant to the record's kind are filled.
type RecordPayload struct {
	// mood
	Mood    string `json:"mood,omitempty"`
	Journal string `json:"journal,omitempty"`
	// exercise
	Minutes      int    `json:"minutes,omitempty"`
	ExerciseType string `json:"exercise_type,omitempty"`
	// sleep
	Hours   float64 `json:"hours,omitempty"`
	Quality string  `json:"quality,omitempty"`
	// meal
	MealType    string `json:"meal_type,omitempty"`
	Description string `json:"description,omitempty"`

	Notes string `json:"notes,omitempty"`
}

type MetricRecord struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"uid"`
	Kind      RecordKind    `json:"kind"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   RecordPayload `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

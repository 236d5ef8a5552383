package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/wellness/internal/analytics"
	"github.com/limbo/wellness/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=32"`
	Email    string `validate:"omitempty,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	Name  string `validate:"required,alphanum_underscore,min=3,max=32"`
	Email string `validate:"omitempty,email,max=254"`
}

// RecordRequest carries a record of any kind. Only the fields of its kind
// are kept, the rest are dropped. Nil timestamp means now.
type RecordRequest struct {
	Kind      entity.RecordKind `validate:"required,record_kind"`
	Timestamp *time.Time

	Mood    string
	Journal string `validate:"max=5000"`

	Minutes      int
	ExerciseType string

	Hours   float64
	Quality string

	MealType    string
	Description string `validate:"max=1000"`

	Notes string `validate:"max=1000"`
}

type GoalsRequest struct {
	ExerciseMinutes int `validate:"min=1,max=10080"`
	MoodCheckIns    int `validate:"min=1,max=100"`
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type ListRecordsOpts struct {
	Kind entity.RecordKind
	From *time.Time
	To   *time.Time
	PaginationOpts
}

type StreakSummary struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type Badge struct {
	ID    analytics.BadgeID `json:"id"`
	Title string            `json:"title"`
}

type Overview struct {
	Date             analytics.DayKey        `json:"date"`
	Totals           analytics.Totals        `json:"totals"`
	WeeklyGoals      entity.WeeklyGoals      `json:"weekly_goals"`
	Goals            []analytics.Goal        `json:"goals"`
	WellnessScore    int                     `json:"wellness_score"`
	Streak           StreakSummary           `json:"streak"`
	Weekly           []analytics.DailyBucket `json:"weekly"`
	MoodDistribution []analytics.MoodCount   `json:"mood_distribution"`
	Badges           []Badge                 `json:"badges"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.Profile, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type RecordsServiceI interface {
	CreateRecord(ctx context.Context, uid uuid.UUID, req *RecordRequest) (*entity.MetricRecord, error)
	GetRecord(ctx context.Context, recordID, uid uuid.UUID) (*entity.MetricRecord, error)
	ListRecords(ctx context.Context, uid uuid.UUID, opts ListRecordsOpts) ([]*entity.MetricRecord, error)
	// Replaces timestamp and payload. Kind of record can't be changed
	UpdateRecord(ctx context.Context, recordID, uid uuid.UUID, req *RecordRequest) (*entity.MetricRecord, error)
	DeleteRecord(ctx context.Context, recordID, uid uuid.UUID) error
}

type DashboardServiceI interface {
	Streak(ctx context.Context, uid uuid.UUID) (StreakSummary, error)
	Weekly(ctx context.Context, uid uuid.UUID) ([]analytics.DailyBucket, error)
	Badges(ctx context.Context, uid uuid.UUID) ([]Badge, error)
	MoodDistribution(ctx context.Context, uid uuid.UUID) ([]analytics.MoodCount, error)
	Overview(ctx context.Context, uid uuid.UUID) (*Overview, error)
	// Returns user's weekly goals, defaults when never set
	Goals(ctx context.Context, uid uuid.UUID) (entity.WeeklyGoals, error)
	UpdateGoals(ctx context.Context, uid uuid.UUID, req *GoalsRequest) (entity.WeeklyGoals, error)
}

// DashboardInvalidator drops cached dashboard data of a user.
type DashboardInvalidator interface {
	Invalidate(uid uuid.UUID)
}

package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/pkg/entity"
)

type GoalsRepository struct {
	conn PgConnection
}

func NewGoalsRepoWithConn(conn PgConnection) *GoalsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for goalsRepo: " + err.Error())
	}
	return &GoalsRepository{
		conn: conn,
	}
}

func (gr *GoalsRepository) Get(ctx context.Context, uid uuid.UUID) (entity.WeeklyGoals, bool, error) {
	var goals entity.WeeklyGoals
	row := gr.conn.QueryRow(ctx, `SELECT exercise_minutes, mood_check_ins FROM user_goals WHERE user_id = $1;`, uid)
	if err := row.Scan(&goals.ExerciseMinutes, &goals.MoodCheckIns); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.WeeklyGoals{}, false, nil
		}
		return entity.WeeklyGoals{}, false, errors.New("getting goals error: " + err.Error())
	}
	return goals, true, nil
}

func (gr *GoalsRepository) Set(ctx context.Context, uid uuid.UUID, goals entity.WeeklyGoals) error {
	_, err := gr.conn.Exec(ctx, `INSERT INTO user_goals (user_id, exercise_minutes, mood_check_ins) VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE SET exercise_minutes = EXCLUDED.exercise_minutes, mood_check_ins = EXCLUDED.mood_check_ins, updated_at = NOW();`,
		uid,
		goals.ExerciseMinutes,
		goals.MoodCheckIns,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return errorvalues.ErrUserNotFound
			// Check violation
			case "23514":
				return errorvalues.ErrValidation
			}
		}
		return errors.New("setting goals error: " + err.Error())
	}
	return nil
}

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/lib/pq"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/internal/repository"
	"github.com/limbo/wellness/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	userID        = uuid.New()
	recordColumns = []string{"id", "user_id", "kind", "recorded_at", "payload", "created_at", "updated_at"}
)

type testPGConfig struct {
	connStr string
}

func (cfg *testPGConfig) ConnString() string {
	return cfg.connStr
}

func mustPayload(t *testing.T, p entity.RecordPayload) []byte {
	t.Helper()
	b, err := sonic.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestCreateRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRecordsRepoWithConn(mock)
	ts := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	record := entity.MetricRecord{
		UserID:    userID,
		Kind:      entity.KindMood,
		Timestamp: ts,
		Payload:   entity.RecordPayload{Mood: "😊", Journal: "good day"},
	}
	payload := mustPayload(t, record.Payload)
	rid := uuid.New()
	ctx := context.Background()
	query := regexp.QuoteMeta(`INSERT INTO records (user_id, kind, recorded_at, payload) VALUES ($1, $2, $3, $4) RETURNING id;`)
	testCases := []struct {
		Desc         string
		Error        error
		MockPrepFunc func()
	}{
		{
			Desc: "successfully created",
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, "mood", ts, payload).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rid))
			},
		},
		{
			Desc:  "unknown owner",
			Error: errorvalues.ErrOwnerNotFound,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, "mood", ts, payload).
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
		},
		{
			Desc:  "kind rejected by check constraint",
			Error: errorvalues.ErrUnknownKind,
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, "mood", ts, payload).
					WillReturnError(&pgconn.PgError{Code: "23514"})
			},
		},
		{
			Desc:  "db error",
			Error: errors.New("creating record db error: db error"),
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, "mood", ts, payload).
					WillReturnError(errors.New("db error"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			id, err := repo.Create(ctx, &record)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, rid, id)
		})
	}
	t.Run("nil record", func(t *testing.T) {
		_, err := repo.Create(ctx, nil)
		assert.Error(t, err)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRecordsRepoWithConn(mock)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	expected := entity.MetricRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      entity.KindSleep,
		Timestamp: now.Add(-4 * time.Hour),
		Payload:   entity.RecordPayload{Hours: 7.5, Quality: "😊"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := regexp.QuoteMeta(`SELECT id, user_id, kind, recorded_at, payload, created_at, updated_at FROM records WHERE id = $1;`)
	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.ID).
			WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(
				expected.ID, expected.UserID, "sleep", expected.Timestamp,
				mustPayload(t, expected.Payload), expected.CreatedAt, expected.UpdatedAt,
			))
		record, err := repo.GetByID(ctx, expected.ID)
		require.NoError(t, err)
		assert.Equal(t, expected, *record)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.ID).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetByID(ctx, expected.ID)
		assert.ErrorIs(t, err, errorvalues.ErrRecordNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.ID).
			WillReturnError(errors.New("db error"))
		_, err := repo.GetByID(ctx, expected.ID)
		assert.EqualError(t, err, "getting record by id error: db error")
	})
	t.Run("broken payload", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.ID).
			WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(
				expected.ID, expected.UserID, "sleep", expected.Timestamp,
				[]byte(`{"hours":`), expected.CreatedAt, expected.UpdatedAt,
			))
		_, err := repo.GetByID(ctx, expected.ID)
		assert.Error(t, err)
	})
}

func TestListRecordsByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRecordsRepoWithConn(mock)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	from := now.AddDate(0, 0, -7)
	to := now
	rows := func() *pgxmock.Rows {
		return pgxmock.NewRows(recordColumns).
			AddRow(uuid.New(), userID, "exercise", now, mustPayload(t, entity.RecordPayload{Minutes: 30, ExerciseType: "Yoga"}), now, now).
			AddRow(uuid.New(), userID, "exercise", now.Add(-time.Hour), mustPayload(t, entity.RecordPayload{Minutes: 45, ExerciseType: "Cardio"}), now, now)
	}
	base := `SELECT id, user_id, kind, recorded_at, payload, created_at, updated_at FROM records WHERE user_id = $1`
	testCases := []struct {
		Desc     string
		Filter   repository.RecordFilter
		Query    string
		Args     []any
		Error    bool
		Rows     func() *pgxmock.Rows
		Expected int
	}{
		{
			Desc:     "no filters",
			Filter:   repository.RecordFilter{Limit: 10},
			Query:    base + ` ORDER BY recorded_at DESC LIMIT $2 OFFSET $3;`,
			Args:     []any{userID, 10, 0},
			Rows:     rows,
			Expected: 2,
		},
		{
			Desc:     "kind filter",
			Filter:   repository.RecordFilter{Kind: entity.KindExercise, Limit: 5, Offset: 5},
			Query:    base + ` AND kind = $2 ORDER BY recorded_at DESC LIMIT $3 OFFSET $4;`,
			Args:     []any{userID, "exercise", 5, 5},
			Rows:     rows,
			Expected: 2,
		},
		{
			Desc:     "all filters",
			Filter:   repository.RecordFilter{Kind: entity.KindExercise, From: &from, To: &to, Limit: 20},
			Query:    base + ` AND kind = $2 AND recorded_at >= $3 AND recorded_at <= $4 ORDER BY recorded_at DESC LIMIT $5 OFFSET $6;`,
			Args:     []any{userID, "exercise", from, to, 20, 0},
			Rows:     rows,
			Expected: 2,
		},
		{
			Desc:     "empty",
			Filter:   repository.RecordFilter{To: &to, Limit: 10},
			Query:    base + ` AND recorded_at <= $2 ORDER BY recorded_at DESC LIMIT $3 OFFSET $4;`,
			Args:     []any{userID, to, 10, 0},
			Rows:     func() *pgxmock.Rows { return pgxmock.NewRows(recordColumns) },
			Expected: 0,
		},
		{
			Desc:   "db error",
			Filter: repository.RecordFilter{Limit: 10},
			Query:  base + ` ORDER BY recorded_at DESC LIMIT $2 OFFSET $3;`,
			Args:   []any{userID, 10, 0},
			Error:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			expectation := mock.ExpectQuery(regexp.QuoteMeta(tc.Query)).WithArgs(tc.Args...)
			if tc.Error {
				expectation.WillReturnError(errors.New("db error"))
				_, err := repo.ListByUser(ctx, userID, tc.Filter)
				assert.Error(t, err)
				return
			}
			expectation.WillReturnRows(tc.Rows())
			result, err := repo.ListByUser(ctx, userID, tc.Filter)
			require.NoError(t, err)
			assert.Len(t, result, tc.Expected)
			for _, r := range result {
				assert.Equal(t, entity.KindExercise, r.Kind)
				assert.Positive(t, r.Payload.Minutes)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecordsByKind(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRecordsRepoWithConn(mock)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT id, user_id, kind, recorded_at, payload, created_at, updated_at FROM records WHERE user_id = $1 AND kind = $2 ORDER BY recorded_at;`)
	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID, "mood").
			WillReturnRows(pgxmock.NewRows(recordColumns).
				AddRow(uuid.New(), userID, "mood", now.Add(-time.Hour), mustPayload(t, entity.RecordPayload{Mood: "😐"}), now, now).
				AddRow(uuid.New(), userID, "mood", now, mustPayload(t, entity.RecordPayload{Mood: "😊"}), now, now))
		result, err := repo.ListByKind(ctx, userID, entity.KindMood)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "😐", result[0].Payload.Mood)
		assert.Equal(t, "😊", result[1].Payload.Mood)
	})
	t.Run("nothing logged", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID, "mood").
			WillReturnRows(pgxmock.NewRows(recordColumns))
		result, err := repo.ListByKind(ctx, userID, entity.KindMood)
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID, "mood").
			WillReturnError(errors.New("db error"))
		_, err := repo.ListByKind(ctx, userID, entity.KindMood)
		assert.EqualError(t, err, "fetching records by kind error: db error")
	})
	t.Run("undecodable payload", func(t *testing.T) {
		badID := uuid.New()
		mock.ExpectQuery(query).
			WithArgs(userID, "exercise").
			WillReturnRows(pgxmock.NewRows(recordColumns).
				AddRow(uuid.New(), userID, "exercise", now.Add(-time.Hour), []byte(`{"minutes":30}`), now, now).
				AddRow(badID, userID, "exercise", now, []byte(`{"minutes":"thirty"}`), now, now))
		result, err := repo.ListByKind(ctx, userID, entity.KindExercise)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, 30, result[0].Payload.Minutes)
		assert.Equal(t, badID, result[1].ID)
		assert.Equal(t, entity.RecordPayload{}, result[1].Payload)
	})
	t.Run("rows error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(userID, "mood").
			WillReturnRows(pgxmock.NewRows(recordColumns).
				AddRow(uuid.New(), userID, "mood", now, mustPayload(t, entity.RecordPayload{Mood: "😊"}), now, now).
				RowError(0, errors.New("connection reset")))
		_, err := repo.ListByKind(ctx, userID, entity.KindMood)
		assert.Error(t, err)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRecordsRepoWithConn(mock)
	ctx := context.Background()
	record := entity.MetricRecord{
		ID:        uuid.New(),
		Timestamp: time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC),
		Payload:   entity.RecordPayload{MealType: "Dinner", Description: "pasta"},
	}
	payload := mustPayload(t, record.Payload)
	query := regexp.QuoteMeta(`UPDATE records SET recorded_at = $1, payload = $2, updated_at = NOW() WHERE id = $3;`)
	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(record.Timestamp, payload, record.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		assert.NoError(t, repo.Update(ctx, &record))
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(record.Timestamp, payload, record.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		assert.ErrorIs(t, repo.Update(ctx, &record), errorvalues.ErrRecordNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(record.Timestamp, payload, record.ID).
			WillReturnError(errors.New("db error"))
		assert.Error(t, repo.Update(ctx, &record))
	})
}

func TestDeleteRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewRecordsRepoWithConn(mock)
	ctx := context.Background()
	id := uuid.New()
	query := regexp.QuoteMeta(`DELETE FROM records WHERE id = $1;`)
	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, repo.Delete(ctx, id))
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, repo.Delete(ctx, id), errorvalues.ErrRecordNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnError(errors.New("db error"))
		assert.Error(t, repo.Delete(ctx, id))
	})
}

func TestRecordsIntegrational(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	cfg := setupRecordsTestDB(t)
	pool := repository.NewPool(cfg)
	repo := repository.NewRecordsRepoWithConn(pool)
	users := repository.NewUsersRepoWithConn(pool)
	ctx := context.Background()
	base := time.Date(2026, 10, 10, 8, 0, 0, 0, time.UTC)
	records := make([]*entity.MetricRecord, 0, 5)
	for i := range 5 {
		records = append(records, &entity.MetricRecord{
			UserID:    userID,
			Kind:      entity.KindExercise,
			Timestamp: base.AddDate(0, 0, i),
			Payload:   entity.RecordPayload{Minutes: 10 * (i + 1), ExerciseType: "Cardio"},
		})
	}
	t.Run("create", func(t *testing.T) {
		for _, r := range records {
			id, err := repo.Create(ctx, r)
			require.NoError(t, err)
			r.ID = id
		}
		_, err := repo.Create(ctx, &entity.MetricRecord{
			UserID:    userID,
			Kind:      entity.KindMood,
			Timestamp: base,
			Payload:   entity.RecordPayload{Mood: "🙂"},
		})
		require.NoError(t, err)
	})
	t.Run("unknown owner", func(t *testing.T) {
		_, err := repo.Create(ctx, &entity.MetricRecord{
			UserID:    uuid.New(),
			Kind:      entity.KindMood,
			Timestamp: base,
			Payload:   entity.RecordPayload{Mood: "🙂"},
		})
		assert.ErrorIs(t, err, errorvalues.ErrOwnerNotFound)
	})
	t.Run("unknown kind", func(t *testing.T) {
		_, err := repo.Create(ctx, &entity.MetricRecord{
			UserID:    userID,
			Kind:      entity.RecordKind("water"),
			Timestamp: base,
		})
		assert.ErrorIs(t, err, errorvalues.ErrUnknownKind)
	})
	t.Run("get by id", func(t *testing.T) {
		r, err := repo.GetByID(ctx, records[0].ID)
		require.NoError(t, err)
		assert.Equal(t, records[0].Payload, r.Payload)
		assert.True(t, records[0].Timestamp.Equal(r.Timestamp))
		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrRecordNotFound)
	})
	t.Run("list by user", func(t *testing.T) {
		all, err := repo.ListByUser(ctx, userID, repository.RecordFilter{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, all, 6)

		from := base.AddDate(0, 0, 1)
		to := base.AddDate(0, 0, 3)
		ranged, err := repo.ListByUser(ctx, userID, repository.RecordFilter{
			Kind:  entity.KindExercise,
			From:  &from,
			To:    &to,
			Limit: 10,
		})
		require.NoError(t, err)
		require.Len(t, ranged, 3)
		assert.Equal(t, records[3].ID, ranged[0].ID)
		assert.Equal(t, records[1].ID, ranged[2].ID)

		paged, err := repo.ListByUser(ctx, userID, repository.RecordFilter{Kind: entity.KindExercise, Limit: 2, Offset: 4})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, records[0].ID, paged[0].ID)
	})
	t.Run("list by kind", func(t *testing.T) {
		result, err := repo.ListByKind(ctx, userID, entity.KindExercise)
		require.NoError(t, err)
		require.Len(t, result, 5)
		for i := range result {
			assert.Equal(t, records[i].ID, result[i].ID)
		}
	})
	t.Run("update", func(t *testing.T) {
		r := *records[0]
		r.Payload.Minutes = 90
		require.NoError(t, repo.Update(ctx, &r))
		updated, err := repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, 90, updated.Payload.Minutes)
		assert.ErrorIs(t, repo.Update(ctx, &entity.MetricRecord{ID: uuid.New()}), errorvalues.ErrRecordNotFound)
	})
	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, records[4].ID))
		_, err := repo.GetByID(ctx, records[4].ID)
		assert.ErrorIs(t, err, errorvalues.ErrRecordNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, records[4].ID), errorvalues.ErrRecordNotFound)
	})
	t.Run("deleting owner cascades", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, userID))
		result, err := repo.ListByKind(ctx, userID, entity.KindExercise)
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func setupRecordsTestDB(t *testing.T) *testPGConfig {
	container, err := postgres.Run(context.Background(), "postgres:17",
		postgres.WithUsername("test_user"),
		postgres.WithDatabase("wellness"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatal("error running test container: " + err.Error())
	}
	connStr, err := container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	err = goose.Up(conn, "../../migrations")
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.Exec(`INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4);`,
		userID, "test_name", "test@example.com", "pass_hash")
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})
	return &testPGConfig{
		connStr: connStr,
	}
}

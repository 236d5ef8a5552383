package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/wellness/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates user's info
	Update(ctx context.Context, user *entity.User) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

type RecordsRepositoryI interface {
	// Creates new record. UserID, Kind, Timestamp and Payload are necessary
	Create(ctx context.Context, record *entity.MetricRecord) (uuid.UUID, error)
	// Searches record with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MetricRecord, error)
	// Lists user's records newest first, filtered and paginated
	ListByUser(ctx context.Context, uid uuid.UUID, filter RecordFilter) ([]*entity.MetricRecord, error)
	// Returns every record of one kind owned by user
	ListByKind(ctx context.Context, uid uuid.UUID, kind entity.RecordKind) ([]entity.MetricRecord, error)
	// Updates timestamp and payload of record by ID
	Update(ctx context.Context, record *entity.MetricRecord) error
	// Deletes record with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type GoalsRepositoryI interface {
	// Returns user's weekly goals. Found is false when user never set them
	Get(ctx context.Context, uid uuid.UUID) (goals entity.WeeklyGoals, found bool, err error)
	// Creates or replaces user's weekly goals
	Set(ctx context.Context, uid uuid.UUID, goals entity.WeeklyGoals) error
}

type RecordFilter struct {
	Kind   entity.RecordKind
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}

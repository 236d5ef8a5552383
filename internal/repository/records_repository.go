package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/pkg/entity"
)

const recordColumns = `id, user_id, kind, recorded_at, payload, created_at, updated_at`

type RecordsRepository struct {
	conn PgConnection
}

func NewRecordsRepoWithConn(conn PgConnection) *RecordsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for recordsRepo: " + err.Error())
	}
	return &RecordsRepository{
		conn: conn,
	}
}

func (rr *RecordsRepository) Create(ctx context.Context, record *entity.MetricRecord) (uuid.UUID, error) {
	if record == nil {
		return uuid.UUID{}, errors.New("record is nil")
	}
	payload, err := sonic.Marshal(record.Payload)
	if err != nil {
		return uuid.UUID{}, errors.New("encoding record payload error: " + err.Error())
	}
	var id uuid.UUID
	row := rr.conn.QueryRow(ctx,
		`INSERT INTO records (user_id, kind, recorded_at, payload) VALUES ($1, $2, $3, $4) RETURNING id;`,
		record.UserID,
		string(record.Kind),
		record.Timestamp,
		payload,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			// Check violation
			case "23514":
				return uuid.UUID{}, errorvalues.ErrUnknownKind
			}
		}
		return uuid.UUID{}, errors.New("creating record db error: " + err.Error())
	}
	return id, nil
}

func (rr *RecordsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.MetricRecord, error) {
	row := rr.conn.QueryRow(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1;`, id)
	record, err := scanRecord(row)
	if errors.Is(err, errUndecodablePayload) {
		logUndecodable(record, err)
		return record, nil
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrRecordNotFound
		}
		return nil, errors.New("getting record by id error: " + err.Error())
	}
	return record, nil
}

func (rr *RecordsRepository) ListByUser(ctx context.Context, uid uuid.UUID, filter RecordFilter) ([]*entity.MetricRecord, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + recordColumns + ` FROM records WHERE user_id = $1`)
	args := []any{uid}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		fmt.Fprintf(&query, " AND kind = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&query, " AND recorded_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&query, " AND recorded_at <= $%d", len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&query, " ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := rr.conn.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, errors.New("listing records error: " + err.Error())
	}
	defer rows.Close()
	records := make([]*entity.MetricRecord, 0, filter.Limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			if !errors.Is(err, errUndecodablePayload) {
				return nil, errors.New("record row parsing error: " + err.Error())
			}
			logUndecodable(record, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("unexpected record rows error: " + err.Error())
	}
	return records, nil
}

func (rr *RecordsRepository) ListByKind(ctx context.Context, uid uuid.UUID, kind entity.RecordKind) ([]entity.MetricRecord, error) {
	rows, err := rr.conn.Query(ctx,
		`SELECT `+recordColumns+` FROM records WHERE user_id = $1 AND kind = $2 ORDER BY recorded_at;`,
		uid,
		string(kind),
	)
	if err != nil {
		return nil, errors.New("fetching records by kind error: " + err.Error())
	}
	defer rows.Close()
	records := make([]entity.MetricRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			if !errors.Is(err, errUndecodablePayload) {
				return nil, errors.New("record row parsing error: " + err.Error())
			}
			logUndecodable(record, err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("unexpected record rows error: " + err.Error())
	}
	return records, nil
}

func (rr *RecordsRepository) Update(ctx context.Context, record *entity.MetricRecord) error {
	payload, err := sonic.Marshal(record.Payload)
	if err != nil {
		return errors.New("encoding record payload error: " + err.Error())
	}
	ct, err := rr.conn.Exec(ctx, `UPDATE records SET recorded_at = $1, payload = $2, updated_at = NOW() WHERE id = $3;`,
		record.Timestamp,
		payload,
		record.ID,
	)
	if err != nil {
		return errors.New("error updating record: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrRecordNotFound
	}
	return nil
}

func (rr *RecordsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := rr.conn.Exec(ctx, `DELETE FROM records WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting record: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrRecordNotFound
	}
	return nil
}

// errUndecodablePayload is returned by scanRecord together with the record
// itself, its payload left zero.
var errUndecodablePayload = errors.New("decoding record payload error")

func logUndecodable(record *entity.MetricRecord, err error) {
	slog.Warn("record payload ignored",
		slog.String("record_id", record.ID.String()),
		slog.String("kind", string(record.Kind)),
		slog.String("error", err.Error()),
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*entity.MetricRecord, error) {
	var (
		record  entity.MetricRecord
		kind    string
		payload []byte
	)
	err := row.Scan(&record.ID, &record.UserID, &kind, &record.Timestamp, &payload, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.Kind = entity.RecordKind(kind)
	if len(payload) > 0 {
		if err := sonic.Unmarshal(payload, &record.Payload); err != nil {
			record.Payload = entity.RecordPayload{}
			return &record, fmt.Errorf("%w: %s", errUndecodablePayload, err.Error())
		}
	}
	return &record, nil
}

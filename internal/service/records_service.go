package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/internal/repository"
	"github.com/limbo/wellness/pkg/entity"
	"github.com/limbo/wellness/pkg/metrics"
)

// Clock returns the current moment. Its location is the calendar used for
// day boundaries.
type Clock func() time.Time

func NewClock(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

type RecordsService struct {
	repo        repository.RecordsRepositoryI
	invalidator DashboardInvalidator
	clock       Clock
}

func NewRecordsService(recordsRepo repository.RecordsRepositoryI, invalidator DashboardInvalidator, clock Clock) *RecordsService {
	if recordsRepo == nil {
		log.Fatal("provided nil recordsRepo")
	}
	if clock == nil {
		clock = NewClock(time.UTC)
	}
	InitValidator()
	return &RecordsService{
		repo:        recordsRepo,
		invalidator: invalidator,
		clock:       clock,
	}
}

func (rs *RecordsService) CreateRecord(ctx context.Context, uid uuid.UUID, req *RecordRequest) (*entity.MetricRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ts, err := rs.timestampOf(req)
	if err != nil {
		return nil, err
	}
	r := entity.MetricRecord{
		UserID:    uid,
		Kind:      req.Kind,
		Timestamp: ts,
		Payload:   payloadOf(req),
	}
	id, err := rs.repo.Create(ctx, &r)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrOwnerNotFound):
			return nil, errorvalues.ErrUserNotFound
		case errors.Is(err, errorvalues.ErrUnknownKind):
			return nil, errorvalues.ErrUnknownKind
		}
		return nil, errors.New("records repository error: " + err.Error())
	}
	rs.written(uid, r.Kind, "create")
	record, err := rs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrRecordNotFound) {
			return nil, err
		}
		return nil, errors.New("records repository error: " + err.Error())
	}
	return record, nil
}

func (rs *RecordsService) GetRecord(ctx context.Context, recordID, uid uuid.UUID) (*entity.MetricRecord, error) {
	record, err := rs.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrRecordNotFound) {
			return nil, err
		}
		return nil, errors.New("records repository error: " + err.Error())
	}
	if record.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return record, nil
}

func (rs *RecordsService) ListRecords(ctx context.Context, uid uuid.UUID, opts ListRecordsOpts) ([]*entity.MetricRecord, error) {
	if opts.Kind != "" && !opts.Kind.Valid() {
		return nil, errorvalues.ErrUnknownKind
	}
	if opts.From != nil && opts.To != nil && opts.From.After(*opts.To) {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("from is after to"))
	}
	records, err := rs.repo.ListByUser(ctx, uid, repository.RecordFilter{
		Kind:   opts.Kind,
		From:   opts.From,
		To:     opts.To,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, errors.New("records repository error: " + err.Error())
	}
	return records, nil
}

func (rs *RecordsService) UpdateRecord(ctx context.Context, recordID, uid uuid.UUID, req *RecordRequest) (*entity.MetricRecord, error) {
	record, err := rs.GetRecord(ctx, recordID, uid)
	if err != nil {
		return nil, err
	}
	if req.Kind == "" {
		req.Kind = record.Kind
	}
	if req.Kind != record.Kind {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("record kind can't be changed"))
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ts, err := rs.timestampOf(req)
	if err != nil {
		return nil, err
	}
	record.Timestamp = ts
	record.Payload = payloadOf(req)
	err = rs.repo.Update(ctx, record)
	if err != nil {
		if errors.Is(err, errorvalues.ErrRecordNotFound) {
			return nil, err
		}
		return nil, errors.New("records repository error: " + err.Error())
	}
	rs.written(uid, record.Kind, "update")
	updated, err := rs.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrRecordNotFound) {
			return nil, err
		}
		return nil, errors.New("records repository error: " + err.Error())
	}
	return updated, nil
}

func (rs *RecordsService) DeleteRecord(ctx context.Context, recordID, uid uuid.UUID) error {
	record, err := rs.GetRecord(ctx, recordID, uid)
	if err != nil {
		return err
	}
	err = rs.repo.Delete(ctx, recordID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrRecordNotFound) {
			return err
		}
		return errors.New("records repository error: " + err.Error())
	}
	rs.written(uid, record.Kind, "delete")
	return nil
}

// timestampOf resolves the record moment. Anything past the end of today is
// rejected.
func (rs *RecordsService) timestampOf(req *RecordRequest) (time.Time, error) {
	now := rs.clock()
	if req.Timestamp == nil {
		return now, nil
	}
	if req.Timestamp.IsZero() {
		return time.Time{}, errors.Join(errorvalues.ErrValidation, errors.New("zero timestamp"))
	}
	y, m, d := now.Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	if !req.Timestamp.Before(tomorrow) {
		return time.Time{}, errorvalues.ErrRecordDateNotAllowed
	}
	return *req.Timestamp, nil
}

func (rs *RecordsService) written(uid uuid.UUID, kind entity.RecordKind, op string) {
	metrics.RecordWrite(string(kind), op)
	if rs.invalidator != nil {
		rs.invalidator.Invalidate(uid)
	}
}

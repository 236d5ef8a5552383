package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/internal/service"
	"github.com/limbo/wellness/pkg/entity"
	"github.com/limbo/wellness/pkg/httputil"
)

const dateLayout = "2006-01-02"

type RecordRequest struct {
	Kind      string     `json:"kind"`
	Timestamp *time.Time `json:"timestamp,omitempty"`

	Mood    string `json:"mood,omitempty"`
	Journal string `json:"journal,omitempty"`

	Minutes      int    `json:"minutes,omitempty"`
	ExerciseType string `json:"exercise_type,omitempty"`

	Hours   float64 `json:"hours,omitempty"`
	Quality string  `json:"quality,omitempty"`

	MealType    string `json:"meal_type,omitempty"`
	Description string `json:"description,omitempty"`

	Notes string `json:"notes,omitempty"`
}

func (req *RecordRequest) toService() *service.RecordRequest {
	return &service.RecordRequest{
		Kind:         entity.RecordKind(req.Kind),
		Timestamp:    req.Timestamp,
		Mood:         req.Mood,
		Journal:      req.Journal,
		Minutes:      req.Minutes,
		ExerciseType: req.ExerciseType,
		Hours:        req.Hours,
		Quality:      req.Quality,
		MealType:     req.MealType,
		Description:  req.Description,
		Notes:        req.Notes,
	}
}

type GetRecordsResponse struct {
	UserID  string                 `json:"uid"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
	Records []*entity.MetricRecord `json:"records"`
}

func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create record error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req RecordRequest
	err = httputil.DecodeJSON(r, &req)
	if err != nil {
		logger.Error("create record error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	record, err := s.recordsService.CreateRecord(ctx, uid, req.toService())
	if err != nil {
		writeRecordError(w, logger, "create record", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, record)
	logger.Info("record created", slog.String("kind", string(record.Kind)))
}

func (s *Server) GetRecords(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get records error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	query := r.URL.Query()
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	opts := service.ListRecordsOpts{
		Kind: entity.RecordKind(query.Get("kind")),
		PaginationOpts: service.PaginationOpts{
			Limit:  limit,
			Offset: (page - 1) * limit,
		},
	}
	if v := query.Get("from"); v != "" {
		from, err := parseBound(v, false)
		if err != nil {
			logger.Error("get records error: invalid from")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid from parameter", err)
			return
		}
		opts.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := parseBound(v, true)
		if err != nil {
			logger.Error("get records error: invalid to")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid to parameter", err)
			return
		}
		opts.To = &to
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	records, err := s.recordsService.ListRecords(ctx, uid, opts)
	if err != nil {
		writeRecordError(w, logger, "get records", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetRecordsResponse{
		UserID:  uid.String(),
		Page:    page,
		Limit:   limit,
		Records: records,
	})
	logger.Info("records provided")
}

func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, id, ok := recordTarget(w, r, logger, "get record")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	record, err := s.recordsService.GetRecord(ctx, id, uid)
	if err != nil {
		writeRecordError(w, logger, "get record", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, record)
}

func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, id, ok := recordTarget(w, r, logger, "update record")
	if !ok {
		return
	}
	var req RecordRequest
	err := httputil.DecodeJSON(r, &req)
	if err != nil {
		logger.Error("update record error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	record, err := s.recordsService.UpdateRecord(ctx, id, uid, req.toService())
	if err != nil {
		writeRecordError(w, logger, "update record", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, record)
	logger.Info("record updated")
}

func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, id, ok := recordTarget(w, r, logger, "delete record")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	err := s.recordsService.DeleteRecord(ctx, id, uid)
	if err != nil {
		writeRecordError(w, logger, "delete record", err)
		return
	}
	httputil.WriteNoContent(w)
	logger.Info("record deleted")
}

// recordTarget resolves the caller and the record id from the path. It
// writes the error response itself when either is missing.
func recordTarget(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string) (uuid.UUID, uuid.UUID, bool) {
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error(op + " error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return uuid.UUID{}, uuid.UUID{}, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error(op + " error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid record id in path value", nil)
		return uuid.UUID{}, uuid.UUID{}, false
	}
	return uid, id, true
}

func writeRecordError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, errorvalues.ErrValidation):
		logger.Error(op+" error: invalid record", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusUnprocessableEntity, "invalid record", err)
	case errors.Is(err, errorvalues.ErrRecordDateNotAllowed):
		logger.Error(op + " error: record date in future")
		httputil.WriteErrorResponse(w, http.StatusUnprocessableEntity, "record date can't be in the future", nil)
	case errors.Is(err, errorvalues.ErrUnknownKind):
		logger.Error(op + " error: unknown kind")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "unknown record kind", nil)
	case errors.Is(err, errorvalues.ErrRecordNotFound):
		logger.Error(op + " error: unexist record")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "record doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(op + " error: record has different owner")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "record doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrUserNotFound):
		logger.Error(op + " error: unexist user")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "user doesn't exist", nil)
	default:
		logger.Error(op+" error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while processing record", nil)
	}
}

// parseBound accepts RFC3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day.
func parseBound(v string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

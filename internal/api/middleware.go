package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/wellness/internal/error_values"
	"github.com/limbo/wellness/pkg/httputil"
	"github.com/limbo/wellness/pkg/metrics"
)

var (
	requestIDKContextKey = "Request-ID"
	loggerContextKey     = "Logger"
	uidContextKey        = "User-ID"
)

// RequestIDMiddleware keeps a client supplied X-Request-Id or generates a
// new one, and echoes it back in the response.
func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(middleware.RequestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKContextKey, reqID)))
	})
}

func (s *Server) SettingUpLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attrs := []any{
			slog.String("from", r.RemoteAddr),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		}
		if reqID, ok := r.Context().Value(requestIDKContextKey).(string); ok {
			attrs = append(attrs, slog.String("request_id", reqID))
		}
		logger := slog.Default().With(attrs...)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerContextKey, logger)))
	})
}

// LoggerExtensionMiddleware must run after AuthMiddleware.
func (s *Server) LoggerExtensionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := GetUIDFromContext(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		logger := GetLoggerFromCtx(r.Context()).With(slog.String("uid", uid.String()))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerContextKey, logger)))
	})
}

type authError struct {
	status  int
	message string
}

func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLoggerFromCtx(r.Context())
		uid, aerr, err := s.authenticate(r)
		if aerr != nil {
			if err != nil {
				logger.Error("auth failed: "+aerr.message, slog.String("error", err.Error()))
			} else {
				logger.Error("auth failed: " + aerr.message)
			}
			httputil.WriteErrorResponse(w, aerr.status, "authorization failed: "+aerr.message, nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), uidContextKey, uid)))
	})
}

// authenticate checks the bearer token and that its owner still exists.
func (s *Server) authenticate(r *http.Request) (uuid.UUID, *authError, error) {
	tokenString, err := GetTokenFromHeader(r)
	if err != nil {
		return uuid.Nil, &authError{http.StatusUnauthorized, "invalid token"}, nil
	}
	claims, err := s.jwtService.ParseToken(tokenString)
	if err != nil {
		if errors.Is(err, errorvalues.ErrInvalidToken) {
			return uuid.Nil, &authError{http.StatusUnauthorized, "invalid token"}, nil
		}
		return uuid.Nil, &authError{http.StatusInternalServerError, "error parsing token"}, err
	}
	now := time.Now()
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) ||
		(claims.NotBefore != nil && claims.NotBefore.Time.After(now)) {
		return uuid.Nil, &authError{http.StatusUnauthorized, "token expired or not ready"}, nil
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, &authError{http.StatusUnauthorized, "invalid token payload"}, nil
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*5)
	defer cancel()
	_, err = s.userService.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return uuid.Nil, &authError{http.StatusUnauthorized, "user not found"}, nil
		}
		return uuid.Nil, &authError{http.StatusInternalServerError, "error while searching for user"}, err
	}
	return uid, nil, nil
}

// MetricsMiddleware counts requests by matched route pattern.
func (s *Server) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordRequest(route, r.Method, status, time.Since(start))
	})
}

func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func GetTokenFromHeader(r *http.Request) (string, error) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errorvalues.ErrInvalidToken
	}
	return token, nil
}

func GetUIDFromContext(r *http.Request) (uuid.UUID, error) {
	uid, ok := r.Context().Value(uidContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("uid invalid or doesn't exists")
	}
	return uid, nil
}

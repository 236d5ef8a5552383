package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/limbo/wellness/internal/service"
	"github.com/limbo/wellness/pkg/metrics"
)

type Server struct {
	mx               *chi.Mux
	userService      service.UserServiceI
	recordsService   service.RecordsServiceI
	dashboardService service.DashboardServiceI
	jwtService       JWTServiceI
}

type ServicesList struct {
	UserService      service.UserServiceI
	RecordsService   service.RecordsServiceI
	DashboardService service.DashboardServiceI
	JwtService       JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:               chi.NewMux(),
		userService:      servicesOptions.UserService,
		recordsService:   servicesOptions.RecordsService,
		dashboardService: servicesOptions.DashboardService,
		jwtService:       servicesOptions.JwtService,
	}
	s.mountRoutes()
	return s
}

func (s *Server) mountRoutes() {
	s.mx.Use(middleware.Recoverer)
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Use(s.MetricsMiddleware)

	s.mx.Get("/health", s.Health)
	s.mx.Handle("/metrics", metrics.Handler())

	s.mx.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
	})

	s.mx.Route("/api", func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		r.Use(s.LoggerExtensionMiddleware)

		r.Get("/profile", s.GetProfile)
		r.Put("/profile", s.UpdateProfile)
		r.Delete("/account", s.DeleteAccount)

		r.Route("/records", func(r chi.Router) {
			r.Post("/", s.CreateRecord)
			r.Get("/", s.GetRecords)
			r.Get("/{id}", s.GetRecord)
			r.Put("/{id}", s.UpdateRecord)
			r.Delete("/{id}", s.DeleteRecord)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/streak", s.GetStreak)
			r.Get("/weekly", s.GetWeekly)
			r.Get("/badges", s.GetBadges)
			r.Get("/moods", s.GetMoodDistribution)
		})
		r.Get("/dashboard", s.GetDashboard)
		r.Get("/goals", s.GetGoals)
		r.Put("/goals", s.UpdateGoals)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mx.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mx,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("server shutdown error: " + err.Error())
	}
	return nil
}

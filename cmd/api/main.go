package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/limbo/wellness/internal/api"
	"github.com/limbo/wellness/internal/repository"
	"github.com/limbo/wellness/internal/service"
	"github.com/limbo/wellness/pkg/cleanup"
	"github.com/limbo/wellness/pkg/config"
	jwtservice "github.com/limbo/wellness/pkg/jwt_service"
	"github.com/limbo/wellness/pkg/logging"
)

func main() {
	cfg := config.New()
	logging.Init(cfg.GetStringOr("ENVIRONMENT", "development"))
	defer cleanup.CleanUp()

	clock := service.NewClock(cfg.GetLocation("ANALYTICS_TIMEZONE"))

	pool := repository.NewPool(&repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	})
	usersRepo := repository.NewUsersRepoWithConn(pool)
	recordsRepo := repository.NewRecordsRepoWithConn(pool)
	goalsRepo := repository.NewGoalsRepoWithConn(pool)

	dashboard := service.NewDashboardService(recordsRepo, goalsRepo, clock, cfg.GetDuration("DASHBOARD_CACHE_TTL", service.DefaultDashboardTTL))
	serv := api.New(&api.ServicesList{
		UserService:      service.NewUserService(usersRepo),
		RecordsService:   service.NewRecordsService(recordsRepo, dashboard, clock),
		DashboardService: dashboard,
		JwtService:       jwtservice.New(cfg.GetString("JWT_SECRET"), cfg.GetDuration("JWT_TTL", time.Hour)),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err := serv.Run(ctx, cfg.GetStringOr("API_ADDRESS", ":8080"))
	if err != nil {
		slog.Error("server error", slog.String("error", err.Error()))
	}
}

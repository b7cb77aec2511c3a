package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retailops/storeops-backend/internal/config"
	"github.com/retailops/storeops-backend/internal/domain/store"
	appHTTP "github.com/retailops/storeops-backend/internal/handler/http"
	"github.com/retailops/storeops-backend/internal/pkg/clock"
	"github.com/retailops/storeops-backend/internal/pkg/cron"
	"github.com/retailops/storeops-backend/internal/pkg/database"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
	"github.com/retailops/storeops-backend/internal/repository/postgresql"
	"github.com/retailops/storeops-backend/internal/repository/redis"
	attendanceService "github.com/retailops/storeops-backend/internal/service/attendance"
	requestService "github.com/retailops/storeops-backend/internal/service/request"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	businessClock := clock.NewBusinessClock(loc)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	checklistProvisioner := postgresql.NewChecklistProvisioner(db)
	checklistProgress := postgresql.NewChecklistProgressOracle(db)

	var storeRepo store.StoreRepository = postgresql.NewStoreRepository(db)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("store schedule cache disabled", "error", err)
		} else {
			defer rdb.Close()
			storeRepo = redis.NewStoreCache(storeRepo, rdb, cfg.Redis.CacheTTL)
		}
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		storeRepo,
		checklistProvisioner,
		checklistProgress,
		businessClock,
	)
	requestSvc := requestService.NewRequestService(requestRepo, storeRepo, businessClock)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	requestHandler := appHTTP.NewRequestHandler(requestSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		attendanceHandler,
		requestHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewStaleSessionJobs(attendanceRepo, businessClock, cfg.Jobs.StaleSessionAfter).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "business_tz", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		scheduler.Stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	scheduler.Stop()
	attendanceSvc.WaitForProvisioning()

	return nil
}

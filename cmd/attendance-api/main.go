package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/event-attendance-api/api/swagger"
	"github.com/noah-isme/event-attendance-api/internal/handler"
	internalmiddleware "github.com/noah-isme/event-attendance-api/internal/middleware"
	"github.com/noah-isme/event-attendance-api/internal/repository"
	"github.com/noah-isme/event-attendance-api/internal/service"
	"github.com/noah-isme/event-attendance-api/pkg/cache"
	"github.com/noah-isme/event-attendance-api/pkg/config"
	"github.com/noah-isme/event-attendance-api/pkg/database"
	"github.com/noah-isme/event-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/event-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/event-attendance-api/pkg/middleware/requestid"
)

// @title Event Attendance API
// @version 1.0.0
// @description Event lifecycle, location conflict checks and attendance finalization
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server exited with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient == nil {
		logr.Warn("redis disabled; finalization lock is process-local")
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	eventRepo := repository.NewEventRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	lockRepo := repository.NewLockRepository(redisClient, logr)
	defer lockRepo.Close() //nolint:errcheck

	eligibility := service.NewEligibilityService(rosterRepo, logr)
	events := service.NewEventService(eventRepo, locationRepo, eligibility, validate, metrics, logr, service.DurationBounds{
		Min: cfg.Events.MinDuration,
		Max: cfg.Events.MaxDuration,
	})
	finalizer := service.NewAttendanceFinalizer(service.FinalizerThresholds{
		PresentRatio: cfg.Attendance.PresentRatio,
		IdleRatio:    cfg.Attendance.IdleRatio,
	})
	finalization := service.NewFinalizationService(eventRepo, attendanceRepo, eligibility, lockRepo, finalizer, metrics, logr, cfg.Attendance.FinalizeLockTTL)
	geofence := service.NewGeofenceService(locationRepo, validate, logr)
	exporter := service.NewAttendanceExportService(eventRepo, attendanceRepo, logr)

	var scheduler *service.EventStatusScheduler
	if cfg.Scheduler.Enabled {
		scheduler = service.NewEventStatusScheduler(eventRepo, metrics, logr, cfg.Scheduler.Interval)
		scheduler.Start(ctx)
	}

	checks := []handler.DependencyCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.DependencyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Events:   handler.NewEventHandler(events, finalization, exporter),
		Geofence: handler.NewGeofenceHandler(geofence),
		Metrics:  handler.NewMetricsHandler(metrics, checks...),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
	if scheduler != nil {
		<-scheduler.Done()
	}
	return nil
}

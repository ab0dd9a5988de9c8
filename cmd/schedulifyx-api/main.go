package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/schedulifyx-api/api/swagger"
	"github.com/noah-isme/schedulifyx-api/internal/handler"
	"github.com/noah-isme/schedulifyx-api/internal/realtime"
	"github.com/noah-isme/schedulifyx-api/internal/repository"
	"github.com/noah-isme/schedulifyx-api/internal/router"
	"github.com/noah-isme/schedulifyx-api/internal/service"
	"github.com/noah-isme/schedulifyx-api/pkg/cache"
	"github.com/noah-isme/schedulifyx-api/pkg/config"
	"github.com/noah-isme/schedulifyx-api/pkg/database"
	"github.com/noah-isme/schedulifyx-api/pkg/logger"
	"github.com/noah-isme/schedulifyx-api/pkg/validation"
)

// @title SchedulifyX API
// @version 1.0.0
// @description Admin accounts, subjects, rooms and automatic timetable generation.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		version, err := database.Migrate(db)
		if err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
		logr.Sugar().Infow("database migrated", "version", version)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validation.New()
	metrics := service.NewMetricsService()

	adminRepo := repository.NewAdminRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cache.KeyPrefix)

	var denylist service.TokenDenylist = repository.NewMemoryTokenDenylist()
	if redisClient != nil {
		denylist = repository.NewRedisTokenDenylist(redisClient)
	}

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(adminRepo, denylist, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, cacheSvc, validate, logr)

	hub := realtime.NewHub(logr, metrics, cfg.CORS.AllowedOrigins)
	timetableSvc := service.NewTimetableService(subjectRepo, roomRepo, timetableRepo, db, cacheSvc, metrics, hub, validate, logr, service.TimetableConfig{
		Days:          cfg.Timetable.Days,
		PeriodsPerDay: cfg.Timetable.PeriodsPerDay,
		CacheTTL:      cfg.Timetable.CacheTTL,
	})
	exportSvc := service.NewExportService(service.ExportConfig{
		Timezone:         cfg.Timetable.Timezone,
		FirstPeriodStart: cfg.Timetable.FirstPeriodStart,
		PeriodLength:     cfg.Timetable.PeriodLength,
	}, logr, nil, nil, nil)

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = cache.Ping(redisClient)
	}

	engine := router.New(router.Options{
		Production:     cfg.IsProduction(),
		FrontendDir:    cfg.Frontend.DistDir,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
		Auth:           authSvc,
		Audit:          adminRepo,
	}, router.Handlers{
		Admin:     handler.NewAdminHandler(authSvc),
		Subject:   handler.NewSubjectHandler(subjectSvc),
		Room:      handler.NewRoomHandler(roomSvc),
		Timetable: handler.NewTimetableHandler(timetableSvc, exportSvc),
		Metrics:   handler.NewMetricsHandler(metrics, checks),
		Realtime:  hub,
	})

	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

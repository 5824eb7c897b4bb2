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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coaching-center-api/api/swagger"
	"github.com/noah-isme/coaching-center-api/internal/handler"
	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/repository"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/cache"
	"github.com/noah-isme/coaching-center-api/pkg/config"
	"github.com/noah-isme/coaching-center-api/pkg/database"
	"github.com/noah-isme/coaching-center-api/pkg/export"
	"github.com/noah-isme/coaching-center-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coaching-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coaching-center-api/pkg/middleware/requestid"
)

// @title Coaching Center API
// @version 1.0.0
// @description Faculty scheduling, batches, substitutions and attendance for a coaching center
// @BasePath /api/v1
// @schemes http https
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

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, free-slot cache disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			defer redisClient.Close()
		}
	}

	clock := scheduling.SystemClock{Location: cfg.Location()}
	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	substitutionRepo := repository.NewSubstitutionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Redis.KeyPrefix, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.FreeSlotsTTL, logr, cacheEnabled)
	activitySvc := service.NewActivityService(activityRepo, logr, service.ActivityConfig{
		Workers: cfg.Activity.Workers,
		Retries: cfg.Activity.Retries,
	})
	guard := service.NewScheduleGuard(facultyRepo, batchRepo, substitutionRepo, clock, metricsSvc, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	facultySvc := service.NewFacultyService(facultyRepo, skillRepo, guard, cacheSvc, activitySvc, validate, logr, cfg.Scheduling.AvailabilityLookaheadDays)
	batchSvc := service.NewBatchService(batchRepo, facultyRepo, substitutionRepo, guard, cacheSvc, activitySvc, validate, logr)
	substitutionSvc := service.NewSubstitutionService(substitutionRepo, batchRepo, facultyRepo, guard, cacheSvc, activitySvc, validate, logr)
	freeSlotSvc := service.NewFreeSlotService(facultyRepo, batchRepo, substitutionRepo, cacheSvc, metricsSvc, validate, logr, service.FreeSlotConfig{
		MaxRangeDays: cfg.Scheduling.MaxFreeSlotRangeDays,
		CacheTTL:     cfg.Cache.FreeSlotsTTL,
	})
	suggestionSvc := service.NewSuggestionService(facultyRepo, batchRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, batchRepo, clock, activitySvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, batchRepo, substitutionRepo, facultyRepo, clock, activitySvc, validate, logr, export.NewCSVExporter(), export.NewPDFExporter())
	userSvc := service.NewUserService(userRepo, facultyRepo, activitySvc, validate, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	activitySvc.Start(rootCtx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	handler.RegisterRoutes(api, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Faculty:       handler.NewFacultyHandler(facultySvc),
		Batches:       handler.NewBatchHandler(batchSvc),
		Substitutions: handler.NewSubstitutionHandler(substitutionSvc),
		Scheduling:    handler.NewSchedulingHandler(freeSlotSvc, suggestionSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Activity:      handler.NewActivityHandler(activitySvc),
		Users:         handler.NewUserHandler(userSvc),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	activitySvc.Stop()
}

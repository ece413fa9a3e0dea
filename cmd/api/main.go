package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/dance-studio-api/api/swagger"
	"github.com/noah-isme/dance-studio-api/internal/handler"
	"github.com/noah-isme/dance-studio-api/internal/repository"
	"github.com/noah-isme/dance-studio-api/internal/router"
	"github.com/noah-isme/dance-studio-api/internal/service"
	"github.com/noah-isme/dance-studio-api/pkg/cache"
	"github.com/noah-isme/dance-studio-api/pkg/config"
	"github.com/noah-isme/dance-studio-api/pkg/database"
	"github.com/noah-isme/dance-studio-api/pkg/logger"
	"github.com/noah-isme/dance-studio-api/pkg/observability"
)

// @title Dance Studio API
// @version 1.0.0
// @description Class catalog, registration and enrollment service
// @BasePath /api/v1
// @schemes http

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

	flushSentry, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Sentry.Release)
	if err != nil {
		logr.Sugar().Warnw("sentry init failed", "error", err)
	}
	defer flushSentry()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "dance-studio-api",
	})
	studentService := service.NewStudentService(studentRepo, userRepo, enrollmentRepo, classRepo, validate, logr)
	classService := service.NewClassService(classRepo, cacheRepo, service.CatalogOptions{
		CoursePageSize: cfg.Catalog.CoursePageSize,
		CacheEnabled:   cfg.Catalog.CacheEnabled && cacheRepo != nil,
		CacheTTL:       cfg.Catalog.CacheTTL,
	}, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, classRepo, studentService, classRepo, validate, logr)
	contactService := service.NewContactService(validate, logr)
	exportService := service.NewExportService(enrollmentRepo, classRepo, logr)
	metricsService := service.NewMetricsService()

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Class:      handler.NewClassHandler(classService),
		Student:    handler.NewStudentHandler(studentService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService, metricsService),
		Contact:    handler.NewContactHandler(contactService),
		Export:     handler.NewExportHandler(exportService),
		Metrics:    handler.NewMetricsHandler(metricsService),
	}

	r := router.New(cfg, logr, handlers, authService, metricsService)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

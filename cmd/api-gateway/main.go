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

	_ "github.com/noah-isme/doctrack-api/api/swagger"
	"github.com/noah-isme/doctrack-api/internal/handler"
	"github.com/noah-isme/doctrack-api/internal/middleware"
	"github.com/noah-isme/doctrack-api/internal/repository"
	"github.com/noah-isme/doctrack-api/internal/service"
	"github.com/noah-isme/doctrack-api/pkg/cache"
	"github.com/noah-isme/doctrack-api/pkg/config"
	"github.com/noah-isme/doctrack-api/pkg/database"
	"github.com/noah-isme/doctrack-api/pkg/export"
	"github.com/noah-isme/doctrack-api/pkg/jobs"
	"github.com/noah-isme/doctrack-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/doctrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/doctrack-api/pkg/middleware/requestid"
)

// @title DocTrack API
// @version 1.0.0
// @description Document receipt, routing and lifecycle tracking
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, directory cache disabled", zap.Error(err))
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users := repository.NewUserRepository(db)
	documents := repository.NewDocumentRepository(db)
	movements := repository.NewMovementRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "doctrack")
	defer cacheRepo.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	activitySvc := service.NewActivityService(repository.NewActivityRepository(db), jobs.QueueConfig{
		Workers:    cfg.Activity.Workers,
		BufferSize: cfg.Activity.BufferSize,
		MaxRetries: cfg.Activity.MaxRetries,
		RetryDelay: cfg.Activity.RetryDelay,
	}, logr)
	// The writer outlives the signal context so requests finishing during
	// Shutdown still log; the deferred Stop drains it afterwards.
	activitySvc.Start(context.Background())
	defer activitySvc.Stop()

	routingOpts := []service.RoutingServiceOption{
		service.WithActivityLog(activitySvc),
		service.WithRoutingMetrics(metricsSvc),
		service.WithRoutingSlipRenderer(export.NewPDFExporter("")),
		service.WithLocation(cfg.Routing.Location()),
	}
	if redisClient != nil {
		directoryCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Routing.DirectoryCacheTTL, logr, cfg.Routing.DirectoryCache)
		routingOpts = append(routingOpts, service.WithDirectoryCache(directoryCache))
	}
	routingSvc := service.NewRoutingService(users, documents, movements, validator.New(), logr, routingOpts...)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	healthChecks := map[string]handler.HealthCheck{"database": db.PingContext}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, healthChecks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, cfg.Metrics.Path))

	r.GET("/health", metricsHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc), middleware.Audit())
	handler.NewDocumentHandler(routingSvc).Register(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
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

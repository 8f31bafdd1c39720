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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-timetable-api/api/swagger"
	"github.com/noah-isme/uni-timetable-api/internal/bootstrap"
	"github.com/noah-isme/uni-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/migrations"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
)

// @title University Timetable API
// @version 1.0.0
// @description Catalog management, automatic timetable generation, manual edits and exports
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Up(ctx, db)
		if err != nil {
			logr.Fatal("migrations failed", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Strings("files", applied))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	container, err := bootstrap.New(cfg, db, redisClient, logr)
	if err != nil {
		logr.Fatal("service wiring failed", zap.Error(err))
	}
	container.Dispatcher.Start(ctx)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		container.Dispatcher.Stop(drainCtx)
	}()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(container.Metrics))

	pingers := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}
	if redisClient != nil {
		pingers["redis"] = handler.PingFunc(container.PingCache)
	}
	metricsHandler := handler.NewMetricsHandler(container.Metrics, pingers)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(container.Auth),
		Users:      handler.NewUserHandler(container.Users),
		Department: handler.NewDepartmentHandler(container.Departments),
		Location:   handler.NewLocationHandler(container.Locations),
		Professor:  handler.NewProfessorHandler(container.Professors),
		Subject:    handler.NewSubjectHandler(container.Subjects),
		Stream:     handler.NewStreamHandler(container.Streams),
		TimeSlot:   handler.NewTimeSlotHandler(container.TimeSlots),
		Timetable:  handler.NewTimetableHandler(container.Timetable),
		Task:       handler.NewTaskHandler(container.Tasks),
		Metrics:    metricsHandler,
	}
	if cfg.Scheduler.Enabled {
		handlers.Generator = handler.NewGeneratorHandler(container.Generator, container.Validation)
	}
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers, container.Auth)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "scheduler", cfg.Scheduler.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

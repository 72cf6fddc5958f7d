package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classboard/classboard-api/internal/graph"
	"github.com/classboard/classboard-api/internal/handler"
	"github.com/classboard/classboard-api/internal/middleware"
	"github.com/classboard/classboard-api/internal/repository"
	"github.com/classboard/classboard-api/internal/service"
	"github.com/classboard/classboard-api/pkg/cache"
	"github.com/classboard/classboard-api/pkg/config"
	"github.com/classboard/classboard-api/pkg/database"
	"github.com/classboard/classboard-api/pkg/logger"
	corsmiddleware "github.com/classboard/classboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classboard/classboard-api/pkg/middleware/requestid"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("mongo connection failed", "error", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Disconnect(disconnectCtx, db); err != nil {
			logr.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	metrics := service.NewMetricsService()

	var listCache *service.ListCache
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			listCache = service.NewListCache(cacheRepo, metrics, cfg.Cache.TTL, logr)
		}
	}

	studentRepo := repository.NewStudentRepository(db, metrics)
	courseRepo := repository.NewCourseRepository(db, metrics)

	var identityStore service.IdentityStore
	if cfg.Identity.Backend == config.IdentityBackendMongo {
		identityStore = repository.NewMongoIdentityStore(db, metrics)
	} else {
		identityStore = repository.NewMemoryIdentityStore()
	}

	validate := validator.New()

	authService := service.NewAuthService(identityStore, validate, logr, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "classboard-api",
	})
	studentService := service.NewStudentService(studentRepo, courseRepo, listCache, validate, logr)
	courseService := service.NewCourseService(courseRepo, studentRepo, listCache, validate, logr)
	enrollmentService := service.NewEnrollmentService(studentRepo, courseRepo, listCache, logr)

	schema, err := graph.NewSchema(graph.Services{
		Students:   studentService,
		Courses:    courseService,
		Enrollment: enrollmentService,
		Auth:       authService,
	})
	if err != nil {
		logr.Sugar().Fatalw("schema construction failed", "error", err)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ResolveIdentity(authService))

	graphqlHandler := handler.NewGraphQLHandler(schema, metrics, logr)
	metricsHandler := handler.NewMetricsHandler(metrics, func(ctx context.Context) error {
		return db.Client().Ping(ctx, nil)
	})

	r.POST("/graphql", graphqlHandler.Execute)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Reconciler.Enabled {
		go enrollmentService.Run(ctx, cfg.Reconciler.Interval)
		logr.Sugar().Infow("enrollment reconciler started", "interval", cfg.Reconciler.Interval)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logr.Warn("shutdown error", zap.Error(err))
	}
}

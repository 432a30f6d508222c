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

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"farmlink/internal/app"
	"farmlink/internal/config"
	"farmlink/internal/database"
	"farmlink/internal/domain/analytics"
	"farmlink/internal/domain/application"
	"farmlink/internal/domain/job"
	"farmlink/internal/domain/message"
	apphttp "farmlink/internal/http"
	"farmlink/internal/http/handlers"
	"farmlink/internal/http/metrics"
	httpmw "farmlink/internal/http/middleware"
	"farmlink/internal/http/response"
	"farmlink/internal/observability"
	"farmlink/internal/repository/memory"
	"farmlink/internal/repository/postgres"
	"farmlink/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed: " + err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		jobRepo         job.Repository
		applicationRepo application.Repository
		messageRepo     message.Repository
		analyticsRepo   analytics.Repository
	)
	switch cfg.Store {
	case config.StoreMemory:
		jobs := memory.NewJobRepository()
		jobRepo = jobs
		applicationRepo = memory.NewApplicationRepository(jobs)
		messageRepo = memory.NewMessageRepository()
		analyticsRepo = memory.NewAnalyticsRepository()
		logger.Info("using in-memory store")
	default:
		db := database.NewPostgres(database.PostgresConfig{
			DSN:             cfg.PostgresDSN,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdle:     cfg.DBConnMaxIdle,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		})
		defer db.Close()
		jobRepo = postgres.NewJobRepository(db)
		applicationRepo = postgres.NewApplicationRepository(db)
		messageRepo = postgres.NewMessageRepository(db)
		analyticsRepo = postgres.NewAnalyticsRepository(db)
	}

	jobService := app.NewJobService(jobRepo, applicationRepo, messageRepo, analyticsRepo, logger)
	applicationService := app.NewApplicationService(applicationRepo, jobRepo, analyticsRepo)
	messageService := app.NewMessageService(messageRepo, applicationRepo, jobRepo, analyticsRepo)

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisURL != "" {
		options, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		limiter = httpmw.NewRedisLimiter(redis.NewClient(options))
		logger.Info("using redis rate limiter")
	}

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		JobHandler:         handlers.NewJobHandler(jobService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter),
		MessageHandler:     handlers.NewMessageHandler(messageService, limiter),
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider),
		Metrics:            collector,
		RequestTimeout:     cfg.RequestTimeout,
	})

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      corsWrapper.Handler(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	reconciler := app.NewReconciler(jobService, logger, cfg.ReconcileInterval)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reconciler.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

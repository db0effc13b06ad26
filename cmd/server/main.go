package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/banking/withdrawal-risk-service/internal/api"
	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/events"
	"github.com/banking/withdrawal-risk-service/internal/intel"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
	"github.com/banking/withdrawal-risk-service/internal/pkg/telemetry"
	"github.com/banking/withdrawal-risk-service/internal/repository"
	"github.com/banking/withdrawal-risk-service/internal/risk"
	"github.com/banking/withdrawal-risk-service/internal/watchlist"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	log, err := logger.New(cfg.Telemetry.ServiceName, cfg.Telemetry.Environment, cfg.Telemetry.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// 4. Data sources
	pool, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	store := repository.NewBreakerStore(repository.NewPostgresStore(pool), cfg.Breaker, log)

	redisClient := watchlist.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	screener := watchlist.NewScreener(watchlist.NewRedisStore(redisClient, cfg.Redis), cfg.Risk, cfg.Breaker, log)
	if err := screener.LoadIndex(ctx); err != nil {
		// Seeds from config are still indexed; lookups fall back to Redis
		log.Warn("initial watchlist load failed", zap.Error(err))
	}
	go screener.Run(ctx, cfg.Risk.WatchlistRefresh)

	ipClassifier, err := intel.NewCIDRClassifier(cfg.Risk.HighRiskIPRanges, cfg.Risk.MediumRiskIPRanges)
	if err != nil {
		log.Fatal("invalid IP range configuration", zap.Error(err))
	}
	signals := intel.NewStaticSignals(cfg.Risk)

	// 5. Risk engine
	engine := risk.NewEngine(store, screener, ipClassifier, signals, &cfg.Risk, log)

	// 6. Events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp, err := events.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal("failed to create kafka publisher", zap.Error(err))
		}
		publisher = kp
	}
	defer publisher.Close()

	// 7. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(cfg.Server.MaxRequestSize))

	// CORS Setup
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Security.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
	}))

	// Health Check Route
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"database": store.State(),
			"watchlist": map[string]int{
				"blacklist": screener.Size(watchlist.ListBlacklist),
				"sanctions": screener.Size(watchlist.ListSanctions),
			},
		})
	})

	v1 := e.Group("/api/v1", api.JWTMiddleware(cfg.Security))
	api.NewHandler(engine, publisher, log).Register(v1)
	api.NewAdminHandler(screener, ipClassifier, signals, log).Register(v1)

	// 8. Start Server (Graceful Shutdown)
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("addr", serverAddr))

	<-ctx.Done()

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	log.Info("server exited properly")
}

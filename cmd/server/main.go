package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/odds-scanner-service/internal/cache"
	"github.com/cypherlabdev/odds-scanner-service/internal/config"
	"github.com/cypherlabdev/odds-scanner-service/internal/feed"
	httpHandler "github.com/cypherlabdev/odds-scanner-service/internal/handler/http"
	"github.com/cypherlabdev/odds-scanner-service/internal/messaging"
	"github.com/cypherlabdev/odds-scanner-service/internal/metrics"
	"github.com/cypherlabdev/odds-scanner-service/internal/models"
	"github.com/cypherlabdev/odds-scanner-service/internal/service"
	"github.com/cypherlabdev/odds-scanner-service/pkg/aggregator"
	"github.com/cypherlabdev/odds-scanner-service/pkg/scanner"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting odds-scanner-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Create Redis cache
	redisCache := cache.NewRedisCache(
		cache.RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		},
		logger,
	)
	defer redisCache.Close()

	// Test Redis connection
	if err := redisCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	// Create feed clients
	sportsbook := feed.NewSportsbookClient(
		feed.SportsbookConfig{
			BaseURL: cfg.Feeds.Sportsbook.BaseURL,
			APIKey:  cfg.Feeds.Sportsbook.APIKey,
			Regions: cfg.Feeds.Sportsbook.Regions,
			Markets: cfg.Feeds.Sportsbook.Markets,
			Timeout: cfg.Feeds.Sportsbook.Timeout,
		},
		logger,
	)
	if !sportsbook.Enabled() {
		logger.Warn().Msg("no sportsbook API key configured, sportsbook feed disabled")
	}

	polymarket := feed.NewPolymarketClient(
		feed.PolymarketConfig{
			BaseURL:  cfg.Feeds.Polymarket.BaseURL,
			Limit:    cfg.Feeds.Polymarket.Limit,
			SeriesID: cfg.Feeds.Polymarket.SeriesID,
			Timeout:  cfg.Feeds.Polymarket.Timeout,
		},
		logger,
	)

	// Create aggregator and scanner
	agg := aggregator.NewAggregator(cfg.Scanner.ToAggregationParams(), logger)
	scanParams := cfg.Scanner.ToScanParams()
	scn := scanner.NewScanner(scanParams, logger)
	logger.Info().
		Str("fair_baseline", cfg.Scanner.FairBaseline).
		Float64("min_edge", cfg.Scanner.MinEdge).
		Float64("low_hold_threshold", cfg.Scanner.LowHoldThreshold).
		Msg("scanner initialized")

	// Create odds service layer
	oddsService := service.NewOddsService(sportsbook, polymarket, agg, scn, redisCache, m, logger)
	logger.Info().Msg("odds service initialized")

	var wg sync.WaitGroup

	// Background refresh warms the cache for the default sport
	if cfg.Refresh.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			oddsService.RunRefreshLoop(ctx, cfg.Refresh.Interval, models.SnapshotRequest{Sport: cfg.Refresh.Sport})
		}()
	}

	// Kafka ingest of pushed quote snapshots
	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,

				RetryBackoff: cfg.Kafka.RetryBackoff,
			},
			oddsService,
			m,
			logger,
		)
		defer consumer.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	// Initialize HTTP handler
	oddsHandler := httpHandler.NewOddsHandler(
		oddsService,
		httpHandler.OddsHandlerConfig{
			DefaultSport:   cfg.Refresh.Sport,
			ArbitrageStake: scanParams.ArbitrageStake,
		},
		logger,
	)
	logger.Info().Msg("HTTP handler initialized")

	// Setup HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger(logger))

	// Health and monitoring endpoints
	r.Get("/health", healthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, oddsService)
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Register API routes
	oddsHandler.RegisterRoutes(r)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop refresh loop and consumer
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	wg.Wait()
	logger.Info().Msg("shutdown complete")
}

// configPath returns the config file location; ODDS_SCANNER_CONFIG overrides it and a missing default file is skipped
func configPath() string {
	if p := os.Getenv("ODDS_SCANNER_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigPath); err != nil {
		return ""
	}
	return defaultConfigPath
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "odds-scanner").Logger()
}

// requestLogger logs one line per request through zerolog
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("handled request")
		})
	}
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, svc *service.OddsService) {
	// Check Redis connection
	if err := svc.Ready(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Redis unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

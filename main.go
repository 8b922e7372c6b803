// api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"portfolio/api/analytics"
	"portfolio/api/config"
	"portfolio/api/database"
	"portfolio/api/handlers"
	"portfolio/api/metrics"
	"portfolio/api/middleware"
	"portfolio/api/store"
	"portfolio/api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := setupLogger(cfg.LogLevel)

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// --- PostgreSQL (admin users, contacts, and events unless ClickHouse is selected) ---
	dbClient, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize PostgreSQL database")
	}
	defer dbClient.Close()

	useClickHouse := cfg.EventStore == config.EventStoreClickHouse
	if err := database.MigratePostgres(ctx, dbClient.DB, !useClickHouse); err != nil {
		logger.WithError(err).Fatal("Failed to migrate PostgreSQL schema")
	}

	var events analytics.EventRepository = store.NewPostgresEventStore(dbClient.DB)
	if useClickHouse {
		chClient, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize ClickHouse database")
		}
		defer chClient.Close()

		if err := database.MigrateClickHouse(ctx, chClient.Conn); err != nil {
			logger.WithError(err).Fatal("Failed to migrate ClickHouse schema")
		}
		events = store.NewClickHouseEventStore(chClient.Conn)
	}
	logger.WithField("backend", cfg.EventStore).Info("Analytics event store ready")

	// --- Redis (optional, shared token revocation) ---
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize Redis")
		}
		defer rdb.Close()
	} else {
		logger.Warn("REDIS_URL not set; token revocations are kept in process memory")
	}

	// --- Stores and components ---
	userStore := store.NewUserStore(dbClient.DB)
	contactStore := store.NewContactStore(dbClient.DB)
	revocations := store.NewTokenStore(rdb)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	ingestor := analytics.NewIngestor(events, nil, logger.WithField("component", "ingestor"))
	aggregator := analytics.NewAggregator(events, logger.WithField("component", "aggregator"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(dbClient.DB, "portfolio"),
	)
	m := metrics.NewMetrics(registry)

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer loginLimiter.Stop()
	contactLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer contactLimiter.Stop()

	// --- Handlers ---
	analyticsHandlers := handlers.NewAnalyticsHandlers(ingestor, aggregator, m, logger)
	authHandlers := handlers.NewAuthHandlers(
		userStore, tokens, revocations,
		handlers.DefaultAdmin{Username: cfg.DefaultAdminUsername, Password: cfg.DefaultAdminPassword},
		cfg.IsRelease(), logger,
	)
	contactHandlers := handlers.NewContactHandlers(contactStore, logger)

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.WithError(err).Fatal("Invalid TRUSTED_PROXIES")
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.HTTPMetrics(m))
	r.Use(middleware.CORSMiddleware(cfg.FrontendOrigin))

	authRequired := middleware.AuthRequired(tokens, revocations, userStore, logger)

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	{
		analyticsGroup := api.Group("/analytics")
		{
			analyticsGroup.POST("/track", analyticsHandlers.TrackEvent)
			if cfg.StatsRequireAuth {
				analyticsGroup.GET("/stats", authRequired, analyticsHandlers.GetStats)
			} else {
				analyticsGroup.GET("/stats", analyticsHandlers.GetStats)
			}
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", loginLimiter.Middleware(), authHandlers.Login)
			authGroup.GET("/verify", authRequired, authHandlers.Verify)
			authGroup.POST("/change-password", authRequired, authHandlers.ChangePassword)
			authGroup.POST("/logout", authRequired, authHandlers.Logout)
		}

		contactGroup := api.Group("/contact")
		{
			contactGroup.POST("", contactLimiter.Middleware(), contactHandlers.Submit)
			contactGroup.GET("/list", authRequired, contactHandlers.List)
			contactGroup.PATCH("/:id/read", authRequired, contactHandlers.MarkRead)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Portfolio API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Portfolio API server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exiting.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

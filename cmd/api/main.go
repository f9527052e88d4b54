// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codeclash-gg/backend/internal/admin"
	"github.com/codeclash-gg/backend/internal/auth"
	"github.com/codeclash-gg/backend/internal/config"
	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/game"
	"github.com/codeclash-gg/backend/internal/health"
	"github.com/codeclash-gg/backend/internal/middleware"
	"github.com/codeclash-gg/backend/internal/server"
	"github.com/codeclash-gg/backend/internal/user"
)

const drainDelay = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	deleter := user.NewAccountDeleter(db, logger)
	userSvc := user.NewService(db, db.DB, deleter)

	// The user service doubles as the game module's stats recorder so
	// finished games land in user_game_stats and user_stats on the same
	// transaction.
	gameSvc := game.NewService(db, db.DB, userSvc)

	userHandler := user.NewHandler(userSvc, gameSvc)
	gameHandler := game.NewHandler(gameSvc)

	sessionRepo := auth.NewRepository(db.DB)
	resetRepo := auth.NewPasswordResetRepository(db.DB)
	verificationRepo := auth.NewEmailVerificationRepository(db.DB)

	mailer := auth.NewLogMailer(logger)
	authSvc := auth.NewService(
		sessionRepo,
		resetRepo,
		verificationRepo,
		jwtManager,
		userSvc,
		mailer,
		auth.NewRedisDenylist(redis.Client),
		cfg.Auth,
	)
	authHandler := auth.NewHandler(authSvc)

	auth.NewJanitor(
		sessionRepo,
		resetRepo,
		verificationRepo,
		logger,
		cfg.Auth.TokenSweepInterval,
	).Start(ctx)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		AuthSvc:    authSvc,
		Users:      userSvc,
		Schedules:  gameSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
			BypassFunc: middleware.BypassPaths(
				"/healthz", "/livez", "/readyz",
			),
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	// The auth service, not the bare JWT manager, backs the strict
	// authenticator so denylisted and version-bumped tokens are refused.
	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin
	moderatorOrAdmin := middleware.RequireModerator

	roleLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.DefaultRoleLimits,
	)

	// Credential endpoints never fail open. During a redis outage the
	// limiter degrades to local buckets rather than lifting the brute
	// force ceiling on login and password reset.
	credentialLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit:     middleware.PerHour(30, 10),
			KeyFunc:   middleware.KeyByUserAndEndpoint,
			OnLimited: middleware.LogLimited(logger, "credential endpoint throttled"),
		},
	).Handler

	router.Route("/v1", func(r chi.Router) {
		// OptionalAuth fills in claims for the role limiter with a
		// signature-only check, it grants nothing but a quota tier.
		// Protected groups run the strict authenticator behind it.
		r.Use(middleware.OptionalAuth(jwtManager))
		r.Use(roleLimiter)

		authHandler.RegisterRoutes(r, authenticator, credentialLimiter)
		userHandler.RegisterRoutes(r, authenticator)
		gameHandler.RegisterRoutes(r, authenticator)

		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		gameHandler.RegisterAdminRoutes(r, authenticator, moderatorOrAdmin)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

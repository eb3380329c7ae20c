// Package main is the entrypoint for the Scamtrace API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/scamtrace/scamtrace/internal/auth"
	"github.com/scamtrace/scamtrace/internal/cache"
	"github.com/scamtrace/scamtrace/internal/captcha"
	"github.com/scamtrace/scamtrace/internal/config"
	"github.com/scamtrace/scamtrace/internal/geoip"
	"github.com/scamtrace/scamtrace/internal/handler"
	"github.com/scamtrace/scamtrace/internal/metrics"
	"github.com/scamtrace/scamtrace/internal/middleware"
	"github.com/scamtrace/scamtrace/internal/repository"
	"github.com/scamtrace/scamtrace/internal/server"
	"github.com/scamtrace/scamtrace/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// External clients
	captchaClient := captcha.New(captcha.Config{
		Secret:         cfg.RecaptchaSecret,
		MinScore:       cfg.RecaptchaMinScore,
		ExpectedAction: cfg.RecaptchaAction,
	})
	geoClient := geoip.New(geoip.Config{
		Token:  cfg.IPInfoToken,
		Cache:  cacheClient,
		Logger: logger,
	})

	// Initialize services
	recorder := metrics.NewInMemory()
	tokenIssuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	accountService := service.NewAccountService(repo, captchaClient, tokenIssuer, recorder, logger)
	trackService := service.NewTrackService(repo, geoClient, recorder, logger)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(accountService, logger)
	trackHandler := handler.NewTrackHandler(trackService, logger)
	statsHandler := handler.NewStatsHandler(recorder)

	// Setup router
	r := setupRouter(healthHandler, authHandler, trackHandler, statsHandler, repo, cacheClient, tokenIssuer, recorder, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	trackHandler *handler.TrackHandler,
	statsHandler *handler.StatsHandler,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	tokenIssuer *auth.TokenIssuer,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", handler.ServiceInfo)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.AuthRateLimitEnabled,
		RPS:     cfg.AuthRateLimitRPS,
		Burst:   cfg.AuthRateLimitBurst,
	}

	// Public account endpoints (IP rate-limited)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitAuth(rateLimitCfg))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Admin endpoint (bearer token, approved admin only)
	adminCfg := middleware.AdminAuthConfig{
		Logger:  logger,
		Tokens:  tokenIssuer,
		Users:   repo,
		Metrics: recorder,
	}
	r.With(middleware.AdminAuth(adminCfg)).Post("/approve-user/{user_id}", authHandler.Approve)

	// Machine endpoints (service key)
	serviceKeyCfg := middleware.ServiceKeyConfig{
		Logger:  logger,
		Secret:  cfg.APISecretKey,
		Metrics: recorder,
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.ServiceKey(serviceKeyCfg))
		r.Post("/track", trackHandler.Track)
		r.Get("/logs", trackHandler.Logs)
		r.Post("/location", trackHandler.LogLocation)
		r.Get("/location/{phone_number}", trackHandler.LocationsByPhone)
		r.Get("/stats", statsHandler.Stats)
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/member-portal/internal/auth"
	"github.com/carterperez-dev/templates/member-portal/internal/config"
	"github.com/carterperez-dev/templates/member-portal/internal/core"
	"github.com/carterperez-dev/templates/member-portal/internal/health"
	"github.com/carterperez-dev/templates/member-portal/internal/member"
	"github.com/carterperez-dev/templates/member-portal/internal/middleware"
	"github.com/carterperez-dev/templates/member-portal/internal/server"
	"github.com/carterperez-dev/templates/member-portal/internal/web"
)

const drainDelay = 5 * time.Second

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		cmd.Context(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	return run(ctx)
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	if cfg.Database.MigrateOnStart {
		schemaVersion, err := applyMigrations(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema up to date", "version", schemaVersion)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeLogged(logger, "database", db)
	logger.Info("database connected")

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer closeLogged(logger, "redis", redis)
	logger.Info("redis connected")

	metrics := core.NewMetrics()
	hasher := auth.NewArgon2idHasher(auth.ParamsFromConfig(cfg.Password))

	memberRepo := member.NewRepository(db.DB)
	memberSvc := member.NewService(memberRepo, core.NewTransactor(db.DB), hasher, metrics)

	sessions, err := auth.NewSessionManager(
		cfg.Session,
		auth.NewRedisRevoker(redis.Client, redis.Key),
		memberSvc,
	)
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}
	authSvc := auth.NewService(memberSvc, hasher, metrics)

	flasher := web.NewFlasher(cfg.Session)
	renderer, err := web.NewRenderer(flasher)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	authHandler := auth.NewHandler(authSvc, sessions, renderer, flasher)
	memberHandler := member.NewHandler(memberSvc, renderer, flasher)
	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db},
		health.Check{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(middleware.Metrics(metrics))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByIP(redis.Key("ratelimit")),
		FailOpen: true,
	}).Handler)

	healthHandler.RegisterRoutes(router)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	guard := &middleware.SessionGuard{
		Resolver:  sessions,
		LoginPath: "/login",
		OnDenied:  authHandler.DenyAnonymous,
		OnError:   renderer.ServerError,
	}
	formLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.LoginRequests,
			cfg.RateLimit.LoginBurst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByIPAndPath(redis.Key("ratelimit", "form")),
		FailOpen: true,
		Methods:  []string{http.MethodPost},
	})

	router.Group(func(r chi.Router) {
		r.Use(pageMiddleware(formLimiter, db.DB, guard)...)

		authHandler.RegisterRoutes(r)
		memberHandler.RegisterRoutes(r, guard.Require)
	})

	if err := serveUntilDone(ctx, srv, logger, drainDelay, cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	logger.Info("application stopped")
	return nil
}

// pageMiddleware orders the page stack: the form limiter rejects before a
// pooled connection is checked out, and the session is resolved on that
// connection.
func pageMiddleware(
	formLimiter *middleware.RateLimiter,
	db *sqlx.DB,
	guard *middleware.SessionGuard,
) chi.Middlewares {
	return chi.Middlewares{
		formLimiter.Handler,
		middleware.RequestConn(db),
		guard.Load,
	}
}

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context, drainDelay time.Duration) error
}

// serveUntilDone runs srv until ctx ends or Start fails. A failed start is
// returned to the caller; a signal triggers the drained shutdown.
func serveUntilDone(
	ctx context.Context,
	srv lifecycle,
	logger *slog.Logger,
	drain, timeout time.Duration,
) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain+timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drain); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func closeLogged(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("close "+name, "error", err)
	}
}

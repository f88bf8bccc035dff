// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/scholar/internal/admin"
	"github.com/taibuivan/scholar/internal/api"
	"github.com/taibuivan/scholar/internal/auth"
	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/config"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/metrics"
	"github.com/taibuivan/scholar/internal/platform/middleware"
	"github.com/taibuivan/scholar/internal/platform/migration"
	pgstore "github.com/taibuivan/scholar/internal/platform/postgres"
	redisstore "github.com/taibuivan/scholar/internal/platform/redis"
	"github.com/taibuivan/scholar/internal/platform/sec"
	"github.com/taibuivan/scholar/internal/session"
	"github.com/taibuivan/scholar/internal/site"
	"github.com/taibuivan/scholar/web"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `serve starts the public site and the admin console.

Configuration is read from the environment (API_BASE_URL and SESSION_SECRET
are required). The site copy is read from SITE_PROFILE_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// cleanup is a deferred release step of the startup sequence.
type cleanup func()

/*
runServe is the startup sequence.

 1. Initialize structured logger.
 2. Load configuration from environment variables.
 3. Load the site profile.
 4. Build the content API client.
 5. Open the session store (memory, Redis, or PostgreSQL with migrations).
 6. Wire HTTP handlers and housekeeping jobs.
 7. Start HTTP server with graceful shutdown.

No business logic lives here. All wiring is explicit constructor injection.
*/
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing")

	// 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("startup_failure", slog.String("context", "load configuration"), slog.Any("error", err))
		return err
	}

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_store", cfg.SessionStore),
	)

	// Root context for background work; cancelled on shutdown.
	rootCtx, cancelRoot := context.WithCancel(parent)
	defer cancelRoot()

	// Startup deadline so that misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// 3. Site profile
	profile, err := content.LoadProfile(cfg.SiteProfilePath)
	if err != nil {
		log.Error("startup_failure", slog.String("context", "load site profile"), slog.Any("error", err))
		return err
	}

	// 4. Content API
	collector := metrics.New()
	client := backend.New(backend.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		RetryCount: cfg.APIRetryCount,
		Logger:     log,
		Observer:   collector,
	})

	// 5. Session store
	store, storeChecks, release, err := openSessionStore(startupCtx, cfg, log)
	if err != nil {
		log.Error("startup_failure", slog.String("context", "open session store"), slog.Any("error", err))
		return err
	}
	defer release()

	inspector := sec.NewCredentialInspector()
	if cfg.CredentialPublicKeyPath != "" {
		inspector, err = sec.NewVerifyingInspector(cfg.CredentialPublicKeyPath)
		if err != nil {
			log.Error("startup_failure", slog.String("context", "load credential public key"), slog.Any("error", err))
			return err
		}
	}
	log.Info("credential_inspector_ready", slog.Bool("verifies_signature", inspector.Verifies()))

	// 6. Domain wiring
	renderer, err := web.NewRenderer()
	if err != nil {
		log.Error("startup_failure", slog.String("context", "parse templates"), slog.Any("error", err))
		return err
	}

	sessions := session.NewManager(store, cfg.IsProduction())
	registry := crud.NewRegistry(client, session.Token, collector)
	sessions.OnDestroy(registry.Drop)

	loginThrottle := middleware.RateLimit(rootCtx, middleware.NewIPLimiter(constants.LoginRateLimitRPS, constants.LoginRateLimitBurst))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckBackend: client.Ping,
		Stores:       storeChecks,
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Site:      site.NewHandler(content.NewService(client, profile), renderer, cfg.PublicBaseURL),
		Auth:      auth.NewHandler(auth.NewService(client, inspector, cfg.SessionFallbackTTL), sessions, renderer, loginThrottle),
		Admin:     admin.NewHandler(registry, sessions, renderer),
	}

	server := api.NewServer(rootCtx, cfg, log, api.Dependencies{
		Sessions: sessions,
		Renderer: renderer,
		Metrics:  collector,
		Static:   web.Static(),
	}, handlers)

	housekeeping, err := api.NewHousekeeping(sessions, registry, log)
	if err != nil {
		log.Error("startup_failure", slog.String("context", "schedule housekeeping"), slog.Any("error", err))
		return err
	}
	housekeeping.Start()
	defer housekeeping.Stop()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case runErr = <-serverErr:
		log.Error("server_startup_error", slog.Any("error", runErr))
	case <-parent.Done():
		log.Info("shutdown_context_cancelled")
	}

	// Give in-flight requests enough time to complete.
	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		return err
	}

	log.Info("server_stopped_cleanly")
	return runErr
}

// openSessionStore connects the configured store and returns its readiness checks.
func openSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (session.Store, []api.Check, cleanup, error) {
	switch cfg.SessionStore {

	case config.StoreRedis:
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		release := func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}
		check := api.Check{Name: "redis", Probe: redisstore.Probe(rdb)}
		return session.NewRedisStore(rdb), []api.Check{check}, release, nil

	case config.StorePostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		release := func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}
		check := api.Check{Name: "postgres", Probe: pgstore.Probe(pool)}
		return session.NewPostgresStore(pool), []api.Check{check}, release, nil
	}

	log.Warn("session_store_in_memory", slog.String("hint", "sessions are lost on restart"))
	return session.NewMemoryStore(), nil, func() {}, nil
}

// newLogger builds the JSON logger with the global app attribute.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

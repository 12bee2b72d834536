// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/eventfx/internal/cache"
	"github.com/olegiv/eventfx/internal/config"
	"github.com/olegiv/eventfx/internal/handler/api"
	"github.com/olegiv/eventfx/internal/logging"
	"github.com/olegiv/eventfx/internal/middleware"
	"github.com/olegiv/eventfx/internal/scheduler"
	"github.com/olegiv/eventfx/internal/session"
	"github.com/olegiv/eventfx/internal/store"
	"github.com/olegiv/eventfx/internal/version"
	"github.com/olegiv/eventfx/internal/views"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Global API rate limit per client IP.
const (
	apiRateLimit = 20
	apiRateBurst = 40
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	seedAdmin := flag.Bool("seed-admin", false, "Create or reset the admin from EVENTFX_ADMIN_USERNAME/EVENTFX_ADMIN_PASSWORD and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "eventfx - event services catalog API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_DB_PATH           SQLite database path (default: ./data/eventfx.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_CORS_ORIGINS      Comma separated origins allowed to call the API\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_REDIS_URL         Redis URL for the read cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EVENTFX_SEED_CATALOG      Seed the demo catalog into an empty database\n")
	}

	flag.Parse()

	build := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(build.String())
		os.Exit(0)
	}

	if err := run(build, *seedAdmin); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(build version.Info, seedAdminOnly bool) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := logging.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(logging.NewHandler(os.Stdout, cfg.LogFormat, logLevel)))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Mirror WARN and ERROR records into the events table
	logger := slog.New(logging.NewEventLogHandler(logging.NewHandler(os.Stdout, cfg.LogFormat, logLevel), db))
	slog.SetDefault(logger)

	ctx := context.Background()
	st := store.NewStore(db)

	if seedAdminOnly || cfg.ShouldSeedAdmin() {
		if err := store.SeedAdmin(ctx, st.Queries, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
		if seedAdminOnly {
			return nil
		}
	}

	registry := views.Default()
	if cfg.SeedCatalog {
		if err := store.SeedCatalog(ctx, st, registry.SeedDetail); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacher, backend := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	defer func() { _ = cacher.Close() }()
	slog.Info("read cache initialized", "backend", backend)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	sched := scheduler.New(logger)
	retention := time.Duration(cfg.EventRetentionDays) * 24 * time.Hour
	if err := sched.Add(scheduler.PruneEventsJob(st.Queries, retention, logger)); err != nil {
		return fmt.Errorf("registering job: %w", err)
	}
	if err := sched.Add(scheduler.CleanupJob("login-protection", "@every 10m", loginProtection)); err != nil {
		return fmt.Errorf("registering job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	h := api.NewHandler(api.Deps{
		Store:        st,
		Catalog:      cache.NewCatalog(cacher, cfg.CacheTTLDuration()),
		Sessions:     sessionManager,
		Login:        loginProtection,
		Views:        registry,
		CacheBackend: backend,
		PublicMaxAge: cfg.CacheTTL,
		Jobs:         sched,
		Build:        build,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins}))
	r.Use(middleware.CSRF(middleware.CSRFConfig{
		AuthKey:        []byte(cfg.SessionSecret),
		TrustedOrigins: cfg.OriginHosts(),
	}))
	r.Use(middleware.NewRateLimiter(apiRateLimit, apiRateBurst).Middleware())
	r.Use(middleware.Timeout(30 * time.Second))
	r.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", build.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

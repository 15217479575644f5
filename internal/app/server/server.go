// Package server wires configuration, storage, domain services, background
// jobs and the HTTP router into a running process.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"peopledesk/internal/domain/appraisal"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/domain/directory"
	"peopledesk/internal/domain/leave"
	"peopledesk/internal/domain/notifications"
	"peopledesk/internal/platform/config"
	"peopledesk/internal/platform/db"
	"peopledesk/internal/platform/email"
	"peopledesk/internal/platform/events"
	"peopledesk/internal/platform/jobs"
	appraisalhandler "peopledesk/internal/transport/http/handlers/appraisal"
	authhandler "peopledesk/internal/transport/http/handlers/auth"
	directoryhandler "peopledesk/internal/transport/http/handlers/directory"
	leavehandler "peopledesk/internal/transport/http/handlers/leave"
	notificationshandler "peopledesk/internal/transport/http/handlers/notifications"
	reportshandler "peopledesk/internal/transport/http/handlers/reports"
	"peopledesk/internal/transport/http/middleware"
)

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	authStore := auth.NewStore(pool)
	directoryService := directory.NewService(directory.NewStore(pool))
	authService := auth.NewService(authStore, directoryService, cfg.JWTSecret, cfg.TokenTTL)

	notificationsStore := notifications.NewStore(pool)
	notificationsService := notifications.New(notificationsStore)

	leaveService := leave.NewService(leave.NewStore(pool), directoryService, notificationsService)
	appraisalService := appraisal.NewService(pool)

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("event publisher close failed", "err", err)
		}
	}()

	dispatcher := jobs.New(cfg, notificationsStore, publisher, email.New(cfg))
	if err := dispatcher.Start(ctx); err != nil {
		slog.Error("job scheduler failed to start", "err", err)
		os.Exit(1)
	}

	idemStore := middleware.NewIdempotencyStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		directoryhandler.NewHandler(directoryService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, idemStore).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisalService).RegisterRoutes(r)
		reportshandler.NewHandler(leaveService).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationsService).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

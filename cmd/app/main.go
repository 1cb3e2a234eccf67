package main

import (
	"absensi-service/internal/airtable"
	"absensi-service/internal/auth"
	"absensi-service/internal/config"
	authLogin "absensi-service/internal/http-server/handlers/auth/login"
	authLogout "absensi-service/internal/http-server/handlers/auth/logout"
	authMe "absensi-service/internal/http-server/handlers/auth/me"
	authProfile "absensi-service/internal/http-server/handlers/auth/profile"
	"absensi-service/internal/http-server/handlers/check"
	historyGet "absensi-service/internal/http-server/handlers/history/get"
	menteesGet "absensi-service/internal/http-server/handlers/mentees/get"
	mentorsGet "absensi-service/internal/http-server/handlers/mentors/get"
	statsGet "absensi-service/internal/http-server/handlers/stats/get"
	syncRun "absensi-service/internal/http-server/handlers/sync/run"
	userCreate "absensi-service/internal/http-server/handlers/users/create"
	userList "absensi-service/internal/http-server/handlers/users/list"
	userRemove "absensi-service/internal/http-server/handlers/users/remove"
	"absensi-service/internal/http-server/middleware/mwAuth"
	"absensi-service/internal/lock"
	"absensi-service/internal/models"
	"absensi-service/internal/period"
	svc "absensi-service/internal/service"
	"absensi-service/internal/storage/postgres"
	slogpretty "absensi-service/pkg/handlers/slogPretty"
	"absensi-service/pkg/middleware/mwLogger"
	"absensi-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		log.Error("Failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	fetcher := airtable.New(cfg.Airtable)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.CookieSecure)

	service := svc.NewService(storage, fetcher, locker, svc.Settings{
		BatchName: cfg.Program.BatchName,
		Window:    period.NewWindow(cfg.Program.StartMonth, cfg.Program.EndMonth),
		// The lock has to outlive the slowest fetch.
		LockTTL: cfg.Airtable.FetchTimeout + 30*time.Second,
	})

	created, err := service.SeedSuperadmin(context.Background(),
		cfg.Auth.SeedUsername, cfg.Auth.SeedPassword, cfg.Auth.SeedName)
	if err != nil {
		log.Error("Failed to seed superadmin", sl.Err(err))
		os.Exit(1)
	}
	if created {
		log.Info("Superadmin seeded", slog.String("username", cfg.Auth.SeedUsername))
	}

	router := newRouter(log, cfg, service, tokens)

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.Airtable.FetchTimeout + cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	} else {
		log.Debug("Storage is nil, nothing to close")
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func newRouter(log *slog.Logger, cfg *config.Config, service *svc.Service, tokens *auth.TokenManager) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	// CORS runs before the rate limiter so preflight requests are never
	// counted against a client's budget.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))

	authenticated := mwAuth.New(log, tokens, service)

	// Auth and account management
	router.Post("/auth/login", authLogin.New(log, service, tokens))
	router.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/auth/me", authMe.New(log))
		r.Put("/auth/update-profile", authProfile.New(log, service))
		r.Post("/auth/logout", authLogout.New(log, tokens))

		r.Get("/auth/users", userList.New(log, service))
		r.Post("/auth/users", userCreate.New(log, service))
		r.Delete("/auth/users/{id}", userRemove.New(log, service))
	})

	// Admin dashboard
	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/fetch/{month}", syncRun.New(log, service))

		r.Get("/data", menteesGet.New(log, service, models.FILTER_PROGRAM))
		r.Get("/data/by-mentor", menteesGet.New(log, service, models.FILTER_MENTOR))
		r.Get("/stats", statsGet.New(log, service, models.FILTER_PROGRAM))
		r.Get("/stats/by-mentor", statsGet.New(log, service, models.FILTER_MENTOR))
		r.Get("/history", historyGet.New(log, service, models.FILTER_PROGRAM))
		r.Get("/history/by-mentor", historyGet.New(log, service, models.FILTER_MENTOR))
		r.Get("/mentors", mentorsGet.New(log, service))
	})

	// Public self-service lookup
	router.Post("/attendance/check", check.New(log, service))

	return router
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

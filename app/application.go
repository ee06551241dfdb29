package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"orion-chatbot/config"
	"orion-chatbot/controller"
	"orion-chatbot/middleware"
	"orion-chatbot/migrations"
	"orion-chatbot/platform/db"
	applog "orion-chatbot/platform/logger"
	"orion-chatbot/platform/rediscache"
	"orion-chatbot/store"
	"orion-chatbot/utils"
)

// publicAPIPrefix is the widget API fetched cross-origin by host pages.
const publicAPIPrefix = "/api/widget/"

type App struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	ctrl   *controller.Controller
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	database, err := db.Open(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	cache, err := rediscache.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	if cache == nil {
		logger.Warn("redis disabled: widget config caching is off, analytics are written directly and admin CSRF checks will fail")
	}
	st := store.New(database, cache)
	if cfg.EnableAutoMigration {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := migrations.Run(ctx, st.DB, migrations.Source(cfg.MigrationsDir), logger); err != nil {
			st.Close()
			return nil, err
		}
	}
	return newApp(cfg, logger, st, cache), nil
}

func newApp(cfg config.Config, logger *slog.Logger, st *store.Store, cache *redis.Client) *App {
	var repo controller.Repository
	if st != nil {
		repo = st
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
		ctrl:   controller.New(cfg, repo, cache, logger),
	}
}

func (a *App) Close() {
	a.store.Close()
}

func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogger(a.logger))
	r.Use(middleware.WithRecovery(a.logger))
	a.registerRoutes(r)
	return middleware.WithCommonHeaders(r, a.cfg.CORSAllowedOrigins, publicAPIPrefix)
}

func (a *App) auth(next func(http.ResponseWriter, *http.Request, controller.TokenClaims)) http.HandlerFunc {
	return middleware.WithAuth(a.ctrl.AuthenticateAdmin, a.ctrl.RequireCSRF, utils.JSONErr, next, a.logger)
}

func loggerFromConfig(cfg config.Config) *slog.Logger {
	return applog.New(applog.Config{
		Service:     cfg.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		AddSource:   cfg.LogAddSource,
		Color:       cfg.LogColor,
	})
}

func Run() error {
	cfg := config.Load()
	logger := loggerFromConfig(cfg)
	slog.SetDefault(logger)

	logger.Info("starting", "port", cfg.Port, "public_base_url", cfg.PublicBaseURL, "database_url", config.RedactDatabaseURL(cfg.DBURL))
	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	workersDone := app.ctrl.StartBackgroundWorkers(ctx)

	srv := &http.Server{
		Addr:              ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Orion chatbot API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", "error", err)
	}
	<-workersDone
	return nil
}

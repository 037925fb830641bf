// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/srtbspeeds/internal/api"
	"github.com/starford/srtbspeeds/internal/chartservice"
	"github.com/starford/srtbspeeds/internal/index"
	"github.com/starford/srtbspeeds/internal/mcpserver"
	"github.com/starford/srtbspeeds/internal/models"
	"github.com/starford/srtbspeeds/internal/sse"
	"github.com/starford/srtbspeeds/internal/storage"
)

// library bundles the components shared by the serve and mcp modes.
type library struct {
	store *storage.FS
	db    *index.DB
	svc   *chartservice.Service
}

// openLibrary prepares the chart library, opens the catalog, and runs the
// initial sync. The caller closes db.
func openLibrary(cfg *Config, logger *slog.Logger) (*library, error) {
	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &library{
		store: store,
		db:    db,
		svc:   chartservice.NewService(store, db, logger),
	}, nil
}

// Run starts the HTTP server and library watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := NewLogger(cfg.App, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Bool("auto_integrate", cfg.Watch.AutoIntegrate))

	lib, err := openLibrary(cfg, logger)
	if err != nil {
		return err
	}
	defer lib.db.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(lib.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := lib.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchOpts := index.WatchOptions{Debounce: cfg.Watch.Debounce}
	if cfg.Watch.AutoIntegrate {
		watchOpts.OnSidecar = lib.svc.IntegrateSidecar
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watcher events use the same kind names as the broker.
	g.Go(func() error {
		err := index.Watch(gCtx, lib.db, lib.store, logger, watchOpts, broker.PublishChartEvent)
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs must not go to stdout, which
// carries the protocol; callers pass WithLogOutput(os.Stderr).
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := NewLogger(app.config.App, app.logOutput)
	slog.SetDefault(logger)

	lib, err := openLibrary(app.config, logger)
	if err != nil {
		return err
	}
	defer lib.db.Close()

	logger.Info("Starting MCP server", slog.String("library_path", app.config.Library.Path))
	return mcpserver.New(lib.svc).ServeStdio()
}

// Catalog syncs the library into the catalog and returns every chart.
func Catalog(ctx context.Context, opts ...Option) ([]models.Chart, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(app.config.App, app.logOutput)

	lib, err := openLibrary(app.config, logger)
	if err != nil {
		return nil, err
	}
	defer lib.db.Close()

	return lib.svc.ListCharts(ctx)
}

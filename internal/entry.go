// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/receitas/internal/api"
	"github.com/starford/receitas/internal/collection"
	"github.com/starford/receitas/internal/mcpserver"
	"github.com/starford/receitas/internal/modal"
	"github.com/starford/receitas/internal/recipeclient"
	"github.com/starford/receitas/internal/sse"
	pkgconfig "github.com/starford/receitas/pkg/config"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// NewLogger returns a JSON logger writing to w whose level can be changed
// through the returned LevelVar.
func NewLogger(w io.Writer, level slog.Level) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	lv.Set(level)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})), lv
}

// NewController builds a collection controller talking to the configured
// recipe API. The collection starts empty.
func NewController(cfg *Config, logger *slog.Logger, opts ...collection.Option) *collection.Controller {
	client := recipeclient.NewClient(cfg.API.BaseURL,
		recipeclient.WithTimeout(cfg.API.Timeout),
		recipeclient.WithLogger(logger),
	)
	opts = append([]collection.Option{
		collection.WithStrategy(cfg.API.Strategy()),
		collection.WithLogger(logger),
	}, opts...)
	return collection.New(client, opts...)
}

// Run starts the console server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger, level := NewLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("api_base_url", cfg.API.BaseURL),
		slog.String("create_strategy", cfg.API.CreateStrategy),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(cfg.Console.EventThrottle)
	defer broker.Close()

	ctrl := NewController(cfg, logger, collection.WithChangeFunc(broker.PublishRecipeEvent))
	overlay := modal.New()

	// Initial load. A failure is recorded as the pending error and the
	// console starts with an empty collection.
	if err := ctrl.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(ctrl, overlay, broker, cfg.Console.AllowedOrigins)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ctrl.PendingError() != "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Follow config file changes.
	if app.configPath != "" {
		g.Go(func() error {
			return pkgconfig.Watch(gCtx, app.configPath, NewDefaultConfig, func(next *Config, err error) {
				if err != nil {
					logger.Warn("config reload failed", slog.String("error", err.Error()))
					return
				}
				level.Set(next.App.LogLevel)
				logger.Info("Configuration reloaded",
					slog.String("log_level", next.App.LogLevel.String()))
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

// errShutdown cancels the group so the config watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the recipe tools over stdio. Logs go to stderr because
// stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, _ := NewLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	ctrl := NewController(cfg, logger)
	if err := ctrl.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}

	logger.Info("Starting MCP server", slog.String("api_base_url", cfg.API.BaseURL))
	if err := mcpserver.New(ctrl, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

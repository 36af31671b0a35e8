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

	"github.com/starford/gebo/internal/api"
	"github.com/starford/gebo/internal/contract"
	"github.com/starford/gebo/internal/convert"
	"github.com/starford/gebo/internal/mcpserver"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/registry"
	"github.com/starford/gebo/internal/sse"
	"github.com/starford/gebo/internal/storage"
	"github.com/starford/gebo/internal/template"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("templates_path", cfg.Documents.TemplatesPath),
		slog.String("output_path", cfg.Documents.OutputPath),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("pdf_conversion", cfg.Convert.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure template and output roots exist.
	if err := os.MkdirAll(cfg.Documents.TemplatesPath, 0o755); err != nil {
		return fmt.Errorf("create templates dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Documents.OutputPath, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	templates, err := template.NewStore(cfg.Documents.TemplatesPath)
	if err != nil {
		return fmt.Errorf("init template store: %w", err)
	}
	template.EnsureOutputDirs(cfg.Documents.OutputPath, logger)

	store, err := storage.NewFS(cfg.Documents.OutputPath)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite artifact registry.
	db, err := registry.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}
	defer db.Close()

	// Run initial reconcile between registry and disk.
	if err := registry.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	var conv convert.Converter = convert.Disabled{}
	if cfg.Convert.Enabled() {
		conv = convert.NewExecConverter(cfg.Convert.Command)
	}

	// Build synthesizer service and router.
	svc := contract.NewService(templates, store, db, broker)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	apiRouter := api.NewRouter(svc, conv, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start output-directory watcher with SSE callback.
	g.Go(func() error {
		return registry.Watch(gCtx, db, store, cfg.Documents.RetentionDuration(), logger,
			func(event string, artifact models.Artifact) {
				broker.PublishArtifactEvent(sse.EventArtifactDeleted, artifact)
			})
	})

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

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

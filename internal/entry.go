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
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/api"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/pageservice"
	"github.com/starford/quire/internal/site"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = newLogger(app.config.App)
		slog.SetDefault(app.logger)
	}

	cfg := app.config
	app.logger.Info("Configuration loaded",
		slog.String("content_dir", cfg.Site.ContentDir),
		slog.String("output_dir", cfg.Site.OutputDir),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))
	return app, nil
}

// newLogger builds the structured logger: JSON on stdout unless the text
// format is configured.
func newLogger(cfg ApplicationConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func (a *application) builder(liveReload bool) *site.Builder {
	s := a.config.Site
	return site.New(site.Options{
		ContentDir:  s.ContentDir,
		OutputDir:   s.OutputDir,
		StaticDir:   s.StaticDir,
		ThemeDir:    s.ThemeDir,
		DocumentExt: s.DocumentExt,
		InfoFile:    s.InfoFile,
		Minify:      s.Minify,
		LiveReload:  liveReload,
		Labels:      s.Labels,
	}, site.WithLogger(a.logger))
}

// syncCatalog records a finished build in the catalog.
func (a *application) syncCatalog(db index.Catalog, report *site.Report) error {
	store, err := storage.NewFS(a.config.Site.ContentDir)
	if err != nil {
		return err
	}
	return index.Sync(db, report.Root, store, a.logger)
}

// Build compiles the site once and, when the catalog is enabled, records
// the result in it.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	report, err := app.builder(false).Build()
	if err != nil {
		return err
	}

	if !app.config.Catalog.Enabled() {
		return nil
	}
	db, err := index.Open(app.config.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()
	if err := app.syncCatalog(db, report); err != nil {
		return fmt.Errorf("sync catalog: %w", err)
	}
	return nil
}

// Serve builds the site, then serves it with the preview API, rebuilding
// on every change under the watched directories until ctx is cancelled or
// SIGINT/SIGTERM arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	var (
		db  *index.DB
		svc *pageservice.Service
	)
	if cfg.Catalog.Enabled() {
		if db, err = index.Open(cfg.Catalog.Path); err != nil {
			return fmt.Errorf("init catalog: %w", err)
		}
		defer db.Close()
		svc = pageservice.NewService(db)
	}

	builder := app.builder(cfg.Preview.LiveReload)
	var mu sync.Mutex
	rebuild := func() sse.BuildResult {
		mu.Lock()
		defer mu.Unlock()

		report, err := builder.Build()
		if err != nil {
			logger.Error("build failed", slog.String("error", err.Error()))
			return sse.BuildResult{Err: err}
		}
		res := sse.BuildResult{
			Documents:  report.Documents,
			MathErrors: report.MathErrors,
			Duration:   report.Duration,
		}
		if db != nil {
			if err := app.syncCatalog(db, report); err != nil {
				logger.Warn("catalog sync failed", slog.String("error", err.Error()))
			} else {
				res.CatalogSynced = true
			}
		}
		return res
	}

	// A failed first build still starts the server; the next change retries.
	rebuild()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	var ready func(context.Context) error
	if svc != nil {
		ready = svc.Ready
	}
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           api.NewSiteRouter(apiRouter, ready, cfg.Site.OutputDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Preview.Watch {
		g.Go(func() error {
			return watch.Watch(gCtx, watch.Options{
				Dirs:     []string{cfg.Site.ContentDir, cfg.Site.StaticDir, cfg.Site.ThemeDir},
				Debounce: cfg.Preview.Debounce,
				Logger:   logger,
			}, func(changed []string) {
				logger.Info("change detected", slog.Int("files", len(changed)))
				broker.PublishBuild(rebuild())
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

	// Shut down on signal or cancellation.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

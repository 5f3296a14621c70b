package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"purchase-dashboard/internal/config"
	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/middleware"
	"purchase-dashboard/internal/observability"
	"purchase-dashboard/internal/server"
	"purchase-dashboard/internal/services"
	"purchase-dashboard/internal/source"
	"purchase-dashboard/internal/watch"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"source", cfg.Source.Path,
		"addr", cfg.Address(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
	logger.Info("application stopped gracefully")
}

// run loads the dataset, then serves HTTP and watches the source until ctx
// is cancelled or one of them fails.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	analytics := newAnalytics(cfg, logger)

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Source.LoadTimeout)
	err := analytics.Load(loadCtx)
	cancel()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Source.Watch {
		w, err := watch.New(cfg.Source.Path, cfg.Source.WatchDebounce, func(ctx context.Context) error {
			reloadCtx, cancel := context.WithTimeout(ctx, cfg.Source.LoadTimeout)
			defer cancel()
			return analytics.Reload(reloadCtx)
		}, logger)
		switch {
		case errors.Is(err, watch.ErrNotWatchable):
			logger.Info("source is not a local file, reload on change disabled", "source", cfg.Source.Path)
		case err != nil:
			return err
		default:
			logger.Info("watching source for changes", "source", cfg.Source.Path, "debounce", cfg.Source.WatchDebounce)
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server.ShutdownTimeout)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	g.Go(func() error { return gracefulServer.Run(ctx) })

	return g.Wait()
}

func newAnalytics(cfg *config.Config, logger *slog.Logger) *services.Analytics {
	normalize := []insights.NormalizeOption{
		insights.WithFillPolicy(insights.FillPolicy{
			ReferenceYear: cfg.Insights.ReferenceYear,
			DateStride:    cfg.Insights.DateStride,
			PreserveDates: cfg.Insights.PreserveDates,
		}),
	}

	return services.NewAnalytics(
		services.WithLogger(logger),
		services.WithSource(cfg.Source.Path, source.Options{
			Sheet: cfg.Source.Sheet,
			Table: cfg.Source.Table,
		}),
		services.WithNormalizeOptions(normalize...),
		services.WithBuildOptions(
			insights.WithTopN(cfg.Insights.TopN),
			insights.WithHistogramBins(cfg.Insights.HistogramBins),
			insights.WithRadarCategories(cfg.Insights.RadarCategories),
		),
		services.WithCacheSize(cfg.Cache.Size),
	)
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) http.Handler {
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.Security), logger),
	)
	return chain(server.NewServer(analytics, logger))
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"payments-dashboard/internal/app"
	"payments-dashboard/internal/config"
	"payments-dashboard/internal/middleware"
	"payments-dashboard/internal/observability"
	"payments-dashboard/internal/server"
	"payments-dashboard/internal/services"
)

const limiterSweepInterval = time.Minute

// newHandler wraps the routes in the middleware chain. Recovery runs
// outermost so a panic anywhere below still gets an error envelope.
func newHandler(cfg *config.Config, dashboard *services.Dashboard, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	srv := server.NewServer(dashboard, cfg.Pagination, logger)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
	)
	return chain(srv)
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"source", cfg.Source.URL,
		"unmapped_status_policy", cfg.Ingest.UnmappedStatusPolicy,
	)

	loader, err := app.NewLoader(cfg, "", logger)
	if err != nil {
		logger.Error("failed to build loader", "error", err)
		os.Exit(1)
	}

	dashboard := services.NewDashboard(loader, cfg.Source.FetchTimeout, logger)

	start := time.Now()
	snap, err := dashboard.Load(context.Background())
	if err != nil {
		logger.Error("failed to load payment data", "source", loader.Source(), "error", err)
		os.Exit(1)
	}
	logger.Info("payment data loaded",
		"snapshot_id", snap.ID,
		"rows", snap.Len(),
		"duration", time.Since(start),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(cfg.Security)
	go limiter.Run(ctx, limiterSweepInterval)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook("rate-limiter", func(context.Context) error {
		cancel()
		return nil
	})
	gracefulServer.RegisterShutdownHook("dashboard", func(context.Context) error {
		logger.Info("releasing snapshot", "stats", dashboard.Stats())
		dashboard.Invalidate()
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

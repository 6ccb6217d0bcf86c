package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reliastack/reliabase-engine/internal/api"
	"github.com/reliastack/reliabase-engine/internal/cache"
	"github.com/reliastack/reliabase-engine/internal/config"
	"github.com/reliastack/reliabase-engine/internal/metrics"
	"github.com/reliastack/reliabase-engine/internal/repo"
	"github.com/reliastack/reliabase-engine/internal/services"
	"github.com/reliastack/reliabase-engine/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reliability API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting reliabase", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	store, err := repo.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		provider, err := cache.NewMemoryProvider(cfg.Cache.Size)
		if err != nil {
			logger.Warn("cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	svc := services.NewAnalysisService(logger, store, nil, cacheProvider, services.Defaults{
		BootstrapResamples: cfg.Analysis.BootstrapResamples,
		FleetResamples:     cfg.Analysis.FleetResamples,
		BootstrapSeed:      cfg.Analysis.BootstrapSeed,
		CurvePoints:        cfg.Analysis.CurvePoints,
		Workers:            cfg.Analysis.Workers,
		ConfidenceAlpha:    cfg.Analysis.ConfidenceAlpha,
		CacheTTL:           cfg.Cache.TTL,
	})

	handlers := api.NewHandlers(logger, store, svc)
	server, err := api.NewServer(cfg.Server, handlers.Router(cfg.CORS.AllowedOrigins))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("api server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("reliabase stopped")
	return nil
}

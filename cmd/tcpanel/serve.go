package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tcpanel/internal/adapter/driven/redpanda"
	httphandler "github.com/ericfisherdev/tcpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/tcpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Serves the JSON API under /api/v1 and the HTML dashboard at /.

When TCPANEL_WATCH_INTERVAL is set, selected builds are checked on that
interval and status transitions are published to TCPANEL_KAFKA_BROKERS,
or logged when no brokers are configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	// 1. Configuration is loaded by the root command.
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"teamcity_url", cfg.TeamCityURL,
		"demo", cfg.Demo,
		"cache_ttl", cfg.CacheTTL,
		"watch_interval", cfg.WatchInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire client, stores, and services.
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing stores", "error", closeErr)
		}
	}()

	// 4. Start the status watcher when enabled.
	var watcher *application.StatusWatcher
	if cfg.WatchInterval > 0 {
		publisher, err := newPublisher()
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				slog.Error("error closing publisher", "error", closeErr)
			}
		}()

		watcher = application.NewStatusWatcher(a.catalog, a.selections, publisher, cfg.WatchInterval)
		go watcher.Start(ctx)
		slog.Info("status watcher started", "interval", cfg.WatchInterval)
	}

	// 5. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(a.catalog, a.dashboard, a.versions, watcher, httphandler.ServerInfo{
		TeamCityURL: cfg.TeamCityURL,
		Demo:        cfg.Demo,
		CacheTTL:    cfg.CacheTTL,
	}, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 6. Create web handler and register GUI routes.
	webHandler := webhandler.NewHandler(a.dashboard, a.versions, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Log startup complete.
	slog.Info("tcpanel started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 10. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}

func newPublisher() (driven.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		slog.Info("no kafka brokers configured, status changes will be logged")
		return redpanda.NewLogPublisher(slog.Default()), nil
	}

	publisher, err := redpanda.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}
	slog.Info("kafka publisher created", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return publisher, nil
}

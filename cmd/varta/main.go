// Command varta runs the alert ingestion and classification service: the
// channel ingestor and the status poller feed classified events and region
// snapshots to the operator API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/vartalabs/varta-ingest/internal/adapter/alertsapi"
	"github.com/vartalabs/varta-ingest/internal/adapter/channel"
	"github.com/vartalabs/varta-ingest/internal/adapter/httpapi"
	"github.com/vartalabs/varta-ingest/internal/config"
	"github.com/vartalabs/varta-ingest/internal/ingest"
	"github.com/vartalabs/varta-ingest/internal/observability"
	"github.com/vartalabs/varta-ingest/internal/poller"
	"github.com/vartalabs/varta-ingest/internal/sink"
	"github.com/vartalabs/varta-ingest/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	metrics := observability.NewMetrics()

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o700); err != nil {
		logger.Error("failed to create data dir", "path", cfg.Storage.DataDir, "error", err)
		os.Exit(1)
	}

	cursorStore := store.NewCursorStore(cfg.Storage.CursorPath(), logger)
	historyStore := store.NewHistoryStore(cfg.Storage.HistoryPath(), logger)
	settingsStore := store.NewSettingsStore(cfg.Storage.SettingsPath(), logger)

	state := sink.NewState()
	out := sink.Fanout{state, &sink.Log{Logger: logger}}

	// Replay the durable history so the feed survives restarts. Records are
	// stored newest-first; ReplayHistory keeps that order.
	state.ReplayHistory(historyStore.LoadAll())

	channelClient := channel.NewClient(cfg.Channel.Brokers, cfg.Channel.Topic, logger)
	ingestor := ingest.New(channelClient, cursorStore, historyStore, settingsStore,
		out, logger, metrics, cfg.Channel.CatchupLimit)

	statusClient := alertsapi.NewClient(cfg.Alerts.URL, cfg.Alerts.Timeout, logger)
	statusPoller := poller.New(statusClient, out, clockwork.NewRealClock(), logger,
		metrics, cfg.Alerts.PollInterval, cfg.Alerts.RateLimitBackoff)

	srv := httpapi.NewServer(cfg.Server.Addr, cfg.Server.AllowedOrigins,
		state, historyStore, settingsStore, statusPoller, ingestor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := ingestor.Run(ctx); err != nil {
			logger.Error("channel ingestor error", "error", err)
		}
	}()

	go func() {
		if err := statusPoller.Run(ctx); err != nil {
			logger.Error("status poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	statusPoller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/hydroatlas/hydroatlas/internal/adapter/feed"
	"github.com/hydroatlas/hydroatlas/internal/adapter/httpapi"
	"github.com/hydroatlas/hydroatlas/internal/adapter/snapshot"
	"github.com/hydroatlas/hydroatlas/internal/adapter/upstream"
	"github.com/hydroatlas/hydroatlas/internal/config"
	"github.com/hydroatlas/hydroatlas/internal/domain"
	"github.com/hydroatlas/hydroatlas/internal/engine"
	"github.com/hydroatlas/hydroatlas/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	eng := engine.New(nil, logger, metrics, logCommander{logger: logger})

	// Last-good dataset persistence (feature-flagged via SNAPSHOT_PATH).
	var store *snapshot.Store
	if cfg.SnapshotPath != "" {
		store, err = snapshot.NewStore(cfg.SnapshotPath)
		if err != nil {
			logger.Error("failed to open snapshot store", "error", err)
			os.Exit(1)
		}
		if objects, err := store.Load(); err != nil {
			logger.Warn("failed to load persisted dataset", "error", err)
		} else if len(objects) > 0 {
			eng.ReplaceDataset(objects)
			logger.Info("serving persisted dataset until first refresh", "objects", len(objects))
		}
	} else {
		logger.Info("dataset persistence disabled")
	}

	var publisher engine.Publisher
	var feedWriter *feed.Writer
	if cfg.KafkaFeedEnabled {
		feedWriter = feed.NewWriter(cfg, logger)
		publisher = feedWriter
		logger.Info("dataset feed enabled", "topic", cfg.KafkaFeedTopic)
	} else {
		logger.Info("dataset feed disabled")
	}

	fetcher := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger, metrics)

	var engineStore engine.Store
	if store != nil {
		engineStore = store
	}
	refresher := engine.NewRefresher(eng, fetcher, publisher, engineStore, logger, metrics)

	debouncer := engine.NewSearchDebouncer(nil, cfg.SearchDebounce, eng.SetQuery)

	srv := httpapi.NewServer(cfg.HTTPAddr, eng, refresher, debouncer, []byte(cfg.JWTSecret), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load, retried until the upstream answers once.
	go func() {
		if err := refresher.RefreshUntilSuccess(ctx); err != nil {
			logger.Error("initial refresh abandoned", "error", err)
		}
	}()

	// Scheduled refreshes.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.RefreshInterval), func() {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.UpstreamTimeout*3)
		defer cancel()
		if err := refresher.Refresh(refreshCtx); err != nil {
			logger.Warn("scheduled refresh failed", "error", err)
		}
	}); err != nil {
		logger.Error("failed to schedule refresh", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()
	debouncer.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if feedWriter != nil {
		if err := feedWriter.Close(); err != nil {
			logger.Error("feed writer close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("snapshot store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// logCommander records fly-to instructions; the map animation itself
// belongs to the browser, which derives it from selection changes.
type logCommander struct {
	logger *slog.Logger
}

func (c logCommander) FlyTo(coords domain.Coordinates) {
	c.logger.Debug("fly-to", "latitude", coords.Latitude, "longitude", coords.Longitude)
}

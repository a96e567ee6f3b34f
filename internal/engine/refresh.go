package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hydroatlas/hydroatlas/internal/domain"
	"github.com/hydroatlas/hydroatlas/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// FetchResult is one complete pull from the upstream monitoring API:
// every normalized object plus a count of raw records skipped as
// malformed.
type FetchResult struct {
	Objects []domain.WaterObject
	Skipped int
}

// Fetcher pulls and normalizes all three upstream collections in one
// call. A non-nil error means the whole pull failed and nothing should
// replace the current dataset.
type Fetcher interface {
	FetchAll(ctx context.Context) (FetchResult, error)
}

// Publisher pushes a refreshed dataset to downstream consumers.
type Publisher interface {
	PublishDataset(ctx context.Context, objects []domain.WaterObject, refreshedAt time.Time) error
}

// Store persists the last good dataset so a restart can serve data before
// the first upstream pull completes.
type Store interface {
	Save(objects []domain.WaterObject) error
}

// Refresher runs dataset refresh cycles against the engine. Overlapping
// cycles are resolved by a sequence number: a cycle whose fetch finishes
// after a newer cycle has started discards its result instead of
// clobbering fresher data.
type Refresher struct {
	engine    *Engine
	fetcher   Fetcher
	publisher Publisher
	store     Store
	logger    *slog.Logger
	metrics   *observability.Metrics
	seq       atomic.Uint64
}

// NewRefresher wires a refresher. Publisher and store are optional; nil
// disables the corresponding side effect.
func NewRefresher(engine *Engine, fetcher Fetcher, publisher Publisher, store Store, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		engine:    engine,
		fetcher:   fetcher,
		publisher: publisher,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// Refresh runs one fetch-normalize-replace cycle. A fetch failure leaves
// the last good dataset in place and marks the engine degraded. Persist
// and publish failures are logged and counted but do not fail the cycle;
// the in-memory dataset is already live.
func (r *Refresher) Refresh(ctx context.Context) error {
	seq := r.seq.Add(1)
	start := time.Now()

	result, err := r.fetcher.FetchAll(ctx)
	if err != nil {
		r.engine.MarkRefreshFailed(err)
		r.metrics.RefreshFailures.Inc()
		return fmt.Errorf("fetching dataset: %w", err)
	}

	if r.seq.Load() != seq {
		r.metrics.StaleRefreshes.Inc()
		r.logger.Debug("discarding stale refresh result", "seq", seq)
		return nil
	}

	r.engine.ReplaceDataset(result.Objects)
	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("dataset refreshed",
		"objects", len(result.Objects),
		"skipped", result.Skipped,
		"duration", time.Since(start))

	refreshedAt := r.engine.clock.Now()
	objects := r.engine.Dataset()

	if r.store != nil {
		if err := r.store.Save(objects); err != nil {
			r.metrics.SnapshotSaveErrors.Inc()
			r.logger.Warn("failed to persist dataset", "error", err)
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishDataset(ctx, objects, refreshedAt); err != nil {
			r.metrics.FeedPublishErrors.Inc()
			r.logger.Warn("failed to publish dataset feed", "error", err)
		} else {
			r.metrics.FeedPublished.Add(float64(len(objects)))
		}
	}

	return nil
}

// RefreshUntilSuccess retries Refresh with exponential backoff until one
// cycle succeeds or the context is cancelled. Used for the initial load.
func (r *Refresher) RefreshUntilSuccess(ctx context.Context) error {
	backoff := initialBackoff
	for {
		err := r.Refresh(ctx)
		if err == nil {
			return nil
		}
		r.logger.Warn("refresh failed, backing off", "error", err, "backoff", backoff)

		if err := sleepWithContext(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

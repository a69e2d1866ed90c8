package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"mediafolder/metrics"
	"mediafolder/store"
)

// OrphanCleaner periodically deletes folder configurations that no folder
// references. Configurations younger than the grace period are kept.
type OrphanCleaner struct {
	store    store.Store
	clock    clockwork.Clock
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger
}

func NewOrphanCleaner(s store.Store, clock clockwork.Clock, interval, grace time.Duration) *OrphanCleaner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OrphanCleaner{
		store:    s,
		clock:    clock,
		interval: interval,
		grace:    grace,
		logger:   slog.Default().With("job", "orphan_cleaner"),
	}
}

// Run cleans once immediately and then on every tick until ctx is done.
func (oc *OrphanCleaner) Run(ctx context.Context) {
	oc.logger.Info("starting orphan configuration cleaner", "interval", oc.interval, "grace", oc.grace)

	oc.RunOnce(ctx)

	ticker := oc.clock.NewTicker(oc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			oc.logger.Info("orphan configuration cleaner stopped")
			return
		case <-ticker.Chan():
			oc.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass and returns the number of deleted configurations.
func (oc *OrphanCleaner) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cutoff := oc.clock.Now().UTC().Add(-oc.grace)

	deleted, err := oc.store.DeleteOrphanConfigurations(ctx, cutoff)
	if err != nil {
		metrics.OrphanCleanupRuns.WithLabelValues("error").Inc()
		oc.logger.ErrorContext(ctx, "orphan configuration cleanup failed", "error", err)
		return 0
	}

	metrics.OrphanCleanupRuns.WithLabelValues("success").Inc()
	metrics.OrphanConfigurationsDeleted.Add(float64(deleted))
	if deleted > 0 {
		oc.logger.InfoContext(ctx, "deleted orphan configurations", "count", deleted)
	} else {
		oc.logger.DebugContext(ctx, "no orphan configurations found")
	}

	return deleted
}

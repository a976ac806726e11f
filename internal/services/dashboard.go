package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/observability"
)

type SnapshotLoader interface {
	Load(ctx context.Context) (*ingest.Snapshot, error)
	Source() string
}

// Dashboard holds the current snapshot. Readers never block each other;
// concurrent loads collapse into a single fetch.
type Dashboard struct {
	loader       SnapshotLoader
	fetchTimeout time.Duration
	logger       *slog.Logger

	current atomic.Pointer[ingest.Snapshot]
	group   singleflight.Group
	loads   atomic.Int64
}

func NewDashboard(loader SnapshotLoader, fetchTimeout time.Duration, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		loader:       loader,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Load fetches a fresh snapshot and makes it current. The current snapshot
// is left in place when the fetch fails.
func (d *Dashboard) Load(ctx context.Context) (*ingest.Snapshot, error) {
	ch := d.group.DoChan("load", func() (any, error) {
		// Shared fetch: one caller hanging up must not cancel the others.
		fetchCtx := context.WithoutCancel(ctx)
		if d.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, d.fetchTimeout)
			defer cancel()
		}

		snap, err := d.loader.Load(fetchCtx)
		if err != nil {
			return nil, err
		}
		d.loads.Add(1)
		d.current.Store(snap)
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ingest.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot returns the current snapshot, loading one if none is cached.
func (d *Dashboard) Snapshot(ctx context.Context) (*ingest.Snapshot, error) {
	if snap := d.current.Load(); snap != nil {
		return snap, nil
	}

	ctx, span := observability.StartSpan(ctx, "dashboard.snapshot")
	defer span.End(d.logger)

	snap, err := d.Load(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return snap, nil
}

// Invalidate drops the cached snapshot; the next Snapshot call refetches.
func (d *Dashboard) Invalidate() {
	if old := d.current.Swap(nil); old != nil {
		d.logger.Info("snapshot invalidated", "snapshot_id", old.ID)
	}
}

func (d *Dashboard) Stats() map[string]any {
	stats := map[string]any{
		"source": d.loader.Source(),
		"loads":  d.loads.Load(),
		"loaded": false,
	}

	snap := d.current.Load()
	if snap == nil {
		return stats
	}

	stats["loaded"] = true
	stats["snapshot_id"] = snap.ID
	stats["loaded_at"] = snap.LoadedAt
	stats["rows"] = snap.Len()
	stats["columns"] = snap.Columns()
	stats["load"] = snap.Stats
	return stats
}

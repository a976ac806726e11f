package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"payments-dashboard/internal/models"
	"payments-dashboard/internal/observability"
)

const (
	defaultBatchSize = 5000
	defaultWorkers   = 4
)

type Loader struct {
	source    Source
	mapper    *StatusMapper
	workers   int
	batchSize int
	logger    *slog.Logger
}

type LoaderOption func(*Loader)

func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func WithBatchSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLoader(source Source, mapper *StatusMapper, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:    source,
		mapper:    mapper,
		workers:   defaultWorkers,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Source() string {
	return l.source.String()
}

// Load fetches the export and builds a snapshot. Only fetch failures and a
// missing header are errors; bad rows and bad cells are absorbed.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "ingest.load")
	defer span.End(l.logger)

	table, err := l.fetch(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	lay := newLayout(table.Header)
	rows, stats, err := l.normalize(ctx, lay, table.Records)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("normalize: %w", err)
	}
	stats.Malformed = table.Malformed

	snap := NewSnapshot(l.source.String(), lay.columns, rows)
	snap.Stats = stats
	span.SetAttr("snapshot_id", snap.ID)

	l.logger.Info("snapshot loaded",
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"records", stats.Records,
		"rows", stats.Rows,
		"malformed", stats.Malformed,
		"skipped", stats.Skipped,
		"rejected", stats.Rejected,
		"derived_gateway_charge", lay.derivesGatewayCharge(),
		"duration", time.Since(start),
	)
	if len(stats.Unmapped) > 0 {
		l.logger.Warn("unmapped statuses in source", "policy", l.mapper.policy, "statuses", stats.Unmapped)
	}

	return snap, nil
}

func (l *Loader) fetch(ctx context.Context) (*Table, error) {
	ctx, span := observability.StartSpan(ctx, "ingest.fetch")
	defer span.End(l.logger)
	span.SetAttr("source", l.source.String())

	table, err := l.source.Fetch(ctx)
	if err != nil {
		span.SetError(err)
		if errors.Is(err, ErrNoHeader) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	span.SetAttr("records", len(table.Records))
	return table, nil
}

type batchResult struct {
	rows     []models.Transaction
	skipped  int
	rejected int
	unmapped map[string]int
}

// normalize converts records in parallel batches and stitches them back in
// source order.
func (l *Loader) normalize(ctx context.Context, lay layout, records [][]string) ([]models.Transaction, LoadStats, error) {
	stats := LoadStats{Records: len(records), Unmapped: map[string]int{}}
	if len(records) == 0 {
		return []models.Transaction{}, stats, nil
	}

	batches := (len(records) + l.batchSize - 1) / l.batchSize
	results := make([]batchResult, batches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for b := 0; b < batches; b++ {
		lo := b * l.batchSize
		hi := min(lo+l.batchSize, len(records))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := batchResult{
				rows:     make([]models.Transaction, 0, hi-lo),
				unmapped: map[string]int{},
			}
			for _, record := range records[lo:hi] {
				tx, outcome := normalizeRecord(lay, l.mapper, record)
				switch outcome {
				case rowSkipped:
					res.skipped++
					continue
				case rowRejected:
					res.rejected++
					res.unmapped[lay.get(record, ColStatus)]++
					continue
				case rowKeptUnmapped:
					res.unmapped[tx.RawStatus]++
				}
				res.rows = append(res.rows, tx)
			}
			results[b] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	rows := make([]models.Transaction, 0, len(records))
	for _, res := range results {
		rows = append(rows, res.rows...)
		stats.Skipped += res.skipped
		stats.Rejected += res.rejected
		for raw, n := range res.unmapped {
			stats.Unmapped[raw] += n
		}
	}
	stats.Rows = len(rows)

	return rows, stats, nil
}

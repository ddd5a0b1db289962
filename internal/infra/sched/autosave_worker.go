package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"notegraph-ai/internal/domain/ports/repository"
	"notegraph-ai/internal/infra/metrics"
	"notegraph-ai/internal/infra/worker"
)

// AutosaveWorker periodically drains the set of workspaces written since
// the last tick and snapshots their slot blobs to durable storage. A
// snapshot failure only logs; the in-memory slots stay authoritative.
type AutosaveWorker struct {
	interval  time.Duration
	exporter  repository.Exporter
	snapshots repository.SnapshotRepository
	pool      *worker.Pool
	log       *zerolog.Logger
}

func NewAutosaveWorker(
	interval time.Duration,
	exporter repository.Exporter,
	snapshots repository.SnapshotRepository,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *AutosaveWorker {
	l := logger.With().Str("component", "AutosaveWorker").Logger()
	return &AutosaveWorker{
		interval:  interval,
		exporter:  exporter,
		snapshots: snapshots,
		pool:      pool,
		log:       &l,
	}
}

func (w *AutosaveWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting autosave worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping autosave worker")
			// Final drain so a clean shutdown loses nothing.
			w.flush(context.Background())
			return ctx.Err()
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *AutosaveWorker) flush(ctx context.Context) {
	dirty := w.exporter.DrainDirty()
	for _, ws := range dirty {
		workspace := ws
		err := w.pool.Submit(func(ctx context.Context) error {
			return w.snapshot(ctx, workspace)
		})
		if err != nil {
			// Queue saturated; run inline rather than drop the snapshot.
			if serr := w.snapshot(ctx, workspace); serr != nil {
				w.log.Error().Err(serr).Str("workspace", workspace).Msg("inline snapshot failed")
			}
		}
	}
	if len(dirty) > 0 {
		w.log.Debug().Int("workspaces", len(dirty)).Msg("autosave tick")
	}
}

func (w *AutosaveWorker) snapshot(ctx context.Context, workspace string) error {
	for slot, payload := range w.exporter.Export(ctx, workspace) {
		if err := w.snapshots.Save(ctx, workspace, slot, payload); err != nil {
			metrics.IncSnapshot(false)
			w.log.Error().Err(err).Str("workspace", workspace).Str("slot", slot).Msg("snapshot write failed")
			continue
		}
		metrics.IncSnapshot(true)
	}
	return nil
}

// Package maintenance holds periodic upkeep tasks for the metrics database.
package maintenance

import (
	"context"
	"time"

	"kbmetrics/internal/workers"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

// Store is the subset of the metrics repository maintenance needs
type Store interface {
	BackfillNarrativeAccessCounts(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) ([]string, error)
}

// NarrativeBackfill sets access_count on narrative records written before
// the counter existed
type NarrativeBackfill struct {
	*workers.BaseWorker
	store Store
}

// NewNarrativeBackfill creates the narrative access count backfill worker
func NewNarrativeBackfill(store Store, interval time.Duration, enabled bool, log *logger.Logger) *NarrativeBackfill {
	w := &NarrativeBackfill{
		BaseWorker: workers.NewBaseWorker("narrative_backfill", interval, enabled),
		store:      store,
	}
	if log != nil {
		w.SetLogger(log)
	}
	return w
}

// Run performs one backfill pass
func (w *NarrativeBackfill) Run(ctx context.Context) error {
	n, err := w.store.BackfillNarrativeAccessCounts(ctx)
	if err != nil {
		return errors.Wrap(err, "narrative backfill")
	}
	if n > 0 {
		w.Log().Infow("Narrative access counts backfilled", "documents", n)
	}
	return nil
}

// Indexes keeps the metrics database indexes in place
type Indexes struct {
	*workers.BaseWorker
	store Store
}

// NewIndexes creates the index upkeep worker
func NewIndexes(store Store, interval time.Duration, enabled bool, log *logger.Logger) *Indexes {
	w := &Indexes{
		BaseWorker: workers.NewBaseWorker("ensure_indexes", interval, enabled),
		store:      store,
	}
	if log != nil {
		w.SetLogger(log)
	}
	return w
}

// Run creates any missing index. Creating an existing index is a no-op.
func (w *Indexes) Run(ctx context.Context) error {
	names, err := w.store.EnsureIndexes(ctx)
	if err != nil {
		return errors.Wrap(err, "ensure indexes")
	}
	w.Log().Debugw("Indexes ensured", "indexes", names)
	return nil
}

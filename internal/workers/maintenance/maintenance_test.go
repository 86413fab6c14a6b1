package maintenance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbmetrics/internal/workers"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

type stubStore struct {
	backfills atomic.Int32
	indexes   atomic.Int32
	err       error
}

func (s *stubStore) BackfillNarrativeAccessCounts(context.Context) (int64, error) {
	s.backfills.Add(1)
	return 3, s.err
}

func (s *stubStore) EnsureIndexes(context.Context) ([]string, error) {
	s.indexes.Add(1)
	return []string{"username_1_signup_at_1"}, s.err
}

func TestNarrativeBackfill_Run(t *testing.T) {
	store := &stubStore{}
	w := NewNarrativeBackfill(store, time.Hour, true, logger.Nop())

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, int32(1), store.backfills.Load())
	assert.Equal(t, "narrative_backfill", w.Name())
}

func TestWorkers_PropagateStoreErrors(t *testing.T) {
	store := &stubStore{err: errors.ErrUnavailable}

	assert.ErrorIs(t, NewNarrativeBackfill(store, time.Hour, true, logger.Nop()).Run(context.Background()), errors.ErrUnavailable)
	assert.ErrorIs(t, NewIndexes(store, time.Hour, true, logger.Nop()).Run(context.Background()), errors.ErrUnavailable)
}

func TestWorkers_RunUnderScheduler(t *testing.T) {
	store := &stubStore{}
	scheduler := workers.NewScheduler(logger.Nop())
	scheduler.RegisterWorker(NewNarrativeBackfill(store, time.Hour, true, logger.Nop()))
	scheduler.RegisterWorker(NewIndexes(store, time.Hour, true, logger.Nop()))

	require.NoError(t, scheduler.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return store.backfills.Load() == 1 && store.indexes.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, scheduler.Stop())
}

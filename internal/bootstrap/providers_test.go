package bootstrap

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbmetrics/internal/adapters/config"
	errnoop "kbmetrics/internal/adapters/errors/noop"
	redisclient "kbmetrics/internal/adapters/redis"
	"kbmetrics/internal/cache"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

type stubStore struct{}

func (stubStore) BackfillNarrativeAccessCounts(context.Context) (int64, error) { return 0, nil }
func (stubStore) EnsureIndexes(context.Context) ([]string, error)              { return nil, nil }

func TestProvideCache(t *testing.T) {
	mem, err := provideCache(config.CacheConfig{Backend: "Memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, mem)
	closeCache(mem)

	nop, err := provideCache(config.CacheConfig{Backend: "none"}, nil)
	require.NoError(t, err)
	assert.Equal(t, cache.Nop{}, nop)

	_, err = provideCache(config.CacheConfig{Backend: "redis"}, nil)
	assert.ErrorIs(t, err, errors.ErrConfiguration)

	_, err = provideCache(config.CacheConfig{Backend: "memcached"}, nil)
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestProvideCache_Redis(t *testing.T) {
	srv := miniredis.RunT(t)
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)

	rdb, err := redisclient.NewClient(context.Background(), config.RedisConfig{Host: srv.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c, err := provideCache(config.CacheConfig{Backend: "redis", KeyPrefix: "kbm"}, rdb)
	require.NoError(t, err)

	key, err := cache.NewKey("ListWsOwners")
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), key, []string{"alice"}, cache.Policy{Limit: 1}))
	assert.True(t, srv.Exists("kbm:"+key.String()))
}

func TestProvideErrorTracker_DisabledFallsBackToNoop(t *testing.T) {
	cfg := &config.Config{ErrorTracking: config.ErrorTrackingConfig{Enabled: true}}

	tracker := provideErrorTracker(cfg, logger.Nop())
	assert.IsType(t, &errnoop.Tracker{}, tracker)
}

func TestProvideScheduler(t *testing.T) {
	assert.Nil(t, provideScheduler(config.WorkersConfig{}, stubStore{}, logger.Nop()))

	s := provideScheduler(config.WorkersConfig{
		Enabled:                true,
		NarrativeBackfill:      true,
		NarrativeBackfillEvery: time.Hour,
		EnsureIndexesEvery:     time.Hour,
	}, stubStore{}, logger.Nop())
	require.NotNil(t, s)

	ws := s.GetWorkers()
	require.Len(t, ws, 2)
	assert.True(t, ws[0].Enabled())
	assert.False(t, ws[1].Enabled())
}

func TestLifecycle_ShutdownWithNothingStarted(t *testing.T) {
	NewLifecycle().Shutdown(nil, nil, nil, cache.NewMemory(), nil, nil, errnoop.New(), logger.Nop())
}

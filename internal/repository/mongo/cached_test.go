package mongo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"kbmetrics/internal/cache"
	"kbmetrics/internal/domain/metrics"
	"kbmetrics/internal/testsupport"
	"kbmetrics/pkg/epoch"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

type countingLoader struct {
	calls atomic.Int32
	rows  []string
	err   error
}

func (l *countingLoader) load(context.Context) ([]string, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.rows, nil
}

// brokenCache fails every operation
type brokenCache struct{}

func (brokenCache) Get(context.Context, cache.Key, any) (bool, error) {
	return false, errors.ErrUnavailable
}

func (brokenCache) Put(context.Context, cache.Key, any, cache.Policy) error {
	return errors.ErrUnavailable
}

func newCachedRepo(t *testing.T, c cache.Cache) *MetricsRepository {
	t.Helper()
	return NewMetricsRepository(nil, WithCache(c), WithLogger(logger.Nop()))
}

func TestCached_SecondCallServedFromCache(t *testing.T) {
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	repo := newCachedRepo(t, mem)
	loader := &countingLoader{rows: []string{"alice", "bob"}}
	ctx := context.Background()
	args := []any{epoch.Millis(1), epoch.Millis(2)}

	first, err := cached(ctx, repo, methodExecTasks, args, loader.load)
	require.NoError(t, err)
	second, err := cached(ctx, repo, methodExecTasks, args, loader.load)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCached_DifferentArgsMiss(t *testing.T) {
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	repo := newCachedRepo(t, mem)
	loader := &countingLoader{rows: []string{"alice"}}
	ctx := context.Background()

	_, err := cached(ctx, repo, methodExecTasks, []any{epoch.Millis(1)}, loader.load)
	require.NoError(t, err)
	_, err = cached(ctx, repo, methodExecTasks, []any{epoch.Millis(2)}, loader.load)
	require.NoError(t, err)
	_, err = cached(ctx, repo, methodUJSResults, []any{epoch.Millis(1)}, loader.load)
	require.NoError(t, err)

	assert.Equal(t, int32(3), loader.calls.Load())
}

func TestCached_RedisBackend(t *testing.T) {
	client, _ := testsupport.NewRedisClient(t)
	repo := newCachedRepo(t, cache.NewRedis(client, "kbm:test"))
	loader := &countingLoader{rows: []string{"alice"}}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cached(ctx, repo, methodWsOwners, nil, loader.load)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, got)
	}
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCached_BrokenCacheFallsThrough(t *testing.T) {
	repo := newCachedRepo(t, brokenCache{})
	loader := &countingLoader{rows: []string{"alice"}}

	for i := 0; i < 2; i++ {
		got, err := cached(context.Background(), repo, methodStaffUsernames, nil, loader.load)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, got)
	}
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCached_LoadErrorsAreNotCached(t *testing.T) {
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)
	repo := newCachedRepo(t, mem)
	loader := &countingLoader{err: errors.ErrUnavailable}
	ctx := context.Background()

	_, err := cached(ctx, repo, methodWsOwners, nil, loader.load)
	assert.ErrorIs(t, err, errors.ErrUnavailable)

	loader.err = nil
	loader.rows = []string{"alice"}
	got, err := cached(ctx, repo, methodWsOwners, nil, loader.load)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, got)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCachePolicies_CoverCachedMethods(t *testing.T) {
	for _, method := range []string{
		methodStaffUsernames, methodWsOwners, methodNarrativeOwners, methodWsNarratives,
		methodUserObjects, methodWsFirstAccess, methodExecTasks, methodUJSResults,
	} {
		p, ok := cachePolicies[method]
		require.True(t, ok, method)
		assert.Positive(t, p.Limit, method)
	}

	assert.Zero(t, cachePolicies[methodWsOwners].TTL)
	assert.Equal(t, 1024, cachePolicies[methodNarrativeOwners].Limit)
	assert.Equal(t, oneDay, cachePolicies[methodUJSResults].TTL)
}

// gatedLoader blocks until released or until its context ends
type gatedLoader struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{started: make(chan struct{}), release: make(chan struct{})}
}

func (l *gatedLoader) load(ctx context.Context) ([]string, error) {
	l.calls.Add(1)
	l.once.Do(func() { close(l.started) })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.release:
		return []string{"alice"}, nil
	}
}

func TestCached_SharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	repo := newCachedRepo(t, cache.Nop{})
	loader := newGatedLoader()

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cached(ctxA, repo, methodWsOwners, nil, loader.load)
		errA <- err
	}()
	<-loader.started

	type result struct {
		rows []string
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		rows, err := cached(context.Background(), repo, methodWsOwners, nil, loader.load)
		resB <- result{rows, err}
	}()

	// let the second caller join the in-flight load
	time.Sleep(50 * time.Millisecond)
	cancelA()

	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(loader.release)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, []string{"alice"}, res.rows)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCached_HitEqualsMissForNestedInput(t *testing.T) {
	for name, c := range map[string]func(t *testing.T) cache.Cache{
		"memory": func(t *testing.T) cache.Cache {
			mem := cache.NewMemory()
			t.Cleanup(mem.Close)
			return mem
		},
		"redis": func(t *testing.T) cache.Cache {
			client, _ := testsupport.NewRedisClient(t)
			return cache.NewRedis(client, "kbm:test")
		},
	} {
		t.Run(name, func(t *testing.T) {
			repo := newCachedRepo(t, c(t))
			ctx := context.Background()
			args := []any{epoch.Millis(1), epoch.Millis(2)}

			var calls atomic.Int32
			load := func(context.Context) ([]metrics.ExecTask, error) {
				calls.Add(1)
				return []metrics.ExecTask{{
					AppJobID:     "app-1",
					UJSJobID:     "ujs-1",
					CreationTime: 1520000000000,
					JobInput: map[string]any{
						"n":      int64(9007199254740993),
						"params": bson.M{"ws": int32(5)},
					},
				}}, nil
			}

			miss, err := cached(ctx, repo, methodExecTasks, args, load)
			require.NoError(t, err)
			hit, err := cached(ctx, repo, methodExecTasks, args, load)
			require.NoError(t, err)

			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, miss, hit)
		})
	}
}

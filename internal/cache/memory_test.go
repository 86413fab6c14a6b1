package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()

	m := NewMemory()
	t.Cleanup(m.Close)
	return m
}

func TestMemory_RoundTrip(t *testing.T) {
	roundTrip(t, newTestMemory(t))
}

func TestMemory_NeverExceedsLimit(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	policy := Policy{Limit: 4}

	for i := 0; i < 50; i++ {
		k, err := NewKey("ListUserObjectsFromWsObjs", i)
		require.NoError(t, err)
		require.NoError(t, m.Put(ctx, k, i, policy))
	}

	hits := 0
	for i := 0; i < 50; i++ {
		k, err := NewKey("ListUserObjectsFromWsObjs", i)
		require.NoError(t, err)

		var v int
		hit, err := m.Get(ctx, k, &v)
		require.NoError(t, err)
		if hit {
			hits++
			assert.Equal(t, i, v)
		}
	}
	assert.LessOrEqual(t, hits, 4)
}

func TestMemory_EntriesExpire(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	key, err := NewKey("ListExecTasks", int64(1))
	require.NoError(t, err)
	require.NoError(t, m.Put(ctx, key, "rows", Policy{Limit: 8, TTL: 50 * time.Millisecond}))

	var v string
	hit, err := m.Get(ctx, key, &v)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Eventually(t, func() bool {
		hit, err := m.Get(ctx, key, &v)
		return err == nil && !hit
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMemory_UnknownMethodMisses(t *testing.T) {
	m := newTestMemory(t)

	var v string
	hit, err := m.Get(context.Background(), Key{Method: "never-stored", Digest: "x"}, &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemory_CloseDropsBuckets(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	key, err := NewKey("ListWsOwners")
	require.NoError(t, err)
	require.NoError(t, m.Put(ctx, key, []string{"a"}, Policy{}))

	m.Close()

	var v []string
	hit, err := m.Get(ctx, key, &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

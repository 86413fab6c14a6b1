package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbmetrics/internal/testsupport"
)

func newTestRedis(t *testing.T) (*Redis, func(time.Duration)) {
	t.Helper()

	client, srv := testsupport.NewRedisClient(t)
	c := NewRedis(client, "kbm:test")

	// deterministic insertion order for eviction
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}

	return c, srv.FastForward
}

func TestRedis_RoundTrip(t *testing.T) {
	c, _ := newTestRedis(t)
	roundTrip(t, c)
}

func TestRedis_EvictsOldestBeyondLimit(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()
	policy := Policy{Limit: 3}

	keys := make([]Key, 5)
	for i := range keys {
		k, err := NewKey("ListExecTasks", i)
		require.NoError(t, err)
		keys[i] = k
		require.NoError(t, c.Put(ctx, k, i, policy))
	}

	n, err := c.client.ZCard(ctx, c.indexKey("ListExecTasks")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for i, k := range keys {
		var v int
		hit, err := c.Get(ctx, k, &v)
		require.NoError(t, err)
		if i < 2 {
			assert.False(t, hit, "entry %d should be evicted", i)
			continue
		}
		assert.True(t, hit, "entry %d should survive", i)
		assert.Equal(t, i, v)
	}
}

func TestRedis_LimitsArePerMethod(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		k1, err := NewKey("ListWsNarratives", i)
		require.NoError(t, err)
		k2, err := NewKey("ListUJSResults", i)
		require.NoError(t, err)

		require.NoError(t, c.Put(ctx, k1, i, Policy{Limit: 2}))
		require.NoError(t, c.Put(ctx, k2, i, Policy{Limit: 4}))
	}

	assert.Equal(t, int64(2), c.client.ZCard(ctx, c.indexKey("ListWsNarratives")).Val())
	assert.Equal(t, int64(4), c.client.ZCard(ctx, c.indexKey("ListUJSResults")).Val())
}

func TestRedis_EntriesExpire(t *testing.T) {
	c, fastForward := newTestRedis(t)
	ctx := context.Background()

	key, err := NewKey("ListWsNarratives", "window")
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, key, "rows", Policy{Limit: 10, TTL: time.Hour}))

	var v string
	hit, err := c.Get(ctx, key, &v)
	require.NoError(t, err)
	assert.True(t, hit)

	fastForward(time.Hour + time.Second)

	hit, err = c.Get(ctx, key, &v)
	require.NoError(t, err)
	assert.False(t, hit)

	// the expired entry is dropped from the index on lookup
	assert.Equal(t, int64(0), c.client.ZCard(ctx, c.indexKey("ListWsNarratives")).Val())
}

func TestRedis_NoTTLNeverExpires(t *testing.T) {
	c, fastForward := newTestRedis(t)
	ctx := context.Background()

	key, err := NewKey("ListWsOwners")
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, key, []string{"alice"}, Policy{Limit: 1024}))

	fastForward(30 * 24 * time.Hour)

	var v []string
	hit, err := c.Get(ctx, key, &v)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"alice"}, v)
}

func TestRedis_CorruptEntryIsAnError(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	key, err := NewKey("ListWsOwners")
	require.NoError(t, err)
	require.NoError(t, c.client.Set(ctx, c.entryKey(key), "not a document", 0).Err())

	var v []string
	hit, err := c.Get(ctx, key, &v)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestRedis_KeysAreNamespaced(t *testing.T) {
	c, _ := newTestRedis(t)

	key := Key{Method: "ListExecTasks", Digest: "abc"}
	assert.Equal(t, "kbm:test:ListExecTasks:abc", c.entryKey(key))
	assert.Equal(t, "kbm:test:ListExecTasks:index", c.indexKey(key.Method))
	assert.Equal(t, fmt.Sprintf("%s:%s", key.Method, key.Digest), key.String())
}

package testsupport

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient starts an in-process Redis server for the test and returns
// a client connected to it. Both are closed on cleanup.
func NewRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, srv
}

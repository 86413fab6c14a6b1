package cache

import (
	"context"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"kbmetrics/pkg/errors"
)

var _ Cache = (*Memory)(nil)

// Memory is an in-process cache with one bounded ristretto cache per method.
// Each entry costs 1, so a method never holds more than its policy limit.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*ristretto.Cache[string, []byte]
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]*ristretto.Cache[string, []byte])}
}

func (m *Memory) bucket(method string, create bool, limit int) (*ristretto.Cache[string, []byte], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.buckets[method]; ok || !create {
		return b, nil
	}

	b, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        int64(limit) * 10,
		MaxCost:            int64(limit),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create cache bucket %s", method)
	}
	m.buckets[method] = b
	return b, nil
}

// Get retrieves and decodes a cached value
func (m *Memory) Get(_ context.Context, key Key, dest any) (bool, error) {
	b, _ := m.bucket(key.Method, false, 0)
	if b == nil {
		return false, nil
	}

	data, ok := b.Get(key.Digest)
	if !ok {
		return false, nil
	}
	if err := decode(data, dest); err != nil {
		return false, errors.Wrapf(err, "failed to decode cache entry %s", key)
	}
	return true, nil
}

// Put stores a value. The first Put for a method fixes that method's limit.
func (m *Memory) Put(_ context.Context, key Key, value any, policy Policy) error {
	data, err := encode(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry %s", key)
	}

	b, err := m.bucket(key.Method, true, policy.limit())
	if err != nil {
		return err
	}

	b.SetWithTTL(key.Digest, data, 1, policy.TTL)
	b.Wait()
	return nil
}

// Close releases every bucket
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for method, b := range m.buckets {
		b.Close()
		delete(m.buckets, method)
	}
}

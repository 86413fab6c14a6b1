// Package cache provides the result cache collaborator used by the metrics
// repository to memoize expensive report queries.
//
// Values are stored BSON encoded, so a hit always yields a fresh copy that
// the caller may mutate, decoded exactly as the store would decode it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"kbmetrics/pkg/errors"
)

// Policy bounds one method's entries. Limit <= 0 falls back to DefaultLimit;
// TTL 0 means entries never expire.
type Policy struct {
	Limit int
	TTL   time.Duration
}

// DefaultLimit is the entry bound applied when a policy leaves Limit unset
const DefaultLimit = 1024

func (p Policy) limit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	return p.Limit
}

// Key identifies a cached result by method and a digest of its arguments
type Key struct {
	Method string
	Digest string
}

// NewKey builds a key from the method name and its arguments. Arguments are
// JSON encoded, so equal values always produce equal keys.
func NewKey(method string, args ...any) (Key, error) {
	if args == nil {
		args = []any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return Key{}, errors.Wrapf(err, "failed to build cache key for %s", method)
	}
	sum := sha256.Sum256(data)
	return Key{Method: method, Digest: hex.EncodeToString(sum[:16])}, nil
}

func (k Key) String() string {
	return k.Method + ":" + k.Digest
}

// Cache stores report results
type Cache interface {
	// Get decodes the cached value for key into dest. The bool reports a hit.
	Get(ctx context.Context, key Key, dest any) (bool, error)

	// Put stores value under key, evicting the method's oldest entries beyond
	// policy.Limit
	Put(ctx context.Context, key Key, value any, policy Policy) error
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(context.Context, Key, any) (bool, error) { return false, nil }
func (Nop) Put(context.Context, Key, any, Policy) error { return nil }

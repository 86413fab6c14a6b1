package testsupport

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// Global counter for generating unique sequential IDs in tests
	testSequence uint64

	// Base timestamp to make names shorter
	baseTimestamp = time.Now().UnixNano()
)

func init() {
	// Initialize with current timestamp to ensure uniqueness across test runs
	testSequence = uint64(baseTimestamp % 1000000)
}

// NextSequence returns next unique sequence number
func NextSequence() uint64 {
	return atomic.AddUint64(&testSequence, 1)
}

// UniqueName generates a unique name with given prefix
// Example: UniqueName("narrative") -> "narrative_123456"
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, NextSequence())
}

// UniqueUsername generates a unique username
// Example: UniqueUsername() -> "user_123456"
func UniqueUsername() string {
	return fmt.Sprintf("user_%d", NextSequence())
}

// UniqueEmail generates a unique email address
// Example: UniqueEmail("user") -> "user_123456@test.local"
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.local", prefix, NextSequence())
}

// UniqueWorkspaceID generates a unique positive workspace id
func UniqueWorkspaceID() int64 {
	return int64(NextSequence())
}

// UniqueJobID generates a unique job id
func UniqueJobID() string {
	return uuid.New().String()
}

// UniqueDatabasePrefix generates a database name prefix unique across
// processes. MongoDB database names are limited to 63 bytes, so the random
// part is kept short.
func UniqueDatabasePrefix(base string) string {
	return fmt.Sprintf("%s_%d_%s", base, NextSequence(), uuid.New().String()[:8])
}

package testsupport

import (
	"os"
	"testing"
)

// MongoTestEnv holds what integration tests need to reach a MongoDB server
type MongoTestEnv struct {
	URI string
	// Prefix starts every database a test creates
	Prefix string
}

// LoadMongoEnv reads MONGO_TEST_URI and MONGO_TEST_DB_PREFIX. Tests are
// skipped in -short mode and when the URI is missing.
func LoadMongoEnv(t *testing.T) MongoTestEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("integration environment missing, set MONGO_TEST_URI to run")
	}

	return MongoTestEnv{
		URI:    uri,
		Prefix: valueWithDefault("MONGO_TEST_DB_PREFIX", "kbm_test"),
	}
}

func valueWithDefault(key string, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoDatabases maps logical database names onto databases unique to one
// test, so tests can run against a shared server without seeing each
// other's data. Every database touched is dropped on cleanup.
type MongoDatabases struct {
	client *mongo.Client
	prefix string

	mu   sync.Mutex
	used map[string]struct{}
}

// NewMongoDatabases connects to the test server from LoadMongoEnv
func NewMongoDatabases(t *testing.T) *MongoDatabases {
	t.Helper()

	env := LoadMongoEnv(t)

	opts := options.Client().
		ApplyURI(env.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true, ObjectIDAsHexString: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Fatalf("failed to ping mongo: %v", err)
	}

	dbs := &MongoDatabases{
		client: client,
		prefix: UniqueDatabasePrefix(env.Prefix),
		used:   make(map[string]struct{}),
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dbs.mu.Lock()
		defer dbs.mu.Unlock()
		for name := range dbs.used {
			_ = client.Database(name).Drop(ctx)
		}
		_ = client.Disconnect(ctx)
	})

	return dbs
}

// Database returns the test database standing in for the logical name
func (d *MongoDatabases) Database(logical string) *mongo.Database {
	name := d.prefix + "_" + logical

	d.mu.Lock()
	d.used[name] = struct{}{}
	d.mu.Unlock()

	return d.client.Database(name)
}

// Collection resolves a collection of a logical database
func (d *MongoDatabases) Collection(database, collection string) (*mongo.Collection, error) {
	return d.Database(database).Collection(collection), nil
}

// InsertDocs writes raw fixture documents, failing the test on error
func (d *MongoDatabases) InsertDocs(t *testing.T, database, collection string, docs ...any) {
	t.Helper()

	if len(docs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := d.Database(database).Collection(collection).InsertMany(ctx, docs); err != nil {
		t.Fatalf("failed to insert fixtures into %s.%s: %v", database, collection, err)
	}
}

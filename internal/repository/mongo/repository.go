package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/singleflight"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/internal/adapters/errors/noop"
	"kbmetrics/internal/cache"
	"kbmetrics/internal/domain/metrics"
	imetrics "kbmetrics/internal/metrics"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

// Collection names
const (
	CollUsers           = "users"            // metrics.users, auth2.users
	CollDailyActivities = "daily_activities" // metrics
	CollNarratives      = "narratives"       // metrics
	CollWorkspaces      = "workspaces"       // workspace
	CollWorkspaceObjs   = "workspaceObjects" // workspace
	CollJobState        = "jobstate"         // userjobstate
	CollExecTasks       = "exec_tasks"       // exec_engine

	// not queried yet
	CollUserState = "userstate"  // userjobstate
	CollExecApps  = "exec_apps"  // exec_engine
	CollExecLogs  = "exec_logs"  // exec_engine
	CollTaskQueue = "task_queue" // exec_engine
	CollProfiles  = "profiles"   // user_profile_db
	CollDBVersion = "db_version"
)

// Databases resolves collection handles by logical database name
type Databases interface {
	Collection(database, collection string) (*mongo.Collection, error)
}

// Compile-time check
var _ metrics.Repository = (*MetricsRepository)(nil)

// MetricsRepository implements metrics.Repository on top of MongoDB
type MetricsRepository struct {
	dbs     Databases
	cache   cache.Cache
	log     *logger.Logger
	tracker errors.Tracker
	group   singleflight.Group
}

// Option configures a MetricsRepository
type Option func(*MetricsRepository)

// WithCache sets the result cache used by the cached report methods
func WithCache(c cache.Cache) Option {
	return func(r *MetricsRepository) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithLogger sets the repository logger
func WithLogger(l *logger.Logger) Option {
	return func(r *MetricsRepository) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTracker sets the tracker that receives write breadcrumbs
func WithTracker(t errors.Tracker) Option {
	return func(r *MetricsRepository) {
		if t != nil {
			r.tracker = t
		}
	}
}

// NewMetricsRepository creates a new metrics repository. Without WithCache
// every read goes to the store.
func NewMetricsRepository(dbs Databases, opts ...Option) *MetricsRepository {
	r := &MetricsRepository{
		dbs:     dbs,
		cache:   cache.Nop{},
		log:     logger.Get(),
		tracker: noop.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "metrics_repository")
	return r
}

func (r *MetricsRepository) collection(database, name string) (*mongo.Collection, error) {
	coll, err := r.dbs.Collection(database, name)
	if err != nil {
		return nil, errors.Wrapf(err, "collection %s.%s", database, name)
	}
	return coll, nil
}

// observe records one store round trip
func observe(database, operation string, start time.Time, err error) {
	imetrics.RecordDBQuery(database, operation, time.Since(start), err)
}

// writeFailed logs a failed write with its store coordinates, which also
// forwards it to the logger's error tracker
func (r *MetricsRepository) writeFailed(ctx context.Context, collection, operation string, err error) {
	r.log.ErrorWithContext(ctx, err, map[string]string{
		"database":   config.DBMetrics,
		"collection": collection,
		"operation":  operation,
	})
}

// CollectionSizes returns estimated document counts of the metrics collections
func (r *MetricsRepository) CollectionSizes(ctx context.Context) (map[string]int64, error) {
	sizes := make(map[string]int64, 3)
	for _, name := range []string{CollUsers, CollDailyActivities, CollNarratives} {
		coll, err := r.collection(config.DBMetrics, name)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		n, err := coll.EstimatedDocumentCount(ctx)
		observe(config.DBMetrics, "count_"+name, start, err)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", name)
		}
		sizes[name] = n
	}
	return sizes, nil
}

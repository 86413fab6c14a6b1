package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/internal/domain/metrics"
	"kbmetrics/pkg/epoch"
	"kbmetrics/pkg/errors"
)

// aggregate runs pipeline against database.collection and decodes every
// result into a slice. An empty result is an empty, non-nil slice.
func aggregate[T any](ctx context.Context, r *MetricsRepository, database, collection, operation string, pipeline mongo.Pipeline) ([]T, error) {
	coll, err := r.collection(database, collection)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		observe(database, operation, start, err)
		return nil, errors.Wrapf(err, "failed to aggregate %s.%s", database, collection)
	}

	out := make([]T, 0)
	err = cursor.All(ctx, &out)
	observe(database, operation, start, err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s.%s", database, collection)
	}
	return out, nil
}

// find is aggregate for plain queries
func find[T any](ctx context.Context, r *MetricsRepository, database, collection, operation string, filter any, opts *options.FindOptionsBuilder) ([]T, error) {
	coll, err := r.collection(database, collection)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		observe(database, operation, start, err)
		return nil, errors.Wrapf(err, "failed to query %s.%s", database, collection)
	}

	out := make([]T, 0)
	err = cursor.All(ctx, &out)
	observe(database, operation, start, err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s.%s", database, collection)
	}
	return out, nil
}

// AggrUniqueUsersPerDay counts distinct users with modifications per day
func (r *MetricsRepository) AggrUniqueUsersPerDay(ctx context.Context, min, max epoch.Instant, excludeUsers []string) ([]metrics.DailyUniqueUsers, error) {
	return aggregate[metrics.DailyUniqueUsers](ctx, r, config.DBMetrics, CollDailyActivities,
		"aggr_unique_users_per_day", uniqueUsersPerDayPipeline(min, max, excludeUsers))
}

// GetUserInfo lists metrics users who signed up in [min, max], ordered by signup
func (r *MetricsRepository) GetUserInfo(ctx context.Context, userIDs []string, min, max epoch.Instant, excludeStaff bool) ([]metrics.UserInfo, error) {
	opts := options.Find().
		SetProjection(userInfoProjection).
		SetSort(bson.D{{Key: "signup_at", Value: 1}})

	return find[metrics.UserInfo](ctx, r, config.DBMetrics, CollUsers,
		"get_user_info", userInfoFilter(userIDs, min, max, excludeStaff), opts)
}

// ListStaffUsernames lists users flagged as staff
func (r *MetricsRepository) ListStaffUsernames(ctx context.Context) ([]string, error) {
	return cached(ctx, r, methodStaffUsernames, nil, func(ctx context.Context) ([]string, error) {
		type row struct {
			Username string `bson:"username"`
		}

		opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "username", Value: 1}})
		rows, err := find[row](ctx, r, config.DBMetrics, CollUsers, "list_staff_usernames", staffFilter(), opts)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(rows))
		for _, row := range rows {
			names = append(names, row.Username)
		}
		return names, nil
	})
}

package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/internal/domain/metrics"
	"kbmetrics/pkg/epoch"
)

// AggrUserDetails lists auth2 accounts created in [min, max], shaped like
// metrics users
func (r *MetricsRepository) AggrUserDetails(ctx context.Context, userIDs []string, min, max epoch.Instant, excludeUsers []string) ([]metrics.AuthUser, error) {
	return aggregate[metrics.AuthUser](ctx, r, config.DBAuth2, CollUsers,
		"aggr_user_details", userDetailsPipeline(userIDs, min, max, excludeUsers))
}

// ListExecTasks lists execution engine tasks created in [min, max]
func (r *MetricsRepository) ListExecTasks(ctx context.Context, min, max epoch.Instant) ([]metrics.ExecTask, error) {
	args := []any{min, max}
	return cached(ctx, r, methodExecTasks, args, func(ctx context.Context) ([]metrics.ExecTask, error) {
		opts := options.Find().
			SetProjection(execTaskProjection).
			SetSort(bson.D{{Key: "creation_time", Value: 1}})

		return find[metrics.ExecTask](ctx, r, config.DBExecEngine, CollExecTasks,
			"list_exec_tasks", execTasksFilter(min, max), opts)
	})
}

// ListUJSResults lists described job states created in [min, max]
func (r *MetricsRepository) ListUJSResults(ctx context.Context, userIDs []string, min, max epoch.Instant) ([]metrics.JobState, error) {
	args := []any{userIDs, min, max}
	return cached(ctx, r, methodUJSResults, args, func(ctx context.Context) ([]metrics.JobState, error) {
		opts := options.Find().SetProjection(ujsResultsProjection)

		return find[metrics.JobState](ctx, r, config.DBUserJobState, CollJobState,
			"list_ujs_results", ujsResultsFilter(userIDs, min, max), opts)
	})
}

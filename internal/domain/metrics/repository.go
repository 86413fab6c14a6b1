package metrics

import (
	"context"

	"kbmetrics/pkg/epoch"
)

// Writer records users, activity and narrative access in the metrics database.
// Every write is an upsert or a duplicate-tolerant insert; nothing is deleted.
type Writer interface {
	UpdateUserRecords(ctx context.Context, filter UserFilter, data UserRecord, isStaff bool) (UpdateOutcome, error)
	UpdateActivityRecords(ctx context.Context, filter ActivityFilter, data ActivityRecord) (UpdateOutcome, error)

	// InsertActivityRecordsBulk reports every document's outcome and leaves
	// tolerance policy to the caller
	InsertActivityRecordsBulk(ctx context.Context, docs []ActivityRecord) (BulkInsertResult, error)

	// InsertActivityRecords skips duplicates and fails on anything else.
	// Returns the number of documents written.
	InsertActivityRecords(ctx context.Context, docs []ActivityRecord) (int, error)

	UpdateNarrativeRecords(ctx context.Context, filter NarrativeFilter, data NarrativeRecord) (UpdateOutcome, error)
}

// MetricsReader queries the metrics database
type MetricsReader interface {
	AggrUniqueUsersPerDay(ctx context.Context, min, max epoch.Instant, excludeUsers []string) ([]DailyUniqueUsers, error)
	GetUserInfo(ctx context.Context, userIDs []string, min, max epoch.Instant, excludeStaff bool) ([]UserInfo, error)
	ListStaffUsernames(ctx context.Context) ([]string, error)
}

// WorkspaceReader queries the workspace database (read only)
type WorkspaceReader interface {
	AggrActivitiesFromWsObjs(ctx context.Context, min, max epoch.Instant) ([]WorkspaceActivity, error)
	ListWsOwners(ctx context.Context) ([]WorkspaceOwner, error)
	ListNarrativeOwners(ctx context.Context, wsIDs []int64, owners []string) ([]NarrativeOwner, error)
	ListWsNarratives(ctx context.Context, min, max epoch.Instant) ([]WorkspaceNarrative, error)
	ListUserObjectsFromWsObjs(ctx context.Context, min, max epoch.Instant, wsIDs []int64) ([]UserObject, error)
	ListWsFirstAccess(ctx context.Context, min, max epoch.Instant, wsIDs []int64) ([]WorkspaceFirstAccess, error)
}

// JobReader queries the auth, job state and execution engine databases (read only)
type JobReader interface {
	AggrUserDetails(ctx context.Context, userIDs []string, min, max epoch.Instant, excludeUsers []string) ([]AuthUser, error)
	ListExecTasks(ctx context.Context, min, max epoch.Instant) ([]ExecTask, error)
	ListUJSResults(ctx context.Context, userIDs []string, min, max epoch.Instant) ([]JobState, error)
}

// Repository is the full metrics facade
type Repository interface {
	Writer
	MetricsReader
	WorkspaceReader
	JobReader
}

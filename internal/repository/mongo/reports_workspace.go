package mongo

import (
	"context"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/internal/domain/metrics"
	"kbmetrics/pkg/epoch"
)

// AggrActivitiesFromWsObjs counts object saves per workspace per day
func (r *MetricsRepository) AggrActivitiesFromWsObjs(ctx context.Context, min, max epoch.Instant) ([]metrics.WorkspaceActivity, error) {
	return aggregate[metrics.WorkspaceActivity](ctx, r, config.DBWorkspace, CollWorkspaceObjs,
		"aggr_activities_from_ws_objs", activitiesFromWsObjsPipeline(min, max))
}

// ListWsOwners lists every workspace with its owner
func (r *MetricsRepository) ListWsOwners(ctx context.Context) ([]metrics.WorkspaceOwner, error) {
	return cached(ctx, r, methodWsOwners, nil, func(ctx context.Context) ([]metrics.WorkspaceOwner, error) {
		return aggregate[metrics.WorkspaceOwner](ctx, r, config.DBWorkspace, CollWorkspaces,
			"list_ws_owners", wsOwnersPipeline())
	})
}

// ListNarrativeOwners lists live, unlocked, non-temporary narratives,
// optionally restricted to the given workspaces and owners
func (r *MetricsRepository) ListNarrativeOwners(ctx context.Context, wsIDs []int64, owners []string) ([]metrics.NarrativeOwner, error) {
	args := []any{wsIDs, owners}
	return cached(ctx, r, methodNarrativeOwners, args, func(ctx context.Context) ([]metrics.NarrativeOwner, error) {
		return aggregate[metrics.NarrativeOwner](ctx, r, config.DBWorkspace, CollWorkspaces,
			"list_narrative_owners", narrativeOwnersPipeline(wsIDs, owners))
	})
}

// ListWsNarratives lists live workspaces carrying narrative metadata
func (r *MetricsRepository) ListWsNarratives(ctx context.Context, min, max epoch.Instant) ([]metrics.WorkspaceNarrative, error) {
	args := []any{min, max}
	return cached(ctx, r, methodWsNarratives, args, func(ctx context.Context) ([]metrics.WorkspaceNarrative, error) {
		return aggregate[metrics.WorkspaceNarrative](ctx, r, config.DBWorkspace, CollWorkspaces,
			"list_ws_narratives", wsNarrativesPipeline(min, max))
	})
}

// ListUserObjectsFromWsObjs lists live object versions saved in [min, max]
func (r *MetricsRepository) ListUserObjectsFromWsObjs(ctx context.Context, min, max epoch.Instant, wsIDs []int64) ([]metrics.UserObject, error) {
	args := []any{min, max, wsIDs}
	return cached(ctx, r, methodUserObjects, args, func(ctx context.Context) ([]metrics.UserObject, error) {
		return aggregate[metrics.UserObject](ctx, r, config.DBWorkspace, CollWorkspaceObjs,
			"list_user_objects_from_ws_objs", userObjectsPipeline(min, max, wsIDs))
	})
}

// ListWsFirstAccess returns the day each workspace's first object version was saved
func (r *MetricsRepository) ListWsFirstAccess(ctx context.Context, min, max epoch.Instant, wsIDs []int64) ([]metrics.WorkspaceFirstAccess, error) {
	args := []any{min, max, wsIDs}
	return cached(ctx, r, methodWsFirstAccess, args, func(ctx context.Context) ([]metrics.WorkspaceFirstAccess, error) {
		return aggregate[metrics.WorkspaceFirstAccess](ctx, r, config.DBWorkspace, CollWorkspaceObjs,
			"list_ws_first_access", wsFirstAccessPipeline(min, max, wsIDs))
	})
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/internal/domain/metrics"
	imetrics "kbmetrics/internal/metrics"
	"kbmetrics/pkg/errors"
)

// UpdateUserRecords upserts a metrics user. kbase_staff is only written when
// the document is created.
func (r *MetricsRepository) UpdateUserRecords(ctx context.Context, filter metrics.UserFilter, data metrics.UserRecord, isStaff bool) (metrics.UpdateOutcome, error) {
	res, err := r.upsert(ctx, CollUsers, "update_user_records", userFilter(filter), userUpdate(data, isStaff))
	if err != nil {
		return metrics.UpdateOutcome{}, errors.Wrapf(err, "failed to upsert user %q", filter.Username)
	}
	return res, nil
}

// UpdateActivityRecords upserts one daily activity counter
func (r *MetricsRepository) UpdateActivityRecords(ctx context.Context, filter metrics.ActivityFilter, data metrics.ActivityRecord) (metrics.UpdateOutcome, error) {
	res, err := r.upsert(ctx, CollDailyActivities, "update_activity_records", activityFilter(filter), activityUpdate(data))
	if err != nil {
		return metrics.UpdateOutcome{}, errors.Wrapf(err, "failed to upsert activity of %q in ws %d on %d-%d-%d",
			filter.Key.Username, filter.Key.WorkspaceID, filter.Key.Year, filter.Key.Month, filter.Key.Day)
	}
	return res, nil
}

// UpdateNarrativeRecords upserts a narrative access record and bumps its
// access_count. first_access is taken from LastSavedAt on insert.
func (r *MetricsRepository) UpdateNarrativeRecords(ctx context.Context, filter metrics.NarrativeFilter, data metrics.NarrativeRecord) (metrics.UpdateOutcome, error) {
	res, err := r.upsert(ctx, CollNarratives, "update_narrative_records", narrativeFilter(filter), narrativeUpdate(data))
	if err != nil {
		return metrics.UpdateOutcome{}, errors.Wrapf(err, "failed to upsert narrative %d/%d/%d",
			filter.WorkspaceID, filter.ObjectID, filter.ObjectVersion)
	}
	return res, nil
}

func (r *MetricsRepository) upsert(ctx context.Context, collection, operation string, filter, update bson.D) (metrics.UpdateOutcome, error) {
	coll, err := r.collection(config.DBMetrics, collection)
	if err != nil {
		return metrics.UpdateOutcome{}, err
	}

	start := time.Now()
	res, err := coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	observe(config.DBMetrics, operation, start, err)
	if err != nil {
		r.writeFailed(ctx, collection, operation, err)
		return metrics.UpdateOutcome{}, upsertError(operation, err)
	}

	r.tracker.AddBreadcrumb(ctx, operation, "mongo", errors.LevelInfo, map[string]interface{}{
		"collection": collection,
		"matched":    res.MatchedCount,
		"upserted":   res.UpsertedCount,
	})

	return metrics.UpdateOutcome{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		Upserted:   res.UpsertedCount,
		UpsertedID: res.UpsertedID,
	}, nil
}

// upsertError marks unique key collisions with ErrDuplicateKey. The driver
// error stays reachable through errors.As.
func upsertError(operation string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: %w", operation, errors.ErrDuplicateKey, err)
	}
	return errors.Wrap(err, operation)
}

// InsertActivityRecordsBulk inserts docs unordered and reports each
// document's outcome. Only errors that are not per-document write errors
// are returned as error.
func (r *MetricsRepository) InsertActivityRecordsBulk(ctx context.Context, docs []metrics.ActivityRecord) (metrics.BulkInsertResult, error) {
	if len(docs) == 0 {
		return metrics.BulkInsertResult{}, errors.Wrap(errors.ErrInvalidInput, "no activity records to insert")
	}

	coll, err := r.collection(config.DBMetrics, CollDailyActivities)
	if err != nil {
		return metrics.BulkInsertResult{}, err
	}

	start := time.Now()
	_, err = coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	observe(config.DBMetrics, "insert_activity_records", start, err)

	result, err := bulkOutcomes(len(docs), err)
	if err != nil {
		r.writeFailed(ctx, CollDailyActivities, "insert_activity_records", err)
		return metrics.BulkInsertResult{}, errors.Wrap(err, "failed to insert activity records")
	}

	imetrics.RecordBulkInsert(CollDailyActivities, result.Inserted(), result.Duplicates(), len(result.Failures()))
	r.tracker.AddBreadcrumb(ctx, "insert_activity_records", "mongo", errors.LevelInfo, map[string]interface{}{
		"collection": CollDailyActivities,
		"inserted":   result.Inserted(),
		"duplicates": result.Duplicates(),
		"failed":     len(result.Failures()),
	})
	return result, nil
}

// InsertActivityRecords inserts docs, skipping those whose key already
// exists. Any other per-document failure fails the whole call.
func (r *MetricsRepository) InsertActivityRecords(ctx context.Context, docs []metrics.ActivityRecord) (int, error) {
	result, err := r.InsertActivityRecordsBulk(ctx, docs)
	if err != nil {
		return 0, err
	}

	if failed := result.Failures(); len(failed) > 0 {
		first := failed[0]
		r.log.Warnw("Activity records rejected", "failed", len(failed), "first_index", first.Index, "code", first.Code)
		return 0, errors.Wrapf(errors.ErrBulkWrite, "%d of %d activity records failed, first at index %d: code %d: %s",
			len(failed), len(docs), first.Index, first.Code, first.Message)
	}

	inserted := result.Inserted()
	if dups := result.Duplicates(); dups > 0 {
		r.log.Infof("Inserted %s activity records, skipped %s duplicates",
			humanize.Comma(int64(inserted)), humanize.Comma(int64(dups)))
	} else {
		r.log.Infof("Inserted %s activity records", humanize.Comma(int64(inserted)))
	}
	return inserted, nil
}

// bulkOutcomes classifies an unordered InsertMany error into per-document
// outcomes. Documents without a write error were inserted.
func bulkOutcomes(n int, err error) (metrics.BulkInsertResult, error) {
	outcomes := make([]metrics.InsertOutcome, n)
	for i := range outcomes {
		outcomes[i] = metrics.InsertOutcome{Index: i, Status: metrics.InsertInserted}
	}
	if err == nil {
		return metrics.BulkInsertResult{Outcomes: outcomes}, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return metrics.BulkInsertResult{}, err
	}
	if bwe.WriteConcernError != nil {
		return metrics.BulkInsertResult{}, err
	}

	for _, we := range bwe.WriteErrors {
		if we.Index < 0 || we.Index >= n {
			return metrics.BulkInsertResult{}, errors.Wrapf(errors.ErrInternal, "write error index %d out of range: %v", we.Index, err)
		}

		status := metrics.InsertFailed
		if mongo.IsDuplicateKeyError(we.WriteError) {
			status = metrics.InsertDuplicate
		}
		outcomes[we.Index] = metrics.InsertOutcome{
			Index:   we.Index,
			Status:  status,
			Code:    we.Code,
			Message: we.Message,
		}
	}
	return metrics.BulkInsertResult{Outcomes: outcomes}, nil
}

// BackfillNarrativeAccessCounts sets access_count to 1 on narrative records
// that predate the counter. Returns the number of documents changed.
func (r *MetricsRepository) BackfillNarrativeAccessCounts(ctx context.Context) (int64, error) {
	coll, err := r.collection(config.DBMetrics, CollNarratives)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	res, err := coll.UpdateMany(ctx,
		bson.D{{Key: "access_count", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "access_count", Value: 1}}}},
	)
	observe(config.DBMetrics, "backfill_narrative_access_counts", start, err)
	if err != nil {
		return 0, errors.Wrap(err, "failed to backfill narrative access counts")
	}

	if res.ModifiedCount > 0 {
		r.log.Infof("Backfilled access_count on %s narrative records", humanize.Comma(res.ModifiedCount))
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the metrics database indexes. Other databases are
// read only and never touched.
func (r *MetricsRepository) EnsureIndexes(ctx context.Context) ([]string, error) {
	coll, err := r.collection(config.DBMetrics, CollUsers)
	if err != nil {
		return nil, err
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "signup_at", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	start := time.Now()
	names, err := coll.Indexes().CreateMany(ctx, indexes)
	observe(config.DBMetrics, "ensure_indexes", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create metrics indexes")
	}
	return names, nil
}

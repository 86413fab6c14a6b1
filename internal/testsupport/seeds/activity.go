package seeds

import (
	"context"
	"time"

	"kbmetrics/internal/domain/metrics"
	"kbmetrics/internal/testsupport"
)

// ActivityBuilder provides a fluent API for creating daily activity records
type ActivityBuilder struct {
	w      metrics.Writer
	ctx    context.Context
	entity metrics.ActivityRecord
}

// NewActivityBuilder creates a builder for one object modified today in a
// fresh workspace
func NewActivityBuilder(w metrics.Writer, ctx context.Context) *ActivityBuilder {
	b := &ActivityBuilder{
		w:   w,
		ctx: ctx,
		entity: metrics.ActivityRecord{
			ID: metrics.ActivityKey{
				Username:    testsupport.UniqueUsername(),
				WorkspaceID: testsupport.UniqueWorkspaceID(),
			},
			NumModified: 1,
		},
	}
	return b.OnDay(time.Now().UTC())
}

// WithUsername sets the acting user
func (b *ActivityBuilder) WithUsername(username string) *ActivityBuilder {
	b.entity.ID.Username = username
	return b
}

// WithWorkspaceID sets the workspace
func (b *ActivityBuilder) WithWorkspaceID(id int64) *ActivityBuilder {
	b.entity.ID.WorkspaceID = id
	return b
}

// OnDay sets the calendar day (UTC) the activity is recorded for
func (b *ActivityBuilder) OnDay(t time.Time) *ActivityBuilder {
	t = t.UTC()
	b.entity.ID.Year = t.Year()
	b.entity.ID.Month = int(t.Month())
	b.entity.ID.Day = t.Day()
	return b
}

// WithNumModified sets the number of objects modified that day
func (b *ActivityBuilder) WithNumModified(n int64) *ActivityBuilder {
	b.entity.NumModified = n
	return b
}

// Build returns the record without writing it
func (b *ActivityBuilder) Build() metrics.ActivityRecord {
	return b.entity
}

// Upsert writes the record, overwriting the count of an existing one
func (b *ActivityBuilder) Upsert() (metrics.ActivityRecord, error) {
	_, err := b.w.UpdateActivityRecords(b.ctx, metrics.ActivityFilter{Key: b.entity.ID}, b.entity)
	if err != nil {
		return metrics.ActivityRecord{}, err
	}
	return b.entity, nil
}

package seeds

import (
	"context"
	"time"

	"kbmetrics/internal/domain/metrics"
	"kbmetrics/internal/testsupport"
)

// NarrativeBuilder provides a fluent API for creating narrative access records
type NarrativeBuilder struct {
	w      metrics.Writer
	ctx    context.Context
	entity metrics.NarrativeRecord
}

// NewNarrativeBuilder creates a builder for version 1 of a narrative saved now
func NewNarrativeBuilder(w metrics.Writer, ctx context.Context) *NarrativeBuilder {
	return &NarrativeBuilder{
		w:   w,
		ctx: ctx,
		entity: metrics.NarrativeRecord{
			ObjectID:      1,
			ObjectVersion: 1,
			WorkspaceID:   testsupport.UniqueWorkspaceID(),
			Name:          testsupport.UniqueName("narrative"),
			NiceName:      "Test Narrative",
			NumObj:        1,
			LastSavedAt:   time.Now().UTC().Truncate(time.Millisecond),
			LastSavedBy:   testsupport.UniqueUsername(),
		},
	}
}

// WithWorkspaceID sets the owning workspace
func (b *NarrativeBuilder) WithWorkspaceID(id int64) *NarrativeBuilder {
	b.entity.WorkspaceID = id
	return b
}

// WithObject sets the narrative object id and version
func (b *NarrativeBuilder) WithObject(id, version int64) *NarrativeBuilder {
	b.entity.ObjectID = id
	b.entity.ObjectVersion = version
	return b
}

// WithName sets the object name
func (b *NarrativeBuilder) WithName(name string) *NarrativeBuilder {
	b.entity.Name = name
	return b
}

// WithNiceName sets the display name
func (b *NarrativeBuilder) WithNiceName(name string) *NarrativeBuilder {
	b.entity.NiceName = name
	return b
}

// WithDesc sets the description
func (b *NarrativeBuilder) WithDesc(desc string) *NarrativeBuilder {
	b.entity.Desc = desc
	return b
}

// WithNumObj sets the workspace object count
func (b *NarrativeBuilder) WithNumObj(n int64) *NarrativeBuilder {
	b.entity.NumObj = n
	return b
}

// SavedBy sets who saved the narrative and when
func (b *NarrativeBuilder) SavedBy(username string, at time.Time) *NarrativeBuilder {
	b.entity.LastSavedBy = username
	b.entity.LastSavedAt = at
	return b
}

// Deleted marks the narrative as deleted
func (b *NarrativeBuilder) Deleted() *NarrativeBuilder {
	b.entity.Deleted = true
	return b
}

// Build returns the record without writing it
func (b *NarrativeBuilder) Build() metrics.NarrativeRecord {
	return b.entity
}

// Upsert writes the record
func (b *NarrativeBuilder) Upsert() (metrics.NarrativeRecord, error) {
	filter := metrics.NarrativeFilter{
		WorkspaceID:   b.entity.WorkspaceID,
		ObjectID:      b.entity.ObjectID,
		ObjectVersion: b.entity.ObjectVersion,
	}
	if _, err := b.w.UpdateNarrativeRecords(b.ctx, filter, b.entity); err != nil {
		return metrics.NarrativeRecord{}, err
	}
	return b.entity, nil
}

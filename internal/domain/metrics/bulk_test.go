package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkInsertResult_Counts(t *testing.T) {
	res := BulkInsertResult{Outcomes: []InsertOutcome{
		{Index: 0, Status: InsertInserted},
		{Index: 1, Status: InsertDuplicate, Code: 11000},
		{Index: 2, Status: InsertFailed, Code: 121, Message: "Document failed validation"},
		{Index: 3, Status: InsertInserted},
	}}

	assert.Equal(t, 2, res.Inserted())
	assert.Equal(t, 1, res.Duplicates())
	assert.Equal(t, 1, res.Count(InsertFailed))

	failed := res.Failures()
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Index)
}

func TestBulkInsertResult_Empty(t *testing.T) {
	var res BulkInsertResult

	assert.Zero(t, res.Inserted())
	assert.Zero(t, res.Duplicates())
	assert.Empty(t, res.Failures())
}

func TestInsertStatus_String(t *testing.T) {
	tests := []struct {
		status InsertStatus
		want   string
	}{
		{InsertInserted, "inserted"},
		{InsertDuplicate, "duplicate"},
		{InsertFailed, "failed"},
		{InsertStatus(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestUpdateOutcome_Inserted(t *testing.T) {
	assert.True(t, UpdateOutcome{Upserted: 1, UpsertedID: "abc"}.Inserted())
	assert.False(t, UpdateOutcome{Matched: 1, Modified: 1}.Inserted())
}

func TestWorkspaceNarrative_MetaValue(t *testing.T) {
	n := WorkspaceNarrative{Meta: []MetaEntry{
		{K: "narrative", V: "1"},
		{K: "narrative_nice_name", V: "My Analysis"},
	}}

	v, ok := n.MetaValue("narrative_nice_name")
	assert.True(t, ok)
	assert.Equal(t, "My Analysis", v)

	_, ok = n.MetaValue("is_temporary")
	assert.False(t, ok)
}

package metrics

import (
	"time"
)

// UserRecord is the metrics copy of an account, upserted by username
type UserRecord struct {
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	FullName     string    `bson:"full_name,omitempty" json:"full_name,omitempty"`
	SignupAt     time.Time `bson:"signup_at,omitempty" json:"signup_at,omitempty"`
	LastSigninAt time.Time `bson:"last_signin_at,omitempty" json:"last_signin_at,omitempty"`
	Roles        []string  `bson:"roles,omitempty" json:"roles,omitempty"`
}

// UserFilter selects a metrics user document
type UserFilter struct {
	Username string
}

// ActivityKey identifies one user's activity in one workspace on one day
type ActivityKey struct {
	Username    string `bson:"username" json:"username"`
	Year        int    `bson:"year_mod" json:"year_mod"`
	Month       int    `bson:"month_mod" json:"month_mod"`
	Day         int    `bson:"day_mod" json:"day_mod"`
	WorkspaceID int64  `bson:"ws_id" json:"ws_id"`
}

// ActivityRecord counts the objects a user modified in a workspace on a day
type ActivityRecord struct {
	ID          ActivityKey `bson:"_id" json:"_id"`
	NumModified int64       `bson:"obj_numModified" json:"obj_numModified"`
}

// ActivityFilter selects a daily activity document by its composite key
type ActivityFilter struct {
	Key ActivityKey
}

// NarrativeRecord carries the fields refreshed on every narrative save.
// FirstAccess and AccessCount are maintained by the repository.
type NarrativeRecord struct {
	ObjectID      int64     `bson:"object_id" json:"object_id"`
	ObjectVersion int64     `bson:"object_version" json:"object_version"`
	WorkspaceID   int64     `bson:"workspace_id" json:"workspace_id"`
	Name          string    `bson:"name,omitempty" json:"name,omitempty"`
	NiceName      string    `bson:"nice_name,omitempty" json:"nice_name,omitempty"`
	Desc          string    `bson:"desc,omitempty" json:"desc,omitempty"`
	NumObj        int64     `bson:"numObj" json:"numObj"`
	Deleted       bool      `bson:"deleted" json:"deleted"`
	LastSavedAt   time.Time `bson:"last_saved_at" json:"last_saved_at"`
	LastSavedBy   string    `bson:"last_saved_by,omitempty" json:"last_saved_by,omitempty"`
}

// NarrativeFilter selects a narrative access document
type NarrativeFilter struct {
	WorkspaceID   int64
	ObjectID      int64
	ObjectVersion int64
}

// UpdateOutcome reports what a single upsert did
type UpdateOutcome struct {
	Matched    int64
	Modified   int64
	Upserted   int64
	UpsertedID any
}

// Inserted reports whether the upsert created a new document
func (o UpdateOutcome) Inserted() bool {
	return o.Upserted > 0
}

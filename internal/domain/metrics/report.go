package metrics

import (
	"time"
)

// Report rows. Field tags mirror the projection names of the pipelines
// that produce them.

// DailyUniqueUsers is the number of distinct active users on one day
type DailyUniqueUsers struct {
	Date       string `bson:"yyyy-mm-dd" json:"yyyy-mm-dd"`
	NumOfUsers int64  `bson:"numOfUsers" json:"numOfUsers"`
}

// UserInfo is a metrics user projected for reports
type UserInfo struct {
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"full_name" json:"full_name"`
	SignupAt     time.Time `bson:"signup_at" json:"signup_at"`
	LastSigninAt time.Time `bson:"last_signin_at" json:"last_signin_at"`
	KBaseStaff   bool      `bson:"kbase_staff" json:"kbase_staff"`
	Roles        []string  `bson:"roles" json:"roles"`
}

// WorkspaceDay keys workspace activity by workspace and calendar day
type WorkspaceDay struct {
	WorkspaceID int64 `bson:"ws_id" json:"ws_id"`
	Year        int   `bson:"year_mod" json:"year_mod"`
	Month       int   `bson:"month_mod" json:"month_mod"`
	Day         int   `bson:"day_mod" json:"day_mod"`
}

// WorkspaceActivity counts object modifications per workspace per day
type WorkspaceActivity struct {
	ID          WorkspaceDay `bson:"_id" json:"_id"`
	NumModified int64        `bson:"obj_numModified" json:"obj_numModified"`
}

// WorkspaceOwner names the owner of a workspace
type WorkspaceOwner struct {
	Username    string `bson:"username" json:"username"`
	WorkspaceID int64  `bson:"ws_id" json:"ws_id"`
	Name        string `bson:"name" json:"name"`
}

// NarrativeOwner names the owner of a non-temporary narrative workspace
type NarrativeOwner struct {
	Name        string `bson:"name" json:"name"`
	Owner       string `bson:"owner" json:"owner"`
	WorkspaceID int64  `bson:"ws" json:"ws"`
}

// MetaEntry is one key/value pair of workspace metadata
type MetaEntry struct {
	K string `bson:"k" json:"k"`
	V string `bson:"v" json:"v"`
}

// WorkspaceNarrative is a workspace carrying narrative metadata
type WorkspaceNarrative struct {
	Username    string      `bson:"username" json:"username"`
	WorkspaceID int64       `bson:"workspace_id" json:"workspace_id"`
	Name        string      `bson:"name" json:"name"`
	Meta        []MetaEntry `bson:"meta" json:"meta"`
	Deleted     bool        `bson:"deleted" json:"deleted"`
	Desc        string      `bson:"desc" json:"desc"`
	NumObj      int64       `bson:"numObj" json:"numObj"`
	LastSavedAt time.Time   `bson:"last_saved_at" json:"last_saved_at"`
}

// MetaValue returns the value for key k and whether it was present
func (n WorkspaceNarrative) MetaValue(k string) (string, bool) {
	for _, m := range n.Meta {
		if m.K == k {
			return m.V, true
		}
	}
	return "", false
}

// UserObject is one workspace object version saved in a time window
type UserObject struct {
	ModDate       time.Time `bson:"moddate" json:"moddate"`
	WorkspaceID   int64     `bson:"workspace_id" json:"workspace_id"`
	ObjectID      int64     `bson:"object_id" json:"object_id"`
	ObjectName    string    `bson:"object_name" json:"object_name"`
	ObjectVersion int64     `bson:"object_version" json:"object_version"`
	Deleted       bool      `bson:"deleted" json:"deleted"`
}

// WorkspaceFirstAccess is the day a workspace's first object was saved
type WorkspaceFirstAccess struct {
	WorkspaceID int64  `bson:"ws" json:"ws"`
	Date        string `bson:"yyyy-mm-dd" json:"yyyy-mm-dd"`
}

// ExecTask is an execution engine task. CreationTime is epoch milliseconds,
// as stored.
type ExecTask struct {
	AppJobID     string         `bson:"app_job_id" json:"app_job_id"`
	UJSJobID     string         `bson:"ujs_job_id" json:"ujs_job_id"`
	CreationTime int64          `bson:"creation_time" json:"creation_time"`
	JobInput     map[string]any `bson:"job_input" json:"job_input"`
}

// AuthUser is an auth2 account shaped like UserInfo
type AuthUser struct {
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"full_name" json:"full_name"`
	SignupAt     time.Time `bson:"signup_at" json:"signup_at"`
	LastSigninAt time.Time `bson:"last_signin_at" json:"last_signin_at"`
	Roles        []string  `bson:"roles" json:"roles"`
}

// JobState is a user job state record
type JobState struct {
	ID        string    `bson:"_id" json:"_id"`
	User      string    `bson:"user" json:"user"`
	Created   time.Time `bson:"created" json:"created"`
	Started   time.Time `bson:"started" json:"started"`
	Updated   time.Time `bson:"updated" json:"updated"`
	Status    string    `bson:"status" json:"status"`
	AuthParam string    `bson:"authparam" json:"authparam"` // "DEFAULT" or a workspace id
	AuthStrat string    `bson:"authstrat" json:"authstrat"` // "DEFAULT" or "kbaseworkspace"
	Complete  bool      `bson:"complete" json:"complete"`
	Desc      string    `bson:"desc" json:"desc"`
	Error     bool      `bson:"error" json:"error"`
}

package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"kbmetrics/internal/domain/metrics"
	"kbmetrics/pkg/epoch"
)

// Service accounts never reported as users
var excludedServiceUsers = []string{"kbasetest", "***ROOT***", "ciservices"}

// timeRange renders $gte/$lte bounds for the set instants, nil when neither is set
func timeRange(min, max epoch.Instant) bson.M {
	r := bson.M{}
	if min.IsSet() {
		r["$gte"] = min.Time()
	}
	if max.IsSet() {
		r["$lte"] = max.Time()
	}
	if len(r) == 0 {
		return nil
	}
	return r
}

// millisRange is timeRange for fields stored as epoch milliseconds
func millisRange(min, max epoch.Instant) bson.M {
	r := bson.M{}
	if min.IsSet() {
		r["$gte"] = min.UnixMilli()
	}
	if max.IsSet() {
		r["$lte"] = max.UnixMilli()
	}
	if len(r) == 0 {
		return nil
	}
	return r
}

// dateString renders year, month and day fields as an unpadded yyyy-mm-dd string
func dateString(year, month, day string) bson.M {
	return bson.M{"$concat": bson.A{
		bson.M{"$toString": year}, "-",
		bson.M{"$toString": month}, "-",
		bson.M{"$toString": day},
	}}
}

// Write filters

func userFilter(f metrics.UserFilter) bson.D {
	return bson.D{{Key: "username", Value: f.Username}}
}

func activityFilter(f metrics.ActivityFilter) bson.D {
	return bson.D{{Key: "_id", Value: f.Key}}
}

func narrativeFilter(f metrics.NarrativeFilter) bson.D {
	return bson.D{
		{Key: "workspace_id", Value: f.WorkspaceID},
		{Key: "object_id", Value: f.ObjectID},
		{Key: "object_version", Value: f.ObjectVersion},
	}
}

func userUpdate(data metrics.UserRecord, isStaff bool) bson.D {
	return bson.D{
		{Key: "$currentDate", Value: bson.D{{Key: "recordLastUpdated", Value: true}}},
		{Key: "$set", Value: data},
		{Key: "$setOnInsert", Value: bson.D{{Key: "kbase_staff", Value: isStaff}}},
	}
}

// activityUpdate sets the counter only; the document key comes from the filter
func activityUpdate(data metrics.ActivityRecord) bson.D {
	return bson.D{
		{Key: "$currentDate", Value: bson.D{{Key: "recordLastUpdated", Value: true}}},
		{Key: "$set", Value: bson.D{{Key: "obj_numModified", Value: data.NumModified}}},
	}
}

func narrativeUpdate(data metrics.NarrativeRecord) bson.D {
	return bson.D{
		{Key: "$currentDate", Value: bson.D{{Key: "recordLastUpdated", Value: true}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "first_access", Value: data.LastSavedAt}}},
		{Key: "$set", Value: data},
		{Key: "$inc", Value: bson.D{{Key: "access_count", Value: 1}}},
	}
}

// Metrics database

// uniqueUsersPerDayPipeline matches the year, month and day components
// independently, so a window crossing a month boundary only keeps days
// inside both day bounds.
func uniqueUsersPerDayPipeline(min, max epoch.Instant, excludeUsers []string) mongo.Pipeline {
	match := bson.M{"obj_numModified": bson.M{"$gt": 0}}

	years, months, days := bson.M{}, bson.M{}, bson.M{}
	if min.IsSet() {
		y, m, d := min.Date()
		years["$gte"], months["$gte"], days["$gte"] = y, m, d
	}
	if max.IsSet() {
		y, m, d := max.Date()
		years["$lte"], months["$lte"], days["$lte"] = y, m, d
	}
	if len(years) > 0 {
		match["_id.year_mod"] = years
		match["_id.month_mod"] = months
		match["_id.day_mod"] = days
	}
	if len(excludeUsers) > 0 {
		match["_id.username"] = bson.M{"$nin": excludeUsers}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year_mod", Value: "$_id.year_mod"},
				{Key: "month_mod", Value: "$_id.month_mod"},
				{Key: "day_mod", Value: "$_id.day_mod"},
				{Key: "username", Value: "$_id.username"},
			}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year_mod", Value: "$_id.year_mod"},
				{Key: "month_mod", Value: "$_id.month_mod"},
				{Key: "day_mod", Value: "$_id.day_mod"},
			}},
			{Key: "numOfUsers", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year_mod", Value: 1},
			{Key: "_id.month_mod", Value: 1},
			{Key: "_id.day_mod", Value: 1},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "yyyy-mm-dd", Value: dateString("$_id.year_mod", "$_id.month_mod", "$_id.day_mod")},
			{Key: "numOfUsers", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}
}

func userInfoFilter(userIDs []string, min, max epoch.Instant, excludeStaff bool) bson.M {
	username := bson.M{"$nin": excludedServiceUsers}
	if len(userIDs) > 0 {
		username["$in"] = userIDs
	}

	filter := bson.M{"username": username}
	if excludeStaff {
		filter["kbase_staff"] = false
	}
	if r := timeRange(min, max); r != nil {
		filter["signup_at"] = r
	}
	return filter
}

var userInfoProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "username", Value: 1},
	{Key: "email", Value: 1},
	{Key: "full_name", Value: 1},
	{Key: "signup_at", Value: 1},
	{Key: "last_signin_at", Value: 1},
	{Key: "kbase_staff", Value: 1},
	{Key: "roles", Value: 1},
}

func staffFilter() bson.M {
	return bson.M{"kbase_staff": bson.M{"$in": bson.A{true, 1}}}
}

// Workspace database

func activitiesFromWsObjsPipeline(min, max epoch.Instant) mongo.Pipeline {
	match := bson.M{}
	if r := timeRange(min, max); r != nil {
		match["moddate"] = r
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.D{
			{Key: "year_mod", Value: bson.M{"$year": "$moddate"}},
			{Key: "month_mod", Value: bson.M{"$month": "$moddate"}},
			{Key: "date_mod", Value: bson.M{"$dayOfMonth": "$moddate"}},
			{Key: "obj_name", Value: "$name"},
			{Key: "obj_id", Value: "$id"},
			{Key: "obj_version", Value: "$numver"},
			{Key: "ws_id", Value: "$ws"},
			{Key: "_id", Value: 0},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "ws_id", Value: "$ws_id"},
				{Key: "year_mod", Value: "$year_mod"},
				{Key: "month_mod", Value: "$month_mod"},
				{Key: "day_mod", Value: "$date_mod"},
			}},
			{Key: "obj_numModified", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func wsOwnersPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: "$owner"},
			{Key: "ws_id", Value: "$ws"},
			{Key: "name", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}
}

func narrativeOwnersPipeline(wsIDs []int64, owners []string) mongo.Pipeline {
	match := bson.M{
		"del":  false,
		"lock": false,
		"meta": bson.M{"$elemMatch": bson.M{"k": "is_temporary", "v": "false"}},
	}
	if len(wsIDs) > 0 {
		match["ws"] = bson.M{"$in": wsIDs}
	}
	if len(owners) > 0 {
		match["owner"] = bson.M{"$in": owners}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "owner", Value: 1},
			{Key: "ws", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	}
}

// wsNarrativesPipeline bounds moddate by whichever instants are set,
// swapping them when given in reverse
func wsNarrativesPipeline(min, max epoch.Instant) mongo.Pipeline {
	match := bson.M{
		"del": false,
		"meta": bson.M{"$elemMatch": bson.M{"$or": bson.A{
			bson.M{"k": "narrative"},
			bson.M{"k": "narrative_nice_name"},
		}}},
	}

	bounds := epoch.Range{Min: min, Max: max}.Ordered()
	if r := timeRange(bounds.Min, bounds.Max); r != nil {
		match["moddate"] = r
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: "$owner"},
			{Key: "workspace_id", Value: "$ws"},
			{Key: "name", Value: 1},
			{Key: "meta", Value: 1},
			{Key: "deleted", Value: "$del"},
			{Key: "desc", Value: 1},
			{Key: "numObj", Value: 1},
			{Key: "last_saved_at", Value: "$moddate"},
			{Key: "_id", Value: 0},
		}}},
	}
}

func liveObjectsMatch(min, max epoch.Instant, wsIDs []int64) bson.M {
	match := bson.M{"del": false}
	if r := timeRange(min, max); r != nil {
		match["moddate"] = r
	}
	if len(wsIDs) > 0 {
		match["ws"] = bson.M{"$in": wsIDs}
	}
	return match
}

func userObjectsPipeline(min, max epoch.Instant, wsIDs []int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: liveObjectsMatch(min, max, wsIDs)}},
		{{Key: "$project", Value: bson.D{
			{Key: "moddate", Value: 1},
			{Key: "workspace_id", Value: "$ws"},
			{Key: "object_id", Value: "$id"},
			{Key: "object_name", Value: "$name"},
			{Key: "object_version", Value: "$numver"},
			{Key: "deleted", Value: "$del"},
			{Key: "_id", Value: 0},
		}}},
	}
}

// wsFirstAccessPipeline takes the earliest first-version save per workspace
func wsFirstAccessPipeline(min, max epoch.Instant, wsIDs []int64) mongo.Pipeline {
	match := liveObjectsMatch(min, max, wsIDs)
	match["numver"] = 1

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.D{
			{Key: "ws", Value: 1},
			{Key: "moddate", Value: 1},
			{Key: "_id", Value: 0},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$ws"},
			{Key: "first_access", Value: bson.D{{Key: "$min", Value: "$moddate"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "ws", Value: "$_id"},
			{Key: "_id", Value: 0},
			{Key: "first_access_year", Value: bson.M{"$year": "$first_access"}},
			{Key: "first_access_month", Value: bson.M{"$month": "$first_access"}},
			{Key: "first_access_day", Value: bson.M{"$dayOfMonth": "$first_access"}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "ws", Value: 1},
			{Key: "yyyy-mm-dd", Value: dateString("$first_access_year", "$first_access_month", "$first_access_day")},
		}}},
	}
}

// Auth, job state and execution engine databases

func userDetailsPipeline(userIDs []string, min, max epoch.Instant, excludeUsers []string) mongo.Pipeline {
	match := bson.M{}

	user := bson.M{}
	if len(userIDs) > 0 {
		user["$in"] = userIDs
	}
	if len(excludeUsers) > 0 {
		user["$nin"] = excludeUsers
	}
	if len(user) > 0 {
		match["user"] = user
	}
	if r := timeRange(min, max); r != nil {
		match["create"] = r
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: "$user"},
			{Key: "email", Value: "$email"},
			{Key: "full_name", Value: "$display"},
			{Key: "signup_at", Value: "$create"},
			{Key: "last_signin_at", Value: "$login"},
			{Key: "roles", Value: 1},
			{Key: "_id", Value: 0},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "signup_at", Value: 1}}}},
	}
}

func execTasksFilter(min, max epoch.Instant) bson.M {
	filter := bson.M{}
	if r := millisRange(min, max); r != nil {
		filter["creation_time"] = r
	}
	return filter
}

var execTaskProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "app_job_id", Value: 1},
	{Key: "ujs_job_id", Value: 1},
	{Key: "creation_time", Value: 1},
	{Key: "job_input", Value: 1},
}

// ujsResultsFilter keeps the test account out unless users are named explicitly
func ujsResultsFilter(userIDs []string, min, max epoch.Instant) bson.M {
	filter := bson.M{
		"desc":   bson.M{"$exists": true},
		"status": bson.M{"$exists": true},
	}
	if len(userIDs) > 0 {
		filter["user"] = bson.M{"$in": userIDs}
	} else {
		filter["user"] = bson.M{"$ne": "kbasetest"}
	}
	if r := timeRange(min, max); r != nil {
		filter["created"] = r
	}
	return filter
}

var ujsResultsProjection = bson.D{
	{Key: "user", Value: 1},
	{Key: "created", Value: 1},
	{Key: "started", Value: 1},
	{Key: "updated", Value: 1},
	{Key: "status", Value: 1},
	{Key: "authparam", Value: 1},
	{Key: "authstrat", Value: 1},
	{Key: "complete", Value: 1},
	{Key: "desc", Value: 1},
	{Key: "error", Value: 1},
}

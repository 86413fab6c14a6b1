package metrics

// InsertStatus is the fate of one document in a bulk insert
type InsertStatus int

const (
	InsertInserted InsertStatus = iota
	InsertDuplicate
	InsertFailed
)

func (s InsertStatus) String() string {
	switch s {
	case InsertInserted:
		return "inserted"
	case InsertDuplicate:
		return "duplicate"
	case InsertFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InsertOutcome describes one document of a bulk insert, by input position
type InsertOutcome struct {
	Index   int
	Status  InsertStatus
	Code    int
	Message string
}

// BulkInsertResult holds per-document outcomes of an unordered bulk insert.
// Every input document has exactly one outcome, in input order.
type BulkInsertResult struct {
	Outcomes []InsertOutcome
}

// Count returns the number of outcomes with the given status
func (r BulkInsertResult) Count(status InsertStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Inserted returns the number of documents written
func (r BulkInsertResult) Inserted() int { return r.Count(InsertInserted) }

// Duplicates returns the number of documents skipped on duplicate key
func (r BulkInsertResult) Duplicates() int { return r.Count(InsertDuplicate) }

// Failures returns the outcomes that were neither inserted nor duplicates
func (r BulkInsertResult) Failures() []InsertOutcome {
	var failed []InsertOutcome
	for _, o := range r.Outcomes {
		if o.Status == InsertFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

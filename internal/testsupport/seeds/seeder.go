package seeds

import (
	"context"

	"kbmetrics/internal/domain/metrics"
	"kbmetrics/pkg/logger"
)

// Seeder is the central orchestrator for creating seed data.
// It provides a fluent API on top of the metrics write path, so seeded
// documents look exactly like the ones the service produces.
type Seeder struct {
	w   metrics.Writer
	ctx context.Context
	log *logger.Logger
}

// New creates a new Seeder instance
func New(w metrics.Writer) *Seeder {
	return &Seeder{
		w:   w,
		ctx: context.Background(),
		log: logger.Get().With("component", "seeds"),
	}
}

// WithContext sets the context for database operations
func (s *Seeder) WithContext(ctx context.Context) *Seeder {
	s.ctx = ctx
	return s
}

// Log returns the logger instance
func (s *Seeder) Log() *logger.Logger {
	return s.log
}

// User starts building a metrics user
func (s *Seeder) User() *UserBuilder {
	return NewUserBuilder(s.w, s.ctx)
}

// Activity starts building a daily activity record
func (s *Seeder) Activity() *ActivityBuilder {
	return NewActivityBuilder(s.w, s.ctx)
}

// Narrative starts building a narrative access record
func (s *Seeder) Narrative() *NarrativeBuilder {
	return NewNarrativeBuilder(s.w, s.ctx)
}

// Activities inserts a batch of activity records, skipping ones that
// already exist. Returns the number written.
func (s *Seeder) Activities(records ...metrics.ActivityRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	return s.w.InsertActivityRecords(s.ctx, records)
}

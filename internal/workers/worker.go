package workers

import (
	"context"
	"sync"
	"time"

	"kbmetrics/pkg/logger"
)

// Worker is a periodic maintenance task
type Worker interface {
	// Name returns the unique identifier for this worker
	Name() string

	// Run executes one iteration and returns.
	// The scheduler calls it again every Interval().
	Run(ctx context.Context) error

	// Interval returns how often this worker should run. Workers with a
	// non-positive interval are never started.
	Interval() time.Duration

	// Enabled returns whether this worker is active
	Enabled() bool
}

// RunStats counts a worker's runs since the scheduler started it
type RunStats struct {
	Runs      int64
	Failures  int64
	LastRun   time.Time
	LastError error
}

// BaseWorker provides name, interval and run bookkeeping for workers
type BaseWorker struct {
	name     string
	interval time.Duration
	enabled  bool
	log      *logger.Logger

	mu    sync.Mutex
	stats RunStats
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      logger.Get().With("worker", name),
	}
}

func (w *BaseWorker) Name() string            { return w.name }
func (w *BaseWorker) Interval() time.Duration { return w.interval }
func (w *BaseWorker) Enabled() bool           { return w.enabled }
func (w *BaseWorker) Log() *logger.Logger     { return w.log }

// SetLogger replaces the worker logger
func (w *BaseWorker) SetLogger(l *logger.Logger) {
	w.log = l.With("worker", w.name)
}

// Stats returns a snapshot of the run counters
func (w *BaseWorker) Stats() RunStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Record stores the outcome of one run
func (w *BaseWorker) Record(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.Runs++
	w.stats.LastRun = time.Now()
	w.stats.LastError = err
	if err != nil {
		w.stats.Failures++
	}
}

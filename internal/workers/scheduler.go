package workers

import (
	"context"
	"sync"
	"time"

	"kbmetrics/internal/metrics"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

const defaultStopTimeout = 30 * time.Second

// recorder is implemented by workers embedding BaseWorker
type recorder interface {
	Record(err error)
	Stats() RunStats
}

// Scheduler runs registered workers on their intervals
type Scheduler struct {
	workers     []Worker
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.RWMutex
	log         *logger.Logger
	started     bool
	stopTimeout time.Duration
}

// NewScheduler creates a new worker scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Get()
	}
	return &Scheduler{
		workers:     make([]Worker, 0),
		log:         log.With("component", "scheduler"),
		stopTimeout: defaultStopTimeout,
	}
}

// RegisterWorker adds a worker to the scheduler
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start begins running all enabled workers
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	s.mu.Unlock()

	for _, worker := range workers {
		if !worker.Enabled() {
			s.log.Infow("Skipping disabled worker", "worker", worker.Name())
			continue
		}
		if worker.Interval() <= 0 {
			s.log.Warnw("Skipping worker with non-positive interval", "worker", worker.Name(), "interval", worker.Interval())
			continue
		}

		s.wg.Add(1)
		go s.runWorker(worker)
	}

	s.log.Infow("Worker scheduler started", "workers", len(workers))
	return nil
}

// Stop cancels all workers and waits for in-flight runs to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var stopErr error
	select {
	case <-done:
		s.log.Info("All workers stopped")
		s.logStats()
	case <-time.After(s.stopTimeout):
		stopErr = errors.Wrapf(errors.ErrInternal, "worker shutdown timed out after %s", s.stopTimeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return stopErr
}

// runWorker runs worker immediately and then on every tick
func (s *Scheduler) runWorker(worker Worker) {
	defer s.wg.Done()

	ticker := time.NewTicker(worker.Interval())
	defer ticker.Stop()

	s.executeWorker(worker)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeWorker(worker)
		}
	}
}

// executeWorker runs one iteration, recovering panics
func (s *Scheduler) executeWorker(worker Worker) {
	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInternal, "worker panicked: %v", r)
			s.log.Errorw("Worker panicked", "worker", worker.Name(), "panic", r)
		}
		metrics.RecordWorkerRun(worker.Name(), time.Since(start), err)
		if rec, ok := worker.(recorder); ok {
			rec.Record(err)
		}
	}()

	err = worker.Run(s.ctx)
	if err != nil && s.ctx.Err() == nil {
		s.log.Errorw("Worker execution failed", "worker", worker.Name(), "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debugw("Worker execution completed", "worker", worker.Name(), "duration", time.Since(start))
}

// logStats summarizes each worker's runs since start
func (s *Scheduler) logStats() {
	for _, w := range s.GetWorkers() {
		rec, ok := w.(recorder)
		if !ok {
			continue
		}
		st := rec.Stats()
		s.log.Infow("Worker summary", "worker", w.Name(), "runs", st.Runs, "failures", st.Failures, "last_run", st.LastRun)
	}
}

// GetWorkers returns all registered workers
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	return workers
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

package bootstrap

import (
	"context"
	"sync"
	"time"

	mongoclient "kbmetrics/internal/adapters/mongo"
	redisclient "kbmetrics/internal/adapters/redis"
	"kbmetrics/internal/api"
	"kbmetrics/internal/cache"
	"kbmetrics/internal/workers"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 30 * time.Second,
	}
}

// Shutdown performs coordinated cleanup in order:
// 1. No new requests accepted
// 2. Workers finish their current run
// 3. Errors and logs flushed
// 4. Store connections last (workers may still need them)
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	workerScheduler *workers.Scheduler,
	resultCache cache.Cache,
	mongoClient *mongoclient.Client,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/5] Stopping HTTP server...")
	if httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	log.Info("[2/5] Stopping maintenance workers...")
	if workerScheduler != nil && workerScheduler.IsRunning() {
		if err := workerScheduler.Stop(); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		} else {
			log.Info("✓ Workers stopped")
		}
	}
	l.waitForGoroutines(wg, 5*time.Second, log)

	log.Info("[3/5] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, errorTracker, log)

	log.Info("[4/5] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	log.Info("[5/5] Closing store connections...")
	closeCache(resultCache)
	l.closeStores(shutdownCtx, mongoClient, redisClient, log)

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	if wg == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	}
}

// closeStores disconnects MongoDB and Redis
func (l *Lifecycle) closeStores(ctx context.Context, mongoClient *mongoclient.Client, redisClient *redisclient.Client, log *logger.Logger) {
	var errs errors.MultiError

	if mongoClient != nil {
		errs.Add(errors.Wrap(mongoClient.Close(ctx), "mongo"))
	}
	if redisClient != nil {
		errs.Add(errors.Wrap(redisClient.Close(), "redis"))
	}

	if err := errs.ToError(); err != nil {
		log.Errorw("Store close errors", "error", err)
		return
	}
	log.Info("✓ Store connections closed")
}

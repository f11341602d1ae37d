// internal/app/system/workers/lockcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LockStore clears account locks that have run out.
type LockStore interface {
	ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error)
}

// LockCleanup is a background worker that resets expired account lockouts,
// so the stored login counter matches what the next login would see.
type LockCleanup struct {
	users    LockStore
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLockCleanup creates a new lock cleanup worker that runs every interval.
func NewLockCleanup(users LockStore, logger *zap.Logger, interval time.Duration) *LockCleanup {
	return &LockCleanup{
		users:    users,
		log:      logger,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *LockCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("lock cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *LockCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("lock cleanup worker stopped")
}

func (w *LockCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *LockCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.users.ClearExpiredLocks(ctx, w.now())
	if err != nil {
		w.log.Error("failed to clear expired locks", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("cleared expired account locks", zap.Int64("count", count))
	}
}

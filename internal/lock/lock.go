// Package lock provides the single-instance guard for rollover runs.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// pollInterval is how often a busy lock is retried while waiting.
const pollInterval = 250 * time.Millisecond

// FileLock is an exclusive OS file lock shared by every process using the same path.
type FileLock struct {
	flock *flock.Flock
}

// New returns a FileLock for path. The file is created on first acquire.
func New(path string) *FileLock {
	return &FileLock{flock: flock.New(path)}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.flock.Path()
}

// TryAcquire waits up to wait for the exclusive lock.
// It returns false without error when the lock is still held elsewhere.
func (l *FileLock) TryAcquire(ctx context.Context, wait time.Duration) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0700); err != nil {
		return false, fmt.Errorf("create lock dir: %w", err)
	}

	if wait <= 0 {
		ok, err := l.flock.TryLock()
		if err != nil {
			return false, fmt.Errorf("lock %s: %w", l.flock.Path(), err)
		}
		return ok, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ok, err := l.flock.TryLockContext(waitCtx, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return false, nil
		}
		return false, fmt.Errorf("lock %s: %w", l.flock.Path(), err)
	}
	return ok, nil
}

// Release unlocks. Safe to call when not held.
func (l *FileLock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.flock.Path(), err)
	}
	return nil
}

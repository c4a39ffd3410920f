package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when another process holds the state lock for
// longer than the wait allows.
var ErrLockTimeout = errors.New("timed out waiting for state lock")

const (
	defaultLockWait = 5 * time.Second
	lockPollEvery   = 25 * time.Millisecond
)

// acquireLock polls for an exclusive lock on path until wait elapses. The
// lock file is created if missing and left in place on release.
func acquireLock(path string, wait time.Duration) (*flock.Flock, error) {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	lock := flock.New(path)
	locked, err := lock.TryLockContext(ctx, lockPollEvery)
	if errors.Is(err, context.DeadlineExceeded) || (err == nil && !locked) {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
	}
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	return lock, nil
}

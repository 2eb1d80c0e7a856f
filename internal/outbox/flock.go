package outbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout is the default timeout for acquiring the outbox lock.
const DefaultLockTimeout = 5 * time.Second

// lockPathFor returns the lock file guarding an outbox directory.
func lockPathFor(dir string) string {
	return filepath.Join(dir, ".outbox.lock")
}

// withLock acquires an exclusive lock on the outbox directory, runs fn, then
// releases.
func withLock(dir string, timeout time.Duration, fn func() error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating outbox %s: %w", dir, err)
	}
	lockPath := lockPathFor(dir)
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring lock on %s", lockPath)
	}
	defer fileLock.Unlock()

	return fn()
}

// withReadLock acquires a shared read lock on the outbox directory, runs fn,
// then releases. A missing directory is treated as an empty outbox.
func withReadLock(dir string, timeout time.Duration, fn func() error) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fn()
	}
	lockPath := lockPathFor(dir)
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryRLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring read lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring read lock on %s", lockPath)
	}
	defer fileLock.Unlock()

	return fn()
}

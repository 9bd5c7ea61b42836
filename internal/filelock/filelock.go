// Package filelock guards the single-task-at-a-time contract with an
// advisory file lock, and provides an atomic write helper for exports.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the lock file placed under the destination root while a
// task runs.
const LockFileName = ".filescout.lock"

// RunLock is an advisory lock ensuring only one filescout task operates on a
// destination at a time.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// NewRunLock creates a lock for the given destination root. The lock file is
// created inside the destination so concurrent invocations against different
// destinations do not contend.
func NewRunLock(destRoot string) *RunLock {
	path := filepath.Join(destRoot, LockFileName)
	return &RunLock{
		flock: flock.New(path),
		path:  path,
	}
}

// TryAcquire attempts to take the lock without blocking. It returns false
// when another task holds it.
func (rl *RunLock) TryAcquire() (bool, error) {
	acquired, err := rl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", rl.path, err)
	}
	return acquired, nil
}

// Release releases the lock and removes the lock file.
func (rl *RunLock) Release() error {
	if err := rl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", rl.path, err)
	}
	// Best effort; a stale empty lock file is harmless.
	os.Remove(rl.path)
	return nil
}

// Path returns the lock file path.
func (rl *RunLock) Path() string {
	return rl.path
}

// AtomicWrite writes data to a file atomically using a temp file and rename
// strategy, so readers never observe a partial write.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}

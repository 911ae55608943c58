// Package filelock writes files atomically while holding an advisory lock,
// so two kgls processes initializing the same config file cannot interleave.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrExists is returned when the target exists and overwriting is off.
var ErrExists = errors.New("file already exists")

// DefaultRetryDelay is the polling interval while waiting for a lock.
const DefaultRetryDelay = 50 * time.Millisecond

// FileLock wraps a flock file lock.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path.
// The lock file is created on first use.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock waits for the exclusive lock until ctx is done.
func (fl *FileLock) Lock(ctx context.Context) error {
	ok, err := fl.flock.TryLockContext(ctx, DefaultRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !ok {
		return fmt.Errorf("failed to acquire lock on %s", fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// WriteOptions controls WriteFile.
type WriteOptions struct {
	Overwrite bool        // replace an existing file
	Perm      fs.FileMode // 0 = 0644
}

// WriteFile writes data to path under "<path>.lock". Readers see either
// the old content or the new content, never a partial file. Without
// Overwrite an existing file is left untouched and ErrExists is returned.
// The lock file is removed afterwards.
func WriteFile(ctx context.Context, path string, data []byte, opts WriteOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lockPath := path + ".lock"
	lock := NewFileLock(lockPath)
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}
	return atomicWrite(path, data, perm, opts.Overwrite)
}

// atomicWrite stages data in a temp file next to path, then renames it into
// place. Without overwrite the temp file is hard-linked instead, which
// fails if path already exists.
func atomicWrite(path string, data []byte, perm fs.FileMode, overwrite bool) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if overwrite {
		if err := os.Rename(tempPath, path); err != nil {
			return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
		}
		return nil
	}

	if err := os.Link(tempPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

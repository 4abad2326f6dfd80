// Package runlock serializes write runs on one output directory with an
// advisory file lock.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	derrors "git.home.luguber.info/inful/staticbuilder/internal/errors"
)

// Lock is a held output directory lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. A lock held by another
// process is a ConfigurationError.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, derrors.FileSystemError("create lock directory", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, derrors.FileSystemError("lock output directory", err)
	}
	if !ok {
		return nil, derrors.ConfigurationError(fmt.Sprintf("another export is writing to this output directory (lock %s held)", path))
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.fl.Path() }

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Package lockfile provides a non-blocking, process-exclusive lock on a file.
package lockfile

import "errors"

var (
	// ErrHeld means another process already owns the lock.
	ErrHeld = errors.New("lock held by another process")
	// ErrUnsupported means the host offers no advisory file locking.
	ErrUnsupported = errors.New("file locking not supported")
)

// Lock is released by Unlock or when the owning process exits.
type Lock interface {
	Unlock() error
}

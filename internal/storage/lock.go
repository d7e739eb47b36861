package storage

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by Lock when another run holds the snapshot.
var ErrLocked = errors.New("snapshot is locked by another run")

// Lock takes the single-writer lock for the snapshot at path, an advisory
// lock on path+".lock". The OS releases it when the process exits, so a
// killed run never leaves the snapshot locked. The returned func releases it.
func Lock(path string) (func() error, error) {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}

	return func() error {
		if err := fl.Unlock(); err != nil {
			return fmt.Errorf("release lock %s: %w", lockPath, err)
		}
		return nil
	}, nil
}

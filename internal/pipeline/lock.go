package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the output folder for the duration of a run.
const LockFileName = ".bitcap.lock"

// ErrLocked is returned when another run already holds the folder.
var ErrLocked = errors.New("another bitcap run is using this folder")

// acquireLock takes a non-blocking exclusive lock on outDir. The caller
// must Unlock the returned lock.
func acquireLock(outDir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(outDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", outDir, ErrLocked)
	}
	return lock, nil
}

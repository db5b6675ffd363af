package driver

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the advisory lock file created in the course directory.
const LockName = ".nbmend.lock"

// CourseLock guards a course against concurrent mutating batches.
type CourseLock struct {
	fl *flock.Flock
}

// AcquireCourseLock takes the course lock without waiting. ErrLocked is
// returned when another process holds it.
func AcquireCourseLock(courseDir string) (*CourseLock, error) {
	fl := flock.New(filepath.Join(courseDir, LockName))
	ok, err := fl.TryLock()
	if err != nil {
		_ = fl.Close()
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		_ = fl.Close()
		return nil, fmt.Errorf("%w (%s)", ErrLocked, fl.Path())
	}
	return &CourseLock{fl: fl}, nil
}

// Release drops the lock. The lock file stays on disk.
func (l *CourseLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

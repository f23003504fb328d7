package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// InstanceLock guards against two chat processes sharing one data directory.
// Lock file: <data_dir>/pairpilot.lock, content: PID of the holder.
type InstanceLock struct {
	path string
}

func NewInstanceLock(dataDir string) *InstanceLock {
	return &InstanceLock{path: filepath.Join(dataDir, "pairpilot.lock")}
}

// Acquire writes the lock for the current process. It fails when another
// live process already holds it.
func (l *InstanceLock) Acquire() error {
	locked, pid, err := l.Check()
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("another pairpilot instance (PID %d) is running", pid)
	}
	return os.WriteFile(l.path, []byte(fmt.Sprintf("%d", os.Getpid())), 0600)
}

// Release removes the lock file. A missing file is not an error.
func (l *InstanceLock) Release() error {
	err := os.Remove(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Check reports whether another process holds the lock.
// Unparseable or self-owned lock files count as unlocked.
func (l *InstanceLock) Check() (bool, int, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read lock file: %w", err)
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		_ = os.Remove(l.path)
		return false, 0, nil
	}
	if pid == os.Getpid() {
		return false, pid, nil
	}

	// os.FindProcess always succeeds on Unix; on Windows a failure means the
	// holder is gone and the lock is stale.
	if _, err := os.FindProcess(pid); err != nil {
		_ = os.Remove(l.path)
		return false, 0, nil
	}
	return true, pid, nil
}

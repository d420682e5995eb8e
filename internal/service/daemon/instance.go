package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another daemon owns the state file.
var ErrAlreadyRunning = errors.New("another daemon instance is running")

// instanceLock is a pid file next to the state file. A stale file left by a
// crashed daemon is taken over.
type instanceLock struct {
	path string
	pid  int
}

// heldLocks are the pid files owned by this process.
//
//nolint:gochecknoglobals // Process-wide by nature.
var heldLocks sync.Map

func acquireInstance(path string) (*instanceLock, error) {
	path = filepath.Clean(path)
	self := os.Getpid()

	if _, held := heldLocks.LoadOrStore(path, struct{}{}); held {
		return nil, fmt.Errorf("%w (pid %d, pid file %s)", ErrAlreadyRunning, self, path)
	}

	lock, err := writePIDFile(path, self)
	if err != nil {
		heldLocks.Delete(path)

		return nil, err
	}

	return lock, nil
}

func writePIDFile(path string, self int) (*instanceLock, error) {
	data, err := os.ReadFile(path)

	switch {
	case err == nil:
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr != nil || pid == self {
			break
		}

		running, checkErr := sameExecutableRunning(pid)
		if checkErr != nil {
			return nil, fmt.Errorf("inspect process %d: %w", pid, checkErr)
		}

		if running {
			return nil, fmt.Errorf("%w (pid %d, pid file %s)", ErrAlreadyRunning, pid, path)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read pid file: %w", err)
	}

	if err = os.WriteFile(path, []byte(strconv.Itoa(self)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}

	return &instanceLock{path: path, pid: self}, nil
}

// release removes the pid file unless another process has taken it over.
func (l *instanceLock) release() error {
	defer heldLocks.Delete(l.path)

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read pid file: %w", err)
	}

	if strings.TrimSpace(string(data)) != strconv.Itoa(l.pid) {
		return nil
	}

	if err = os.Remove(l.path); err != nil {
		return fmt.Errorf("remove pid file: %w", err)
	}

	return nil
}

// sameExecutableRunning reports whether pid is alive and runs the same
// executable as this process. A recycled pid of another program does not count.
func sameExecutableRunning(pid int) (bool, error) {
	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	if process == nil {
		return false, nil
	}

	self, err := ps.FindProcess(os.Getpid())
	if err != nil {
		return false, err
	}

	if self == nil {
		return true, nil
	}

	return process.Executable() == self.Executable(), nil
}

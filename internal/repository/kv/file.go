package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Store is the key-value contract used by the repositories.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
	// Update runs fn on the current value of key and stores the result.
	// The read, fn and the write happen under one lock.
	Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error
}

// FileStore persists key-value pairs as a YAML map on disk.
//
// The daemon and the CLI open their own stores on the same file, so every
// access also holds an advisory lock on a sidecar file next to it.
type FileStore struct {
	// path is the filesystem location of the YAML file.
	path string
	// lock is the advisory lock shared with other processes.
	lock *flock.Flock
	// mu serialises access within this process; the file lock alone does
	// not exclude goroutines sharing one store.
	mu sync.Mutex
}

const (
	// DefaultFilePermissions restricts the state file to its owner.
	DefaultFilePermissions = 0o600

	// lockSuffix names the sidecar lock file.
	lockSuffix = ".lock"
	// lockRetryDelay is the polling interval while another process holds the lock.
	lockRetryDelay = 10 * time.Millisecond
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("key not found")

// NewFileStore creates a store that reads/writes YAML at the provided path.
func NewFileStore(path string) *FileStore {
	path = filepath.Clean(path)

	return &FileStore{
		path: path,
		lock: flock.New(path + lockSuffix),
	}
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads one key from disk.
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	var (
		value string
		ok    bool
	)

	err := s.locked(ctx, true, func() error {
		values, err := s.load()
		if err != nil {
			return err
		}

		value, ok = values[key]

		return nil
	})
	if err != nil {
		return "", err
	}

	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

// Set writes one key, keeping the others.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, error) {
		return value, nil
	})
}

// Update performs an atomic read-modify-write of one key, exclusive across
// processes. If fn returns an error nothing is written.
func (s *FileStore) Update(
	ctx context.Context,
	key string,
	fn func(current string, found bool) (string, error),
) error {
	return s.locked(ctx, false, func() error {
		values, err := s.load()
		if err != nil {
			return err
		}

		current, found := values[key]

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		values[key] = next

		return s.save(values)
	})
}

// locked runs fn holding the in-process mutex and the file lock, shared
// for reads and exclusive for writes.
func (s *FileStore) locked(ctx context.Context, shared bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	var err error
	if shared {
		_, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		_, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	}

	if err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}

	defer func() {
		// Closing the lock file releases the lock even if unlocking fails.
		_ = s.lock.Unlock()
	}()

	return fn()
}

// load reads the whole map; a missing file is an empty map.
func (s *FileStore) load() (map[string]string, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	values := make(map[string]string)
	if err = yaml.Unmarshal(contents, &values); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return values, nil
}

// save writes the map to a temporary file in the same directory and renames
// it over the real one.
func (s *FileStore) save(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary state file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		// Removing after a successful rename fails harmlessly.
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write temporary state file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("sync temporary state file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary state file: %w", err)
	}

	if err = os.Chmod(tmpName, DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod state file: %w", err)
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

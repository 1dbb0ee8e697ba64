package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

const lockRetryDelay = 50 * time.Millisecond

// FileTriggerStore keeps the snapshot in a single JSON file. Writes go to a
// temporary file that is renamed into place while holding <path>.lock, so a
// reader never sees a half-written snapshot.
type FileTriggerStore struct {
	path string
	lock *flock.Flock
}

// NewFileTriggerStore returns a FileTriggerStore for path.
func NewFileTriggerStore(path string) *FileTriggerStore {
	return &FileTriggerStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the snapshot file path.
func (s *FileTriggerStore) Path() string { return s.path }

// Load implements TriggerStore.
func (s *FileTriggerStore) Load(_ context.Context) ([]*trigger.Definition, error) {
	data, err := os.ReadFile(s.path) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*trigger.Definition{}, nil
		}
		return nil, fmt.Errorf("reading snapshot %q: %w", s.path, err)
	}
	return DecodeSnapshot(data)
}

// Save implements TriggerStore.
func (s *FileTriggerStore) Save(ctx context.Context, defs []*trigger.Definition) error {
	data, err := EncodeSnapshot(defs)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking snapshot: %w", err)
	}
	if !locked {
		return fmt.Errorf("locking snapshot: %s is held by another process", s.lock.Path())
	}
	defer s.lock.Unlock() //nolint:errcheck

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

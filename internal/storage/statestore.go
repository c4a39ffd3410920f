package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// stateVersion is written into every envelope; bump it when the layout of
// the persisted state changes.
const stateVersion = 0

// persistedState is the on-disk envelope: the store state plus a version.
type persistedState struct {
	State   models.TaskState `json:"state"`
	Version int              `json:"version"`
}

// StateStore persists the task store state as a single named JSON record.
type StateStore interface {
	LoadState() (*models.TaskState, error)
	SaveState(state models.TaskState) error
	Path() string
}

type fileStateStore struct {
	basePath string
	key      string
	lockWait time.Duration
}

// NewStateStore creates a StateStore that keeps the record named key in
// <basePath>/<key>.json.
func NewStateStore(basePath, key string) StateStore {
	return &fileStateStore{basePath: basePath, key: key, lockWait: defaultLockWait}
}

// Path returns the location of the state file.
func (s *fileStateStore) Path() string {
	return filepath.Join(s.basePath, s.key+".json")
}

func (s *fileStateStore) lockPath() string {
	return filepath.Join(s.basePath, "."+s.key+".lock")
}

// LoadState reads and validates the state file. A missing file yields a nil
// state and no error, meaning "start empty".
func (s *fileStateStore) LoadState() (*models.TaskState, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if err := validateStateDocument(data); err != nil {
		return nil, fmt.Errorf("loading state from %s: %w", s.Path(), err)
	}

	var env persistedState
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("loading state: parsing JSON: %w", err)
	}

	seen := make(map[string]bool, len(env.State.Tasks))
	for _, t := range env.State.Tasks {
		if seen[t.ID] {
			return nil, fmt.Errorf("loading state: duplicate task id %s", t.ID)
		}
		seen[t.ID] = true
	}
	if env.State.Tasks == nil {
		env.State.Tasks = []models.Task{}
	}

	return &env.State, nil
}

// SaveState overwrites the state file with state. The write holds an
// exclusive lock and goes through a temp file and rename, so readers see
// either the old or the new record, never a partial one.
func (s *fileStateStore) SaveState(state models.TaskState) error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving state: creating directory: %w", err)
	}

	lock, err := acquireLock(s.lockPath(), s.lockWait)
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if state.Tasks == nil {
		state.Tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(persistedState{State: state, Version: stateVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("saving state: marshaling JSON: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.basePath, "."+s.key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("saving state: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("saving state: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving state: closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("saving state: setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("saving state: replacing state file: %w", err)
	}
	return nil
}

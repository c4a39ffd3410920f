package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireLock_ExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".todo-storage.lock")

	first, err := acquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := acquireLock(path, 60*time.Millisecond); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout while held, got %v", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("release: %v", err)
	}

	second, err := acquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	_ = second.Unlock()
}

func TestStateStore_SaveWaitsForLock(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(dir, "todo-storage").(*fileStateStore)
	store.lockWait = 50 * time.Millisecond

	held, err := acquireLock(store.lockPath(), time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer func() { _ = held.Unlock() }()

	if err := store.SaveState(sampleState()); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
}

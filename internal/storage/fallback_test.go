package storage

import (
	"path/filepath"
	"testing"

	"github.com/nixlim/wiki-top/internal/config"
)

func TestFallback_SQLiteSuccess(t *testing.T) {
	cfg := config.StorageConfig{
		DBPath:        filepath.Join(t.TempDir(), "test.db"),
		CacheTTLHours: 24,
		RetentionDays: 30,
	}

	store, isPersistent, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if !isPersistent {
		t.Error("expected isPersistent=true for valid DB path")
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("expected *SQLiteStore, got %T", store)
	}
}

func TestFallback_UnwritablePath(t *testing.T) {
	// A regular file where a parent directory is expected cannot be
	// created by any user.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := writeFile(blocker); err != nil {
		t.Fatalf("creating blocker: %v", err)
	}

	cfg := config.StorageConfig{
		DBPath:        filepath.Join(blocker, "nested", "test.db"),
		CacheTTLHours: 24,
		RetentionDays: 30,
	}

	store, isPersistent, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore should not return error on fallback: %v", err)
	}
	defer func() { _ = store.Close() }()

	if isPersistent {
		t.Error("expected isPersistent=false for unwritable path")
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", store)
	}
}

func TestFallback_EmptyPathUsesMemory(t *testing.T) {
	store, isPersistent, err := NewStore(config.StorageConfig{CacheTTLHours: 1, RetentionDays: 1})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if isPersistent {
		t.Error("expected isPersistent=false for empty db_path")
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", store)
	}
}

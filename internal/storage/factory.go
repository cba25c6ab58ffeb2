package storage

import (
	"log"
	"time"

	"github.com/nixlim/wiki-top/internal/config"
)

// NewStore opens the configured cache. An empty db_path selects the
// in-memory store; an unusable path falls back to it with a warning. The
// bool reports whether the returned store persists across runs.
func NewStore(cfg config.StorageConfig) (Store, bool, error) {
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour

	if cfg.DBPath == "" {
		return NewMemoryStore(ttl), false, nil
	}

	dbPath := config.ExpandPath(cfg.DBPath)

	store, err := NewSQLiteStore(dbPath, ttl, cfg.RetentionDays)
	if err != nil {
		log.Printf("WARNING: SQLite cache unavailable (%v), falling back to in-memory store", err)
		return NewMemoryStore(ttl), false, nil
	}

	return store, true, nil
}

package storage

import (
	"fmt"
	"log"
)

// runMaintenance deletes profiles fetched more than retentionDays ago,
// along with their edits and namespaces, and compacts the file when
// anything was removed.
func (s *SQLiteStore) runMaintenance(retentionDays int) error {
	retentionModifier := fmt.Sprintf("-%d days", retentionDays)

	res, err := s.db.Exec("DELETE FROM profiles WHERE datetime(fetched_at) < datetime('now', ?)", retentionModifier)
	if err != nil {
		return fmt.Errorf("pruning old profiles: %w", err)
	}

	// Rows orphaned by a database written without foreign keys enabled.
	if _, err := s.db.Exec("DELETE FROM edits WHERE profile_key NOT IN (SELECT key FROM profiles)"); err != nil {
		return fmt.Errorf("pruning orphaned edits: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM namespaces WHERE profile_key NOT IN (SELECT key FROM profiles)"); err != nil {
		return fmt.Errorf("pruning orphaned namespaces: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := s.db.Exec("VACUUM"); err != nil {
			log.Printf("ERROR: VACUUM failed: %v", err)
		}
	}
	return nil
}

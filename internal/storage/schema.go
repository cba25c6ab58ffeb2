package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

func OpenDB(dbPath string) (*sql.DB, error) {
	parentDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// foreign_keys is per connection; a single connection keeps the
	// cascade deletes effective.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrateSchema(db, dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateSchema(db *sql.DB, dbPath string) error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion int
	if err == sql.ErrNoRows {
		currentVersion = 0
	} else if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	} else {
		err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&currentVersion)
		if err == sql.ErrNoRows {
			currentVersion = 0
		} else if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	if currentVersion > currentSchemaVersion {
		return fmt.Errorf(
			"cache schema version %d is newer than this wiki-top version supports (max: %d); upgrade wiki-top or delete %s to start fresh",
			currentVersion, currentSchemaVersion, dbPath,
		)
	}

	if currentVersion < currentSchemaVersion {
		if err := applyMigrations(db, currentVersion); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
	}

	return nil
}

func applyMigrations(db *sql.DB, fromVersion int) error {
	if fromVersion == 0 {
		if err := migrateV0ToV1(db); err != nil {
			return fmt.Errorf("migration v0→v1: %w", err)
		}
	}

	return nil
}

func migrateV0ToV1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []struct {
		what string
		sql  string
	}{
		{"schema_version table", `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`},
		{"schema version", "INSERT INTO schema_version (version) VALUES (1)"},
		{"profiles table", `
			CREATE TABLE IF NOT EXISTS profiles (
				key TEXT PRIMARY KEY,
				wiki TEXT,
				api TEXT NOT NULL,
				user_name TEXT NOT NULL,
				edit_count INTEGER,
				has_edit_count INTEGER,
				uploads INTEGER,
				block TEXT,
				rights TEXT,
				fetched_at TEXT NOT NULL
			)`},
		{"namespaces table", `
			CREATE TABLE IF NOT EXISTS namespaces (
				profile_key TEXT NOT NULL REFERENCES profiles(key) ON DELETE CASCADE,
				ns_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				content INTEGER NOT NULL,
				PRIMARY KEY (profile_key, ns_id)
			)`},
		{"edits table", `
			CREATE TABLE IF NOT EXISTS edits (
				profile_key TEXT NOT NULL REFERENCES profiles(key) ON DELETE CASCADE,
				rev_id INTEGER NOT NULL,
				ns INTEGER NOT NULL,
				title TEXT NOT NULL,
				timestamp TEXT NOT NULL,
				comment TEXT,
				size_diff INTEGER,
				tags TEXT,
				PRIMARY KEY (profile_key, rev_id)
			)`},
		{"idx_edits_profile_ts", "CREATE INDEX IF NOT EXISTS idx_edits_profile_ts ON edits(profile_key, timestamp)"},
		{"idx_profiles_fetched", "CREATE INDEX IF NOT EXISTS idx_profiles_fetched ON profiles(fetched_at)"},
	}

	for _, st := range stmts {
		if _, err := tx.Exec(st.sql); err != nil {
			return fmt.Errorf("creating %s: %w", st.what, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

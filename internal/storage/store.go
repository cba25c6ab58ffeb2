// Package storage caches loaded wiki sessions so repeated runs against the
// same user do not refetch the full contribution history.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/wiki"
)

// Store is a session cache. Load returns nil and no error on a miss or
// when the cached copy is older than the store's TTL.
type Store interface {
	Load(key string) (*wiki.Session, error)
	Save(s *wiki.Session) error
	Close() error
}

// timestampLayout is fixed width so timestamp columns sort chronologically
// as strings. Reads accept any RFC 3339 form.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens the cache at dbPath and prunes profiles fetched
// more than retentionDays ago. A zero ttl turns every Load into a miss.
func NewSQLiteStore(dbPath string, ttl time.Duration, retentionDays int) (*SQLiteStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db, ttl: ttl, now: time.Now}

	if err := store.runMaintenance(retentionDays); err != nil {
		log.Printf("ERROR: cache maintenance failed: %v", err)
	}

	return store, nil
}

// Save replaces any cached copy of the session's profile.
func (s *SQLiteStore) Save(sess *wiki.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM profiles WHERE key = ?", sess.Key); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO profiles (key, wiki, api, user_name, edit_count, has_edit_count, uploads, block, rights, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sess.Key, sess.Wiki, sess.API, sess.User,
		sess.EditCount, boolToInt(sess.HasEditCount), sess.Uploads,
		marshalJSONColumn("block", sess.Block), marshalJSONColumn("rights", sess.Rights),
		sess.FetchedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	nsStmt, err := tx.Prepare("INSERT INTO namespaces (profile_key, ns_id, name, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing namespace insert: %w", err)
	}
	defer func() { _ = nsStmt.Close() }()

	for _, ns := range sess.Namespaces {
		if _, err := nsStmt.Exec(sess.Key, ns.ID, ns.Name, boolToInt(ns.Content)); err != nil {
			return fmt.Errorf("writing namespace %d: %w", ns.ID, err)
		}
	}

	editStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO edits (profile_key, rev_id, ns, title, timestamp, comment, size_diff, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing edit insert: %w", err)
	}
	defer func() { _ = editStmt.Close() }()

	for _, e := range sess.Edits {
		_, err := editStmt.Exec(
			sess.Key, e.RevID, e.Namespace, e.Title,
			e.Timestamp.UTC().Format(timestampLayout),
			e.Comment, e.SizeDiff, marshalJSONColumn("tags", e.Tags),
		)
		if err != nil {
			return fmt.Errorf("writing revision %d: %w", e.RevID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads a cached session. Expired or absent profiles yield nil.
func (s *SQLiteStore) Load(key string) (*wiki.Session, error) {
	var (
		wikiName, block, rights sql.NullString
		api, user, fetchedAt    string
		editCount, uploads      sql.NullInt64
		hasEditCount            sql.NullInt64
	)
	err := s.db.QueryRow(`
		SELECT wiki, api, user_name, edit_count, has_edit_count, uploads, block, rights, fetched_at
		FROM profiles WHERE key = ?
	`, key).Scan(&wikiName, &api, &user, &editCount, &hasEditCount, &uploads, &block, &rights, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	fetched, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at %q: %w", fetchedAt, err)
	}
	if !fresh(fetched, s.ttl, s.now()) {
		return nil, nil
	}

	sess := &wiki.Session{
		Key:          key,
		Wiki:         wikiName.String,
		API:          api,
		User:         user,
		EditCount:    int(editCount.Int64),
		HasEditCount: hasEditCount.Int64 != 0,
		Uploads:      int(uploads.Int64),
		FetchedAt:    fetched,
	}
	if block.Valid && block.String != "" && block.String != "null" {
		var b wiki.Block
		if err := json.Unmarshal([]byte(block.String), &b); err != nil {
			log.Printf("WARNING: ignoring unreadable cached block for %s: %v", key, err)
		} else {
			sess.Block = &b
		}
	}
	if rights.Valid && rights.String != "" {
		if err := json.Unmarshal([]byte(rights.String), &sess.Rights); err != nil {
			log.Printf("WARNING: ignoring unreadable cached rights log for %s: %v", key, err)
		}
	}

	if sess.Namespaces, err = s.loadNamespaces(key); err != nil {
		return nil, err
	}
	if sess.Edits, err = s.loadEdits(key); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteStore) loadNamespaces(key string) (contribs.Namespaces, error) {
	rows, err := s.db.Query("SELECT ns_id, name, content FROM namespaces WHERE profile_key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("querying namespaces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(contribs.Namespaces)
	for rows.Next() {
		var ns contribs.Namespace
		var content int
		if err := rows.Scan(&ns.ID, &ns.Name, &content); err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		ns.Content = content != 0
		result[ns.ID] = ns
	}
	return result, rows.Err()
}

func (s *SQLiteStore) loadEdits(key string) (contribs.List, error) {
	rows, err := s.db.Query(`
		SELECT rev_id, ns, title, timestamp, comment, size_diff, tags
		FROM edits WHERE profile_key = ?
		ORDER BY timestamp, rev_id
	`, key)
	if err != nil {
		return nil, fmt.Errorf("querying edits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	edits := contribs.List{}
	var failCount int
	for rows.Next() {
		var (
			e        contribs.Edit
			ts       string
			comment  sql.NullString
			sizeDiff sql.NullInt64
			tags     sql.NullString
		)
		if err := rows.Scan(&e.RevID, &e.Namespace, &e.Title, &ts, &comment, &sizeDiff, &tags); err != nil {
			failCount++
			log.Printf("ERROR: failed to scan edit row: %v", err)
			continue
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			failCount++
			log.Printf("WARNING: skipping cached revision %d: bad timestamp %q", e.RevID, ts)
			continue
		}
		e.Timestamp = parsed.UTC()
		e.Comment = comment.String
		e.SizeDiff = int(sizeDiff.Int64)
		e.Tags = []string{}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &e.Tags); err != nil {
				e.Tags = []string{}
			}
		}
		edits = append(edits, e)
	}
	if failCount > 0 {
		log.Printf("WARNING: %d cached edits could not be read for %s", failCount, key)
	}
	return edits, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func fresh(fetched time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(fetched) < ttl
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// marshalJSONColumn marshals v to JSON, returning nil on failure and logging the error.
func marshalJSONColumn(name string, v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("WARNING: failed to marshal %s JSON: %v", name, err)
		return nil
	}
	if len(data) > 1<<20 {
		log.Printf("WARNING: %s JSON column exceeds 1MB (%d bytes)", name, len(data))
	}
	return string(data)
}

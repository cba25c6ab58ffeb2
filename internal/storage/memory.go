package storage

import (
	"slices"
	"sync"
	"time"

	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/wiki"
)

// MemoryStore keeps sessions for the lifetime of the process. It is the
// fallback when no database is configured or SQLite cannot be opened.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*wiki.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*wiki.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(s *wiki.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Key] = cloneSession(s)
	return nil
}

func (m *MemoryStore) Load(key string) (*wiki.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok || !fresh(s.FetchedAt, m.ttl, m.now()) {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// cloneSession copies the persisted fields of s so callers cannot mutate
// the stored copy.
func cloneSession(s *wiki.Session) *wiki.Session {
	c := &wiki.Session{
		Key:          s.Key,
		Wiki:         s.Wiki,
		API:          s.API,
		User:         s.User,
		EditCount:    s.EditCount,
		HasEditCount: s.HasEditCount,
		Uploads:      s.Uploads,
		Rights:       slices.Clone(s.Rights),
		FetchedAt:    s.FetchedAt,
	}
	if s.Block != nil {
		b := *s.Block
		c.Block = &b
	}
	c.Namespaces = make(contribs.Namespaces, len(s.Namespaces))
	for id, ns := range s.Namespaces {
		c.Namespaces[id] = ns
	}
	c.Edits = make(contribs.List, len(s.Edits))
	for i, e := range s.Edits {
		e.Tags = slices.Clone(e.Tags)
		c.Edits[i] = e
	}
	return c
}

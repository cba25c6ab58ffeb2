package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/wiki"
)

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

func testSession(api, user string) *wiki.Session {
	ts := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return &wiki.Session{
		Key:          wiki.SessionKey(api, user),
		Wiki:         "testwiki",
		API:          api,
		User:         user,
		EditCount:    3,
		HasEditCount: true,
		Uploads:      1,
		Namespaces: contribs.Namespaces{
			0: {ID: 0, Name: "", Content: true},
			1: {ID: 1, Name: "Talk"},
		},
		Edits: contribs.List{
			{RevID: 11, Namespace: 0, Title: "Alpha", Timestamp: ts("2021-01-01T10:00:00Z"), Comment: "first", SizeDiff: 120, Tags: []string{}},
			{RevID: 12, Namespace: 1, Title: "Talk:Alpha", Timestamp: ts("2021-01-02T11:30:00Z"), Comment: "reply", SizeDiff: -4, Tags: []string{"mobile edit"}},
		},
		Block: &wiki.Block{ID: 7, By: "Admin", Reason: "spam", Expiry: "infinite", Since: ts("2022-05-01T00:00:00Z")},
		Rights: []wiki.RightsChange{
			{Timestamp: ts("2020-06-01T00:00:00Z"), Performer: "Bureaucrat", Old: []string{}, New: []string{"sysop"}},
		},
		FetchedAt: time.Now().UTC(),
	}
}

func openTestStore(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), ttl, 30)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func assertSessionEqual(t *testing.T, want, got *wiki.Session) {
	t.Helper()
	if got == nil {
		t.Fatal("expected a cached session, got nil")
	}
	if got.User != want.User || got.API != want.API || got.Wiki != want.Wiki {
		t.Errorf("expected identity %s@%s (%s), got %s@%s (%s)", want.User, want.API, want.Wiki, got.User, got.API, got.Wiki)
	}
	if got.EditCount != want.EditCount || !got.HasEditCount || got.Uploads != want.Uploads {
		t.Errorf("expected counts %d/%d, got %d/%d (has=%v)", want.EditCount, want.Uploads, got.EditCount, got.Uploads, got.HasEditCount)
	}
	if len(got.Namespaces) != len(want.Namespaces) || !got.Namespaces[0].Content || got.Namespaces[1].Name != "Talk" {
		t.Errorf("unexpected namespaces: %+v", got.Namespaces)
	}
	if len(got.Edits) != len(want.Edits) {
		t.Fatalf("expected %d edits, got %d", len(want.Edits), len(got.Edits))
	}
	for i := range want.Edits {
		w, g := want.Edits[i], got.Edits[i]
		if g.RevID != w.RevID || g.Title != w.Title || g.Comment != w.Comment || g.SizeDiff != w.SizeDiff || !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("edit %d: expected %+v, got %+v", i, w, g)
		}
		if len(g.Tags) != len(w.Tags) || g.Tags == nil {
			t.Errorf("edit %d: expected tags %v, got %v", i, w.Tags, g.Tags)
		}
	}
	if got.Block == nil || got.Block.By != "Admin" || !got.Block.Since.Equal(want.Block.Since) {
		t.Errorf("expected block by Admin, got %+v", got.Block)
	}
	if len(got.Rights) != 1 || got.Rights[0].Added()[0] != "sysop" {
		t.Errorf("expected one rights change adding sysop, got %+v", got.Rights)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)
	want := testSession("https://en.example.org/w/api.php", "Example")

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Load(want.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSessionEqual(t, want, got)
}

func TestSQLiteStore_Miss(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)

	got, err := store.Load("https://nowhere/w/api.php#Nobody")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got %+v", got)
	}
}

func TestSQLiteStore_Expired(t *testing.T) {
	store := openTestStore(t, time.Hour)
	s := testSession("https://en.example.org/w/api.php", "Example")
	s.FetchedAt = time.Now().Add(-2 * time.Hour)

	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Load(s.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil for a session older than the TTL")
	}
}

func TestSQLiteStore_ZeroTTLAlwaysMisses(t *testing.T) {
	store := openTestStore(t, 0)
	s := testSession("https://en.example.org/w/api.php", "Example")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got, _ := store.Load(s.Key); got != nil {
		t.Error("expected zero TTL to disable cache hits")
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)
	s := testSession("https://en.example.org/w/api.php", "Example")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s.Edits = s.Edits[:1]
	s.Block = nil
	if err := store.Save(s); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := store.Load(s.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Edits) != 1 {
		t.Errorf("expected 1 edit after replacing, got %d", len(got.Edits))
	}
	if got.Block != nil {
		t.Errorf("expected block cleared, got %+v", got.Block)
	}
}

func TestSQLiteStore_EditsOrderedByTimestamp(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)
	s := testSession("https://en.example.org/w/api.php", "Example")
	s.Edits[0], s.Edits[1] = s.Edits[1], s.Edits[0]

	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Load(s.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Edits[0].RevID != 11 || got.Edits[1].RevID != 12 {
		t.Errorf("expected edits in timestamp order 11,12, got %d,%d", got.Edits[0].RevID, got.Edits[1].RevID)
	}
}

func TestSQLiteStore_SubSecondOrdering(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)
	s := testSession("https://en.example.org/w/api.php", "Example")
	base := time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC)
	s.Edits = contribs.List{
		{RevID: 21, Namespace: 0, Title: "Alpha", Timestamp: base.Add(500 * time.Millisecond), Tags: []string{}},
		{RevID: 22, Namespace: 0, Title: "Alpha", Timestamp: base, Tags: []string{}},
		{RevID: 23, Namespace: 0, Title: "Alpha", Timestamp: base.Add(time.Second), Tags: []string{}},
	}

	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Load(s.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Edits) != 3 {
		t.Fatalf("expected 3 edits, got %d", len(got.Edits))
	}
	for i, want := range []int64{22, 21, 23} {
		if got.Edits[i].RevID != want {
			t.Errorf("position %d: expected revision %d, got %d", i, want, got.Edits[i].RevID)
		}
	}
	if !got.Edits[1].Timestamp.Equal(base.Add(500 * time.Millisecond)) {
		t.Errorf("expected fractional seconds preserved, got %v", got.Edits[1].Timestamp)
	}
}

func TestSQLiteStore_ReadsLegacyTimestamps(t *testing.T) {
	store := openTestStore(t, 24*time.Hour)
	s := testSession("https://en.example.org/w/api.php", "Example")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.db.Exec("UPDATE edits SET timestamp = '2021-01-01T10:00:00Z' WHERE rev_id = 11"); err != nil {
		t.Fatalf("rewriting timestamp: %v", err)
	}

	got, err := store.Load(s.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Edits) != 2 || !got.Edits[0].Timestamp.Equal(s.Edits[0].Timestamp) {
		t.Errorf("expected the RFC 3339 timestamp to load, got %+v", got.Edits)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	want := testSession("https://en.example.org/w/api.php", "Example")

	store, err := NewSQLiteStore(dbPath, 24*time.Hour, 30)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = store.Close()

	store, err = NewSQLiteStore(dbPath, 24*time.Hour, 30)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	got, err := store.Load(want.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSessionEqual(t, want, got)
}

func TestMemoryStore_RoundTripAndIsolation(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	want := testSession("https://en.example.org/w/api.php", "Example")

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	want.Edits[0].Tags = append(want.Edits[0].Tags, "mutated")

	got, err := store.Load(want.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Edits[0].Tags) != 0 {
		t.Errorf("expected stored copy unaffected by caller mutation, got tags %v", got.Edits[0].Tags)
	}

	got.Edits[1].Title = "Changed"
	again, _ := store.Load(want.Key)
	if again.Edits[1].Title != "Talk:Alpha" {
		t.Errorf("expected stored copy unaffected by loaded copy mutation, got %q", again.Edits[1].Title)
	}
}

func TestMemoryStore_Expired(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	s := testSession("https://en.example.org/w/api.php", "Example")
	s.FetchedAt = time.Now().Add(-2 * time.Hour)
	_ = store.Save(s)

	if got, _ := store.Load(s.Key); got != nil {
		t.Error("expected nil for an expired session")
	}
}

func TestStore_ImplementsCache(t *testing.T) {
	var _ wiki.Cache = (*SQLiteStore)(nil)
	var _ wiki.Cache = (*MemoryStore)(nil)
}

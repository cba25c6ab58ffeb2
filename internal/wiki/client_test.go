package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/nixlim/wiki-top/internal/config"
)

// fakeAPI is an httptest server standing in for a MediaWiki action API.
type fakeAPI struct {
	*httptest.Server

	mu         sync.Mutex
	requests   []url.Values
	userAgents []string
}

func newFakeAPI(t *testing.T, respond func(q url.Values) (int, string)) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f.mu.Lock()
		f.requests = append(f.requests, q)
		f.userAgents = append(f.userAgents, r.Header.Get("User-Agent"))
		f.mu.Unlock()

		status, body := respond(q)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) api() string {
	return f.URL + "/w/api.php"
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func testWikiConfig(metaAPI string) config.WikiConfig {
	return config.WikiConfig{
		MetaAPI:           metaAPI,
		UserAgent:         "wiki-top-test/1.0",
		RequestsPerSecond: 1000,
		Burst:             10,
		TimeoutSeconds:    5,
	}
}

func TestClient_RequestHeadersAndFormat(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		return http.StatusOK, `{"query":{"allimages":[]}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	if _, err := c.Uploads(context.Background(), api.api(), "Example"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.requestCount() != 1 {
		t.Fatalf("expected 1 request, got %d", api.requestCount())
	}
	q := api.requests[0]
	if q.Get("format") != "json" || q.Get("formatversion") != "2" {
		t.Errorf("expected format=json formatversion=2, got %q %q", q.Get("format"), q.Get("formatversion"))
	}
	if q.Get("action") != "query" {
		t.Errorf("expected action=query, got %q", q.Get("action"))
	}
	if api.userAgents[0] != "wiki-top-test/1.0" {
		t.Errorf("expected configured User-Agent, got %q", api.userAgents[0])
	}
}

func TestClient_ContribsFollowsContinuation(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		if q.Get("uccontinue") == "" {
			return http.StatusOK, `{
				"continue": {"uccontinue": "20210102000000|3", "continue": "-||"},
				"query": {
					"users": [{"userid": 7, "name": "Example", "editcount": 10}],
					"usercontribs": [
						{"revid": 1, "ns": 0, "title": "Alpha", "timestamp": "2021-01-01T10:00:00Z", "comment": "typo", "sizediff": 12, "tags": []},
						{"revid": 2, "ns": 1, "title": "Talk:Alpha", "timestamp": "2021-01-02T11:00:00Z", "comment": "", "sizediff": -4, "tags": ["mobile edit"]}
					]
				}
			}`
		}
		if q.Get("uccontinue") != "20210102000000|3" || q.Get("continue") != "-||" {
			t.Errorf("continuation parameters not forwarded: %v", q)
		}
		return http.StatusOK, `{
			"batchcomplete": true,
			"query": {
				"usercontribs": [
					{"revid": 3, "ns": 828, "title": "Module:Beta", "timestamp": "2021-01-02T12:00:00Z", "comment": "lua", "sizediff": 700},
					{"revid": 4, "ns": 0, "title": "Broken", "timestamp": "yesterday", "comment": "", "sizediff": 0}
				]
			}
		}`
	})
	c := NewClient(testWikiConfig(api.api()))

	edits, info, err := c.Contribs(context.Background(), api.api(), "Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.requestCount() != 2 {
		t.Errorf("expected 2 requests, got %d", api.requestCount())
	}
	if len(edits) != 3 {
		t.Fatalf("expected 3 edits (bad timestamp skipped), got %d", len(edits))
	}
	if !info.HasEditCount || info.EditCount != 10 {
		t.Errorf("expected editcount 10, got %+v", info)
	}
	if edits[1].Tags[0] != "mobile edit" || edits[1].SizeDiff != -4 {
		t.Errorf("second edit decoded wrong: %+v", edits[1])
	}
	if edits[2].Tags == nil {
		t.Error("missing tags should decode to an empty slice")
	}
	if edits[0].Timestamp.Location().String() != "UTC" {
		t.Errorf("timestamps should be UTC, got %s", edits[0].Timestamp.Location())
	}
}

func TestClient_ContribsBlockInfo(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		return http.StatusOK, `{"query": {
			"users": [{"name": "Example", "editcount": 3, "blockid": 99, "blockedby": "Admin",
				"blockreason": "Vandalism", "blockexpiry": "infinite", "blockedtimestamp": "2022-05-01T00:00:00Z"}],
			"usercontribs": []
		}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	_, info, err := c.Contribs(context.Background(), api.api(), "Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Block == nil {
		t.Fatal("expected block info")
	}
	if info.Block.By != "Admin" || info.Block.Expiry != "infinite" || info.Block.Since.Year() != 2022 {
		t.Errorf("unexpected block: %+v", info.Block)
	}
}

func TestClient_ContribsMissingUser(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		return http.StatusOK, `{"query": {"users": [{"name": "Nobody", "missing": true}], "usercontribs": []}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	_, _, err := c.Contribs(context.Background(), api.api(), "Nobody")
	if !errors.Is(err, ErrNoSuchUser) {
		t.Errorf("expected ErrNoSuchUser, got %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		return http.StatusOK, `{"error": {"code": "baduser_ucuser", "info": "Invalid value for user parameter"}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	_, _, err := c.Contribs(context.Background(), api.api(), "<bad>")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != "baduser_ucuser" {
		t.Errorf("expected code baduser_ucuser, got %q", apiErr.Code)
	}
}

func TestClient_HTTPError(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		return http.StatusServiceUnavailable, `oops`
	})
	c := NewClient(testWikiConfig(api.api()))

	_, err := c.Uploads(context.Background(), api.api(), "Example")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("expected HTTP 503 error, got %v", err)
	}
}

func TestClient_Namespaces(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		if q.Get("meta") != "siteinfo" || q.Get("siprop") != "namespaces" {
			t.Errorf("unexpected query: %v", q)
		}
		return http.StatusOK, `{"query": {"namespaces": {
			"-2": {"id": -2, "name": "Media", "content": false},
			"-1": {"id": -1, "name": "Special", "content": false},
			"0": {"id": 0, "name": "", "content": true},
			"1": {"id": 1, "name": "Talk", "content": false},
			"828": {"id": 828, "name": "Module", "content": false}
		}}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	ns, err := c.Namespaces(context.Background(), api.api())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ns[-1]; ok {
		t.Error("namespace -1 should be dropped")
	}
	if len(ns) != 4 {
		t.Errorf("expected 4 namespaces, got %d", len(ns))
	}
	if !ns[0].Content || ns[0].Name != "" {
		t.Errorf("main namespace decoded wrong: %+v", ns[0])
	}
	if ns[828].Name != "Module" {
		t.Errorf("expected Module, got %q", ns[828].Name)
	}
}

func TestClient_SiteMatrix(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		if q.Get("action") != "sitematrix" {
			t.Errorf("expected action=sitematrix, got %q", q.Get("action"))
		}
		return http.StatusOK, `{"sitematrix": {
			"count": 4,
			"0": {"code": "en", "name": "English", "site": [
				{"url": "https://en.wikipedia.org", "dbname": "enwiki", "code": "wiki"},
				{"url": "https://en.wikibooks.org", "dbname": "enwikibooks", "code": "wikibooks", "closed": true}
			]},
			"specials": [
				{"url": "https://commons.wikimedia.org", "dbname": "commonswiki", "code": "commons"},
				{"url": "https://office.wikimedia.org", "dbname": "officewiki", "code": "office", "private": true},
				{"url": "http://fishbowl.example.org", "dbname": "fishwiki", "code": "fish", "fishbowl": true}
			]
		}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	sites, err := c.SiteMatrix(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sites["enwiki"] != "https://en.wikipedia.org/w/api.php" {
		t.Errorf("enwiki: got %q", sites["enwiki"])
	}
	if sites["commonswiki"] != "https://commons.wikimedia.org/w/api.php" {
		t.Errorf("commonswiki: got %q", sites["commonswiki"])
	}
	for _, skipped := range []string{"enwikibooks", "officewiki", "fishwiki"} {
		if _, ok := sites[skipped]; ok {
			t.Errorf("%s should be skipped", skipped)
		}
	}
}

func TestClient_CoordinatesBatches(t *testing.T) {
	var mu sync.Mutex
	var batchSizes []int
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		titles := strings.Split(q.Get("titles"), "|")
		mu.Lock()
		batchSizes = append(batchSizes, len(titles))
		mu.Unlock()

		var pages []string
		for _, title := range titles {
			if title == "Place 7" {
				pages = append(pages, `{"title": "Place 7", "coordinates": [{"lat": 51.5, "lon": -0.12, "primary": true, "globe": "earth"}]}`)
				continue
			}
			pages = append(pages, fmt.Sprintf(`{"title": %q}`, title))
		}
		return http.StatusOK, `{"query": {"pages": [` + strings.Join(pages, ",") + `]}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	titles := make([]string, 120)
	for i := range titles {
		titles[i] = fmt.Sprintf("Place %d", i)
	}

	coords, err := c.Coordinates(context.Background(), api.api(), titles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{50, 50, 20}
	if len(batchSizes) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(batchSizes))
	}
	for i := range want {
		if batchSizes[i] != want[i] {
			t.Errorf("batch %d: %d titles, want %d", i, batchSizes[i], want[i])
		}
	}
	if len(coords) != 1 || len(coords["Place 7"]) != 1 {
		t.Fatalf("expected coordinates for Place 7 only, got %v", coords)
	}
	if coords["Place 7"][0].Lat != 51.5 {
		t.Errorf("lat: got %f", coords["Place 7"][0].Lat)
	}
}

func TestClient_UploadsContinuation(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		if q.Get("aicontinue") == "" {
			return http.StatusOK, `{"continue": {"aicontinue": "B.png", "continue": "-||"}, "query": {"allimages": [{"name": "A.png"}]}}`
		}
		return http.StatusOK, `{"query": {"allimages": [{"name": "B.png"}, {"name": "C.png"}]}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	n, err := c.Uploads(context.Background(), api.api(), "Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 uploads, got %d", n)
	}
}

func TestClient_RightsLog(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		if q.Get("letitle") != "User:Example" {
			t.Errorf("expected letitle=User:Example, got %q", q.Get("letitle"))
		}
		return http.StatusOK, `{"query": {"logevents": [
			{"user": "Old", "timestamp": "2006-01-01T00:00:00Z", "comment": "legacy"},
			{"user": "Crat", "timestamp": "2020-03-01T00:00:00Z", "comment": "trusted",
				"params": {"oldgroups": ["autoconfirmed"], "newgroups": ["autoconfirmed", "rollbacker"]}}
		]}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	changes, err := c.RightsLog(context.Background(), api.api(), "Example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change (legacy entry skipped), got %d", len(changes))
	}
	added := changes[0].Added()
	if len(added) != 1 || added[0] != "rollbacker" {
		t.Errorf("expected rollbacker added, got %v", added)
	}
	if len(changes[0].Removed()) != 0 {
		t.Errorf("expected nothing removed, got %v", changes[0].Removed())
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	api := newFakeAPI(t, func(q url.Values) (int, string) {
		return http.StatusOK, `{"query": {}}`
	})
	c := NewClient(testWikiConfig(api.api()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Uploads(ctx, api.api(), "Example"); err == nil {
		t.Error("expected error from cancelled context")
	}
}

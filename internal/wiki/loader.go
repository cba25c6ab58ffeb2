package wiki

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nixlim/wiki-top/internal/contribs"
)

// Cache persists loaded sessions between runs. Load returns nil and no
// error on a miss, including when the cached copy has expired.
type Cache interface {
	Load(key string) (*Session, error)
	Save(s *Session) error
}

// Loader resolves a Target to a Session, from the cache when possible.
type Loader struct {
	client *Client
	cache  Cache
	now    func() time.Time

	mu    sync.Mutex
	sites map[string]string
}

// NewLoader creates a Loader. cache may be nil to always hit the network.
func NewLoader(client *Client, cache Cache) *Loader {
	return &Loader{client: client, cache: cache, now: time.Now}
}

// Resolve turns a wiki identifier into an API URL. URLs are used as given,
// with "/w/api.php" appended when they carry no path; anything else is
// looked up as a database name in the site matrix.
func (l *Loader) Resolve(ctx context.Context, wiki string) (string, error) {
	wiki = strings.TrimSpace(wiki)
	if strings.HasPrefix(wiki, "http://") || strings.HasPrefix(wiki, "https://") {
		u, err := url.Parse(wiki)
		if err != nil {
			return "", fmt.Errorf("parsing wiki url: %w", err)
		}
		if u.Path == "" || u.Path == "/" {
			u.Path = "/w/api.php"
		}
		return u.String(), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sites == nil {
		sites, err := l.client.SiteMatrix(ctx)
		if err != nil {
			return "", err
		}
		l.sites = sites
	}
	api, ok := l.sites[wiki]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownWiki, wiki)
	}
	return api, nil
}

// Load returns the session for target. Unless refresh is set, a fresh
// cached copy is returned without touching the network. Otherwise the
// namespaces, contributions, uploads and rights log are fetched
// concurrently and the result is written back to the cache.
func (l *Loader) Load(ctx context.Context, target Target, refresh bool) (*Session, error) {
	if strings.TrimSpace(target.User) == "" {
		return nil, fmt.Errorf("no user given")
	}
	api, err := l.Resolve(ctx, target.Wiki)
	if err != nil {
		return nil, fmt.Errorf("resolving wiki %q: %w", target.Wiki, err)
	}
	user := NormalizeUser(target.User)
	key := SessionKey(api, user)

	if !refresh && l.cache != nil {
		cached, err := l.cache.Load(key)
		if err != nil {
			log.Printf("WARNING: reading cached session %s: %v", key, err)
		} else if cached != nil {
			cached.Wiki = target.Wiki
			cached.Since = target.Since
			cached.FromCache = true
			return cached, nil
		}
	}

	s := &Session{
		Key:   key,
		Wiki:  target.Wiki,
		API:   api,
		User:  user,
		Since: target.Since,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ns, err := l.client.Namespaces(gctx, api)
		if err != nil {
			return err
		}
		s.Namespaces = ns
		return nil
	})
	g.Go(func() error {
		edits, info, err := l.client.Contribs(gctx, api, user)
		if err != nil {
			return err
		}
		s.Edits = contribs.SortByTimestamp(edits)
		s.EditCount = info.EditCount
		s.HasEditCount = info.HasEditCount
		s.Block = info.Block
		return nil
	})
	g.Go(func() error {
		n, err := l.client.Uploads(gctx, api, user)
		if err != nil {
			return err
		}
		s.Uploads = n
		return nil
	})
	g.Go(func() error {
		rights, err := l.client.RightsLog(gctx, api, user)
		if err != nil {
			// A missing rights log does not fail the load.
			log.Printf("WARNING: %v", err)
			return nil
		}
		s.Rights = rights
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.FetchedAt = l.now().UTC()

	if l.cache != nil {
		if err := l.cache.Save(s); err != nil {
			log.Printf("WARNING: caching session %s: %v", key, err)
		}
	}
	return s, nil
}

// LoadCoordinates fetches coordinates for the given titles on the
// session's wiki. It is separate from Load so the map view can request it
// lazily.
func (l *Loader) LoadCoordinates(ctx context.Context, s *Session, titles []string) (map[string][]Coordinate, error) {
	return l.client.Coordinates(ctx, s.API, titles)
}

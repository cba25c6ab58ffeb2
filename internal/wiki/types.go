// Package wiki fetches a contributor's history from a MediaWiki action API
// and assembles it into a Session for the aggregation engine.
package wiki

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nixlim/wiki-top/internal/contribs"
)

// CoordinateBatch is the number of titles sent per prop=coordinates request.
const CoordinateBatch = 50

var (
	// ErrNoSuchUser is returned when the API reports the user as missing.
	ErrNoSuchUser = errors.New("no such user")

	// ErrUnknownWiki is returned when a database name is absent from the
	// site matrix.
	ErrUnknownWiki = errors.New("unknown wiki")
)

// APIError is an error object returned in a MediaWiki response body.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}

// Target identifies whose history to load and from where.
type Target struct {
	// Wiki is a database name such as "enwiki" or an API URL.
	Wiki  string
	User  string
	Since *contribs.Month
}

// Block describes an active block on the user.
type Block struct {
	ID     int64
	By     string
	Reason string
	Expiry string
	Since  time.Time
}

// RightsChange is one entry of the user's rights log.
type RightsChange struct {
	Timestamp time.Time
	Performer string
	Comment   string
	Old       []string
	New       []string
}

// Added returns the groups present after the change but not before.
func (r RightsChange) Added() []string {
	return difference(r.New, r.Old)
}

// Removed returns the groups present before the change but not after.
func (r RightsChange) Removed() []string {
	return difference(r.Old, r.New)
}

func difference(a, b []string) []string {
	var out []string
	for _, g := range a {
		if !slices.Contains(b, g) {
			out = append(out, g)
		}
	}
	return out
}

// Coordinate is a point attached to a page.
type Coordinate struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Primary bool    `json:"primary"`
	Globe   string  `json:"globe"`
}

// UserInfo is the account data returned alongside the contributions.
type UserInfo struct {
	Name         string
	EditCount    int
	HasEditCount bool
	Block        *Block
}

// Session is everything loaded for one user on one wiki. It is passed
// explicitly to every consumer.
type Session struct {
	Key          string
	Wiki         string
	API          string
	User         string
	Namespaces   contribs.Namespaces
	Edits        contribs.List
	EditCount    int
	HasEditCount bool
	Uploads      int
	Block        *Block
	Rights       []RightsChange
	FetchedAt    time.Time

	// Since and FromCache describe this run and are not persisted.
	Since     *contribs.Month
	FromCache bool
}

// ScopedEdits returns the edits at or after Since, or all edits when
// Since is unset.
func (s *Session) ScopedEdits() contribs.List {
	if s.Since == nil {
		return s.Edits
	}
	out := contribs.List{}
	for _, e := range s.Edits {
		if !contribs.MonthOf(e.Timestamp).Before(*s.Since) {
			out = append(out, e)
		}
	}
	return out
}

// DiffURL links to the diff of a revision on the session's wiki.
func (s *Session) DiffURL(revID int64) string {
	return strings.TrimSuffix(s.API, "api.php") + "index.php?diff=" + strconv.FormatInt(revID, 10)
}

// SessionKey is the cache key of a user's history on an API endpoint.
func SessionKey(api, user string) string {
	return api + "#" + user
}

// NormalizeUser applies MediaWiki title normalisation to a user name:
// underscores become spaces and the first letter is upper-cased.
func NormalizeUser(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/nixlim/wiki-top/internal/contribs"
)

type siteEntry struct {
	URL      string `json:"url"`
	DBName   string `json:"dbname"`
	Private  bool   `json:"private"`
	Fishbowl bool   `json:"fishbowl"`
	Closed   bool   `json:"closed"`
}

// SiteMatrix maps every public wiki database name to its API URL.
// Private, fishbowl and closed wikis are left out.
func (c *Client) SiteMatrix(ctx context.Context) (map[string]string, error) {
	params := url.Values{}
	params.Set("action", "sitematrix")
	params.Set("smsiteprop", "dbname|url")
	params.Set("smlangprop", "site")

	body, err := c.get(ctx, c.metaAPI, params)
	if err != nil {
		return nil, fmt.Errorf("fetching site matrix: %w", err)
	}

	var resp struct {
		SiteMatrix map[string]json.RawMessage `json:"sitematrix"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding site matrix: %w", err)
	}

	sites := make(map[string]string)
	add := func(list []siteEntry) {
		for _, s := range list {
			if s.DBName == "" || s.URL == "" || s.Private || s.Fishbowl || s.Closed {
				continue
			}
			sites[s.DBName] = apiFromSiteURL(s.URL)
		}
	}

	for key, raw := range resp.SiteMatrix {
		if key == "count" {
			continue
		}
		var specials []siteEntry
		if err := json.Unmarshal(raw, &specials); err == nil {
			add(specials)
			continue
		}
		var lang struct {
			Site []siteEntry `json:"site"`
		}
		if err := json.Unmarshal(raw, &lang); err == nil {
			add(lang.Site)
		}
	}
	return sites, nil
}

func apiFromSiteURL(site string) string {
	if strings.HasPrefix(site, "//") {
		site = "https:" + site
	}
	site = strings.Replace(site, "http://", "https://", 1)
	return strings.TrimSuffix(site, "/") + "/w/api.php"
}

// Namespaces returns the wiki's namespaces. The virtual Special namespace
// (-1) is dropped since no edit can be made there.
func (c *Client) Namespaces(ctx context.Context, api string) (contribs.Namespaces, error) {
	params := url.Values{}
	params.Set("meta", "siteinfo")
	params.Set("siprop", "namespaces")

	result := make(contribs.Namespaces)
	err := c.query(ctx, api, params, func(q json.RawMessage) error {
		var page struct {
			Namespaces map[string]struct {
				ID      int    `json:"id"`
				Name    string `json:"name"`
				Content bool   `json:"content"`
			} `json:"namespaces"`
		}
		if err := json.Unmarshal(q, &page); err != nil {
			return fmt.Errorf("decoding namespaces: %w", err)
		}
		for _, ns := range page.Namespaces {
			if ns.ID == -1 {
				continue
			}
			result[ns.ID] = contribs.Namespace{ID: ns.ID, Name: ns.Name, Content: ns.Content}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching namespaces: %w", err)
	}
	return result, nil
}

type rawContrib struct {
	RevID     int64    `json:"revid"`
	NS        int      `json:"ns"`
	Title     string   `json:"title"`
	Timestamp string   `json:"timestamp"`
	Comment   string   `json:"comment"`
	SizeDiff  int      `json:"sizediff"`
	Tags      []string `json:"tags"`
}

type rawUser struct {
	Name             string `json:"name"`
	Missing          bool   `json:"missing"`
	EditCount        *int   `json:"editcount"`
	BlockID          int64  `json:"blockid"`
	BlockedBy        string `json:"blockedby"`
	BlockReason      string `json:"blockreason"`
	BlockExpiry      string `json:"blockexpiry"`
	BlockedTimestamp string `json:"blockedtimestamp"`
}

// Contribs fetches every live edit of user in ascending timestamp order,
// together with the account's total edit count and block status. Edits
// with unparsable timestamps are logged and skipped.
func (c *Client) Contribs(ctx context.Context, api, user string) (contribs.List, UserInfo, error) {
	params := url.Values{}
	params.Set("list", "usercontribs|users")
	params.Set("ucuser", user)
	params.Set("ucprop", "ids|title|timestamp|comment|sizediff|tags")
	params.Set("uclimit", "max")
	params.Set("ucdir", "newer")
	params.Set("ususers", user)
	params.Set("usprop", "editcount|blockinfo")

	edits := contribs.List{}
	info := UserInfo{Name: user}
	missing := false

	err := c.query(ctx, api, params, func(q json.RawMessage) error {
		var page struct {
			UserContribs []rawContrib `json:"usercontribs"`
			Users        []rawUser    `json:"users"`
		}
		if err := json.Unmarshal(q, &page); err != nil {
			return fmt.Errorf("decoding contributions: %w", err)
		}
		for _, u := range page.Users {
			if u.Missing {
				missing = true
				continue
			}
			info = userInfo(u)
		}
		for _, rc := range page.UserContribs {
			ts, err := time.Parse(time.RFC3339, rc.Timestamp)
			if err != nil {
				log.Printf("WARNING: skipping revision %d: bad timestamp %q", rc.RevID, rc.Timestamp)
				continue
			}
			tags := rc.Tags
			if tags == nil {
				tags = []string{}
			}
			edits = append(edits, contribs.Edit{
				RevID:     rc.RevID,
				Namespace: rc.NS,
				Title:     rc.Title,
				Timestamp: ts.UTC(),
				Comment:   rc.Comment,
				SizeDiff:  rc.SizeDiff,
				Tags:      tags,
			})
		}
		return nil
	})
	if err != nil {
		return nil, UserInfo{}, fmt.Errorf("fetching contributions: %w", err)
	}
	if missing && len(edits) == 0 {
		return nil, UserInfo{}, fmt.Errorf("%w: %s", ErrNoSuchUser, user)
	}
	return edits, info, nil
}

func userInfo(u rawUser) UserInfo {
	info := UserInfo{Name: u.Name}
	if u.EditCount != nil {
		info.EditCount = *u.EditCount
		info.HasEditCount = true
	}
	if u.BlockID != 0 {
		b := &Block{
			ID:     u.BlockID,
			By:     u.BlockedBy,
			Reason: u.BlockReason,
			Expiry: u.BlockExpiry,
		}
		if ts, err := time.Parse(time.RFC3339, u.BlockedTimestamp); err == nil {
			b.Since = ts.UTC()
		}
		info.Block = b
	}
	return info
}

// Uploads counts the files uploaded by user.
func (c *Client) Uploads(ctx context.Context, api, user string) (int, error) {
	params := url.Values{}
	params.Set("list", "allimages")
	params.Set("aiuser", user)
	params.Set("aisort", "timestamp")
	params.Set("aiprop", "")
	params.Set("ailimit", "max")

	count := 0
	err := c.query(ctx, api, params, func(q json.RawMessage) error {
		var page struct {
			AllImages []json.RawMessage `json:"allimages"`
		}
		if err := json.Unmarshal(q, &page); err != nil {
			return fmt.Errorf("decoding uploads: %w", err)
		}
		count += len(page.AllImages)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("fetching uploads: %w", err)
	}
	return count, nil
}

// RightsLog returns the user-group changes applied to user, oldest first.
// Entries predating structured log parameters are skipped.
func (c *Client) RightsLog(ctx context.Context, api, user string) ([]RightsChange, error) {
	params := url.Values{}
	params.Set("list", "logevents")
	params.Set("letype", "rights")
	params.Set("letitle", "User:"+user)
	params.Set("ledir", "newer")
	params.Set("lelimit", "max")

	var changes []RightsChange
	err := c.query(ctx, api, params, func(q json.RawMessage) error {
		var page struct {
			LogEvents []struct {
				User      string `json:"user"`
				Timestamp string `json:"timestamp"`
				Comment   string `json:"comment"`
				Params    *struct {
					OldGroups []string `json:"oldgroups"`
					NewGroups []string `json:"newgroups"`
				} `json:"params"`
			} `json:"logevents"`
		}
		if err := json.Unmarshal(q, &page); err != nil {
			return fmt.Errorf("decoding rights log: %w", err)
		}
		for _, ev := range page.LogEvents {
			if ev.Params == nil || (ev.Params.OldGroups == nil && ev.Params.NewGroups == nil) {
				continue
			}
			ts, err := time.Parse(time.RFC3339, ev.Timestamp)
			if err != nil {
				log.Printf("WARNING: skipping rights log entry: bad timestamp %q", ev.Timestamp)
				continue
			}
			changes = append(changes, RightsChange{
				Timestamp: ts.UTC(),
				Performer: ev.User,
				Comment:   ev.Comment,
				Old:       ev.Params.OldGroups,
				New:       ev.Params.NewGroups,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching rights log: %w", err)
	}
	return changes, nil
}

// Coordinates looks up the coordinates of titles, CoordinateBatch titles
// per request. Pages without coordinates are absent from the result.
func (c *Client) Coordinates(ctx context.Context, api string, titles []string) (map[string][]Coordinate, error) {
	result := make(map[string][]Coordinate)

	for start := 0; start < len(titles); start += CoordinateBatch {
		end := min(start+CoordinateBatch, len(titles))

		params := url.Values{}
		params.Set("prop", "coordinates")
		params.Set("colimit", "max")
		params.Set("titles", strings.Join(titles[start:end], "|"))

		err := c.query(ctx, api, params, func(q json.RawMessage) error {
			var page struct {
				Pages []struct {
					Title       string       `json:"title"`
					Coordinates []Coordinate `json:"coordinates"`
				} `json:"pages"`
			}
			if err := json.Unmarshal(q, &page); err != nil {
				return fmt.Errorf("decoding coordinates: %w", err)
			}
			for _, p := range page.Pages {
				if len(p.Coordinates) > 0 {
					result[p.Title] = append(result[p.Title], p.Coordinates...)
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("fetching coordinates (batch %d): %w", start/CoordinateBatch+1, err)
		}
	}
	return result, nil
}

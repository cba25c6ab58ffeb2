package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/nixlim/wiki-top/internal/config"
)

// maxResponseBytes bounds a single API page.
const maxResponseBytes = 32 << 20

// Client talks to MediaWiki action APIs. Every request waits on a shared
// rate limiter and carries the configured User-Agent.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	metaAPI   string
	logger    Logger
}

// ClientOption configures optional Client dependencies.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the debug logger for API traffic.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg config.WikiConfig, opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		userAgent: cfg.UserAgent,
		metaAPI:   cfg.MetaAPI,
		logger:    NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is an action=query page: the payload plus the continuation
// parameters for the next page.
type envelope struct {
	Continue map[string]json.RawMessage `json:"continue"`
	Query    json.RawMessage            `json:"query"`
}

// get performs one GET request and returns the raw body. API-level errors
// in the body are returned as *APIError.
func (c *Client) get(ctx context.Context, api string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(api)
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("format", "json")
	q.Set("formatversion", "2")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.LogRequest(api, q)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", api, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.logger.LogResponse(api, resp.StatusCode, len(body), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", api, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d", api, resp.StatusCode)
	}

	var status struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", api, err)
	}
	if status.Error != nil {
		return nil, status.Error
	}
	return body, nil
}

// query runs an action=query request and follows continuation until the
// API stops returning a continue object. fn is called once per page with
// the page's query payload.
func (c *Client) query(ctx context.Context, api string, params url.Values, fn func(json.RawMessage) error) error {
	params.Set("action", "query")
	for {
		body, err := c.get(ctx, api, params)
		if err != nil {
			return err
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("decoding query page: %w", err)
		}
		if len(env.Query) > 0 {
			if err := fn(env.Query); err != nil {
				return err
			}
		}
		if len(env.Continue) == 0 {
			return nil
		}
		for k, raw := range env.Continue {
			params.Set(k, continueValue(raw))
		}
	}
}

func continueValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

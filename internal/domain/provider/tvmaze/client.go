package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"showcatalog/internal/domain"
	"showcatalog/internal/service"
)

const (
	ID = "tvmaze"

	DefaultBaseURL = "https://api.tvmaze.com"
	DefaultTimeout = 30 * time.Second

	showsPath  = "/shows"
	searchPath = "/search/shows"
	healthPath = "/shows/1"

	userAgent = "showcatalog/1.0"
)

type tvmazeClient struct {
	client  *http.Client
	baseURL string
}

// Option configures the TVMaze client.
type Option func(*tvmazeClient)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *tvmazeClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *tvmazeClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *tvmazeClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a provider backed by the public TVMaze API. Requests are
// never retried; a failure surfaces to the caller immediately.
func NewClient(opts ...Option) service.Provider {
	c := &tvmazeClient{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *tvmazeClient) logger() *zerolog.Logger {
	l := log.Logger.With().Str("module", "tvmaze").Logger()
	return &l
}

// ID returns the unique identifier for this provider.
func (c *tvmazeClient) ID() string {
	return ID
}

// FetchAll returns the first page of the show index.
func (c *tvmazeClient) FetchAll(ctx context.Context) ([]domain.RawShow, error) {
	var shows []domain.RawShow
	if err := c.getJSON(ctx, showsPath, url.Values{"page": {"0"}}, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

// Search queries the search endpoint and drops the relevance scores.
func (c *tvmazeClient) Search(ctx context.Context, query string) ([]domain.RawShow, error) {
	var hits []searchHit
	if err := c.getJSON(ctx, searchPath, url.Values{"q": {query}}, &hits); err != nil {
		return nil, err
	}
	return unwrapHits(hits), nil
}

// Ping fetches a single well-known show.
func (c *tvmazeClient) Ping(ctx context.Context) error {
	return c.getJSON(ctx, healthPath, nil, nil)
}

func (c *tvmazeClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.upstreamError(path, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger().Warn().Err(err).Str("path", path).Msg("upstream request failed")
		return c.upstreamError(path, 0, err)
	}
	defer resp.Body.Close()

	c.logger().Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return c.upstreamError(path, resp.StatusCode, nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.upstreamError(path, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *tvmazeClient) upstreamError(path string, status int, err error) *service.UpstreamError {
	return &service.UpstreamError{
		Provider:   ID,
		Endpoint:   path,
		StatusCode: status,
		Err:        err,
	}
}

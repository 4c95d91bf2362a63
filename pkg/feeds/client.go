// Package feeds provides the shared plumbing for feed adapters: the
// HTTP JSON client with caching and retries, the wire schema for feed
// metadata documents, and the sentinel errors adapters translate into
// gather error codes.
//
// The adapters themselves live in subpackages ([remote], [local]); the
// capability wiring that matches a [feed.Source] to its adapter lives in
// the registry subpackage.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkgfed/pkgfed/pkg/cache"
	"github.com/pkgfed/pkgfed/pkg/httputil"
	"github.com/pkgfed/pkgfed/pkg/observability"
)

const httpTimeout = 10 * time.Second

// DefaultCacheTTL is how long feed responses stay cached.
const DefaultCacheTTL = 30 * time.Minute

// Client provides shared HTTP functionality for feed adapters.
// It handles caching, retry logic, and common request headers.
// Safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client with the given cache backend and default
// headers. Headers are applied to all requests made through this client;
// pass nil if none are needed.
func NewClient(backend cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   backend,
		ttl:     ttl,
		headers: headers,
	}
}

// GetJSON performs a cached HTTP GET and JSON-decodes the response into v.
// The fetch retries transient failures with backoff; a fresh result is
// written back to the cache.
func (c *Client) GetJSON(ctx context.Context, cacheKey, rawURL string, v any) error {
	if data, ok, _ := c.cache.Get(ctx, cacheKey); ok {
		observability.Cache().OnCacheHit(ctx, "feed")
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		}
		// A corrupt entry falls through to a fresh fetch.
	}
	observability.Cache().OnCacheMiss(ctx, "feed")

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var ferr error
		body, ferr = c.fetch(ctx, rawURL)
		return ferr
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, rawURL, err)
	}

	if err := c.cache.Set(ctx, cacheKey, body, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "feed", len(body))
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	u, _ := url.Parse(rawURL)
	host, path := "", rawURL
	if u != nil {
		host, path = u.Host, u.Path
	}
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return buf, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

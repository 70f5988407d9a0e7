// Package httpx wraps net/http with the concerns every supplier adapter
// shares: context-aware requests, a per-query request budget, transparent
// response caching, and decoding helpers for the three supplier payload
// shapes (JSON, GraphQL-over-POST, and HTML).
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

const defaultUserAgent = "chem-crawler/1.0"

// Client is a shared, concurrency-safe HTTP client.  Per-query state (the
// request budget) is passed per call, never stored.
type Client struct {
	http      *http.Client
	logger    logging.Logger
	store     cache.Store
	cacheTTL  time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the underlying transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCache enables transparent response caching with the given TTL.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.store = store
		c.cacheTTL = ttl
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTransport swaps the underlying http.Client, mainly for tests.
func WithTransport(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a Client with a 30s timeout and no cache.
func NewClient(log logging.Logger, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    log,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is the normalized result of one fetch: status, headers, the full
// body, and whether it was served from cache.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	FromCache  bool
}

// Do executes the request, consulting the cache first when one is
// configured.  Budget is only consumed for requests that actually go to the
// network.  Non-2xx statuses are returned as values, not errors; callers
// decide what a 404 means for their supplier.
func (c *Client) Do(ctx context.Context, req *http.Request, budget *Budget) (*Response, error) {
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var key cache.RequestKey
	if c.store != nil {
		var err error
		key, err = cache.KeyForRequest(req)
		if err != nil {
			return nil, err
		}
		var snap cache.CachableResponse
		if err := c.store.Get(ctx, key.Hash, &snap); err == nil {
			c.logger.Debug("cache hit", logging.String("url", key.URL))
			return &Response{
				StatusCode: snap.StatusCode,
				Headers:    snap.Headers,
				Body:       snap.Body,
				FromCache:  true,
			}, nil
		}
	}

	if err := budget.Acquire(); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeTimeout, "request canceled")
		}
		return nil, errors.Wrap(err, errors.CodeSupplierUnavailable, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBadResponse, "failed to read response body")
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	if c.store != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		snap := cache.CachableResponse{
			Key:        key,
			StatusCode: resp.StatusCode,
			Headers:    headers,
			Body:       body,
			FetchedAt:  time.Now().UTC(),
		}
		if err := c.store.Set(ctx, key.Hash, &snap, c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache response", logging.String("url", key.URL), logging.Err(err))
		}
	}

	return &Response{StatusCode: resp.StatusCode, Headers: headers, Body: body}, nil
}

// GetJSON fetches rawURL with optional query params and decodes the JSON
// body into dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, budget *Budget, dest interface{}) error {
	resp, err := c.get(ctx, rawURL, params, budget)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.CodeBadResponse, "unexpected status").WithDetail(http.StatusText(resp.StatusCode))
	}
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return errors.Wrap(err, errors.CodeBadResponse, "failed to decode JSON response")
	}
	return nil
}

// PostJSON posts payload as JSON and decodes the JSON body into dest.
// GraphQL suppliers use this with their query envelope as the payload.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload interface{}, budget *Budget, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode request payload")
	}
	req, err := http.NewRequest(http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(ctx, req, budget)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.CodeBadResponse, "unexpected status").WithDetail(http.StatusText(resp.StatusCode))
	}
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return errors.Wrap(err, errors.CodeBadResponse, "failed to decode JSON response")
	}
	return nil
}

// GetHTML fetches rawURL and parses the body into a goquery document.
func (c *Client) GetHTML(ctx context.Context, rawURL string, params url.Values, budget *Budget) (*goquery.Document, error) {
	resp, err := c.get(ctx, rawURL, params, budget)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeBadResponse, "unexpected status").WithDetail(http.StatusText(resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBadResponse, "failed to parse HTML response")
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, budget *Budget) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "invalid url")
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to build request")
	}
	return c.Do(ctx, req, budget)
}

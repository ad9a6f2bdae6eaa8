// Package apiclient is the single entry point to the content API.
//
// Every request carries the current bearer token, read from the token
// source at request construction. Reads are cached per query key together
// with the tags they provide; writes invalidate tag families once they
// succeed, so the next read after a mutation always refetches.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bryan-buckman/pressroom/internal/apierr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenSource yields the current bearer token, "" when logged out.
type TokenSource interface {
	Token() string
}

// Client talks to the content API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
	clock   clock.Clock
	ttl     time.Duration
	cache   *tagCache
	flight  singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource attaches the auth token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the clock that ages cached reads.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithCacheTTL sets how long a read stays cached without an invalidating
// write. Zero or less keeps reads until a write invalidates them.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.ttl = d }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zap.NewNop(),
		clock:   clock.New(),
		ttl:     DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = newTagCache(c.clock, c.ttl)
	return c
}

// Invalidate drops every cached read providing one of tags. With no tags it
// drops every cached read.
func (c *Client) Invalidate(tags ...Tag) {
	if len(tags) == 0 {
		tags = []Tag{{Type: TagPost}, {Type: TagCategory}, {Type: TagContact}, {Type: TagNewsletter}, {Type: TagComment}}
	}
	c.cache.invalidate(tags...)
}

// Get issues an uncached GET and decodes the payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	data, err := c.send(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return err
	}
	return decode(data, out)
}

// request is a prepared API call. body is JSON encoded; raw is sent as is
// with contentType.
type request struct {
	method      string
	path        string
	body        any
	raw         io.Reader
	contentType string
}

// send performs the request and returns the unwrapped payload.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	var body io.Reader
	contentType := "application/json"
	switch {
	case req.raw != nil:
		body, contentType = req.raw, req.contentType
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", req.method), zap.String("path", req.path),
			zap.String("request_id", requestID), zap.Error(err))
		return nil, &apierr.Error{Kind: apierr.KindFetch, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindFetch, Status: resp.StatusCode, Err: err}
	}
	c.log.Debug("api request",
		zap.String("method", req.method), zap.String("path", req.path),
		zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apierr.Error{Kind: apierr.KindHTTP, Status: resp.StatusCode, Body: data}
	}
	return unwrap(resp.StatusCode, data)
}

// unwrap strips the {success, data, message} envelope when present. A
// success:false body is a domain failure even on a 2xx status.
func unwrap(status int, body []byte) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, &apierr.Error{Kind: apierr.KindParse, Status: status, Body: body, Err: errors.New("response is not valid JSON")}
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return body, nil
	}
	success := res.Get("success")
	if !success.Exists() {
		return body, nil
	}
	if success.Type == gjson.False {
		return nil, &apierr.Error{Kind: apierr.KindHTTP, Status: status, Body: body}
	}
	if data := res.Get("data"); data.Exists() {
		return []byte(data.Raw), nil
	}
	return nil, nil
}

func decode(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apierr.Error{Kind: apierr.KindParse, Body: data, Err: err}
	}
	return nil
}

// query performs a cached read. Concurrent reads of the same key are
// collapsed into one request; a read that started before an invalidation
// does not repopulate the cache. The shared request outlives the caller that
// started it, and each caller stops waiting when its own ctx is done.
func (c *Client) query(ctx context.Context, ep endpoint, params any, out any, args ...string) error {
	path, err := ep.url(params, args...)
	if err != nil {
		return err
	}
	if !ep.cached() {
		return c.Get(ctx, path, out)
	}

	key := ep.method + " " + path
	if data, ok := c.cache.get(key); ok {
		return decode(data, out)
	}

	gen := c.cache.generation()
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		if data, ok := c.cache.get(key); ok {
			return data, nil
		}
		data, err := c.send(shared, request{method: ep.method, path: path})
		if err != nil {
			return nil, err
		}
		c.cache.put(key, data, ep.providedTags(args...), gen)
		return data, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return decode(res.Val.([]byte), out)
	case <-ctx.Done():
		return &apierr.Error{Kind: apierr.KindFetch, Err: ctx.Err()}
	}
}

// mutate performs a write and invalidates the endpoint's tags on success.
func (c *Client) mutate(ctx context.Context, ep endpoint, body any, out any, args ...string) error {
	path, err := ep.url(nil, args...)
	if err != nil {
		return err
	}
	data, err := c.send(ctx, request{method: ep.method, path: path, body: body})
	if err != nil {
		return err
	}
	c.cache.invalidate(ep.invalidatedTags(args...)...)
	return decode(data, out)
}

// encodeQuery renders the non-empty fields of params as a query string.
func encodeQuery(params any) (string, error) {
	if params == nil {
		return "", nil
	}
	v, err := query.Values(params)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	if len(v) == 0 {
		return "", nil
	}
	return "?" + v.Encode(), nil
}

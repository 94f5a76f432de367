package httputil

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/stackpin/pkg/buildinfo"
	"github.com/matzehuels/stackpin/pkg/observability"
)

const (
	// DefaultAttempts is the total number of tries for a retryable request.
	DefaultAttempts = 3

	// DefaultBackoff is the linear backoff unit between retries.
	DefaultBackoff = 500 * time.Millisecond
)

// Request holds per-call settings.
type Request struct {
	Method  string            // GET when empty
	Timeout time.Duration     // applied to each attempt; zero means no deadline
	Headers map[string]string // merged over the client defaults
}

// Client issues GET and HEAD requests with default headers and retry.
// A Client is safe for concurrent use.
type Client struct {
	http            *http.Client
	headers         map[string]string
	attempts        int
	backoff         time.Duration
	followRedirects bool
}

// Option configures a [Client].
type Option func(*Client)

// WithHeaders adds default headers. Keys already present are replaced.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { maps.Copy(c.headers, h) }
}

// WithRetries sets the total attempt budget. Values below 1 mean one attempt.
func WithRetries(attempts int) Option {
	return func(c *Client) { c.attempts = max(attempts, 1) }
}

// WithBackoff sets the linear backoff unit. Negative values mean no wait.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = max(d, 0) }
}

// WithHTTPClient uses hc as the underlying client. hc is copied, never mutated.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithFollowRedirects controls whether 3xx responses are followed.
// When false, a redirect is returned as a [*StatusError].
func WithFollowRedirects(follow bool) Option {
	return func(c *Client) { c.followRedirects = follow }
}

// NewClient creates a Client. The default header set carries the stackpin
// User-Agent.
func NewClient(opts ...Option) *Client {
	c := &Client{
		headers:         map[string]string{"User-Agent": buildinfo.UserAgent()},
		attempts:        DefaultAttempts,
		backoff:         DefaultBackoff,
		followRedirects: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = buildHTTPClient(c.http, c.followRedirects)
	return c
}

// NoRedirects returns a copy of c that surfaces redirects as errors.
func (c *Client) NoRedirects() *Client {
	cp := *c
	cp.headers = maps.Clone(c.headers)
	cp.followRedirects = false
	cp.http = buildHTTPClient(c.http, false)
	return &cp
}

// Headers returns a copy of the default headers.
func (c *Client) Headers() map[string]string { return maps.Clone(c.headers) }

func buildHTTPClient(base *http.Client, follow bool) *http.Client {
	var hc http.Client
	if base != nil {
		hc = *base
	}
	if !follow {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &hc
}

// FetchBody performs the request and returns the response body.
func (c *Client) FetchBody(ctx context.Context, url string, r Request) ([]byte, error) {
	return c.do(ctx, url, r, true)
}

// Head performs a HEAD request and discards the response body.
func (c *Client) Head(ctx context.Context, url string, r Request) error {
	r.Method = http.MethodHead
	_, err := c.do(ctx, url, r, false)
	return err
}

// GetJSON performs a GET and JSON-decodes the body into v.
// Bodies that are not valid UTF-8 or not valid JSON are returned as
// [*DecodeError].
func (c *Client) GetJSON(ctx context.Context, url string, r Request, v any) error {
	data, err := c.FetchBody(ctx, url, r)
	if err != nil {
		return err
	}
	if !utf8.Valid(data) {
		return &DecodeError{URL: url, Err: errInvalidUTF8}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

// GetText performs a GET and returns the body as a string.
// Bodies that are not valid UTF-8 are returned as [*DecodeError].
func (c *Client) GetText(ctx context.Context, url string, r Request) (string, error) {
	data, err := c.FetchBody(ctx, url, r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", &DecodeError{URL: url, Err: errInvalidUTF8}
	}
	return string(data), nil
}

func (c *Client) do(ctx context.Context, url string, r Request, read bool) ([]byte, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}

	var body []byte
	var host, path string
	err := RetryNotify(ctx, c.attempts, c.backoff, func() error {
		data, h, p, err := c.attempt(ctx, url, r, read)
		host, path = h, p
		body = data
		return err
	}, func(attempt int, delay time.Duration) {
		observability.HTTP().OnRetry(ctx, r.Method, host, path, attempt, delay)
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) attempt(parent context.Context, url string, r Request, read bool) ([]byte, string, string, error) {
	ctx := parent
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, url, nil)
	if err != nil {
		return nil, "", "", err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, r.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, r.Method, host, path, err)
		netErr := &NetworkError{Method: r.Method, URL: url, Err: err}
		if parent.Err() != nil {
			return nil, host, path, netErr
		}
		return nil, host, path, &RetryableError{Err: netErr}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, r.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(r.Method, url, resp); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, host, path, err
	}
	if !read {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, host, path, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Method: r.Method, URL: url, Err: err}
		if parent.Err() != nil {
			return nil, host, path, netErr
		}
		return nil, host, path, &RetryableError{Err: netErr}
	}
	return data, host, path, nil
}

func checkStatus(method, url string, resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	err := &StatusError{Method: method, URL: url, StatusCode: code, Header: resp.Header.Clone()}
	if code >= 500 {
		return &RetryableError{Err: err}
	}
	return err
}

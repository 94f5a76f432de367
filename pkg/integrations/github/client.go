package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/stackpin/pkg/httputil"
)

// DefaultWebURL is the GitHub web root used for release redirects.
const DefaultWebURL = "https://github.com"

var (
	// ErrNoRedirect is returned when the latest-release request completes
	// without redirecting.
	ErrNoRedirect = errors.New("request completed without a redirect")

	// ErrMissingLocation is returned when GitHub redirects without a
	// Location header.
	ErrMissingLocation = errors.New("redirect without Location header")
)

// Redirect is the terminal response of a latest-release request.
type Redirect struct {
	StatusCode int
	Location   string
}

// Client provides access to GitHub release redirects and raw files.
type Client struct {
	http       *httputil.Client
	noRedirect *httputil.Client
	webURL     string
}

// Option configures a [Client].
type Option func(*Client)

// WithWebURL points the client at a GitHub Enterprise host or test server.
func WithWebURL(u string) Option {
	return func(c *Client) { c.webURL = strings.TrimSuffix(u, "/") }
}

// NewClient creates a GitHub client on top of the shared transport.
// Release discovery uses a redirect-suppressing copy of http.
func NewClient(http *httputil.Client, opts ...Option) *Client {
	c := &Client{
		http:       http,
		noRedirect: http.NoRedirects(),
		webURL:     DefaultWebURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestReleaseURL returns the web URL that redirects to the latest release.
func (c *Client) LatestReleaseURL(owner, repo string) string {
	return fmt.Sprintf("%s/%s/%s/releases/latest", c.webURL, owner, repo)
}

// LatestRelease issues a HEAD to the latest-release URL without following
// redirects.
//
// Returns:
//   - the redirect when the response is 301, 302, 303, 307 or 308 with a Location
//   - [ErrMissingLocation] for a redirect without Location
//   - [ErrNoRedirect] for a successful response
//   - the transport error unchanged otherwise
func (c *Client) LatestRelease(ctx context.Context, owner, repo string, timeout time.Duration) (*Redirect, error) {
	err := c.noRedirect.Head(ctx, c.LatestReleaseURL(owner, repo), httputil.Request{Timeout: timeout})
	if err == nil {
		return nil, ErrNoRedirect
	}

	var se *httputil.StatusError
	if !errors.As(err, &se) || !httputil.IsRedirect(se.StatusCode) {
		return nil, err
	}
	loc := se.Location()
	if loc == "" {
		return nil, ErrMissingLocation
	}
	return &Redirect{StatusCode: se.StatusCode, Location: loc}, nil
}

// RawFile fetches url and returns its body as text.
func (c *Client) RawFile(ctx context.Context, url string, timeout time.Duration) (string, error) {
	return c.http.GetText(ctx, url, httputil.Request{Timeout: timeout})
}

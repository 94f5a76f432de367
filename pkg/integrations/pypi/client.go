package pypi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/stackpin/pkg/httputil"
	"github.com/matzehuels/stackpin/pkg/integrations"
)

// DefaultBaseURL is the PyPI JSON API root.
const DefaultBaseURL = "https://pypi.org/pypi"

// Metadata holds the release metadata of a Python package.
// Version is the latest release as reported by PyPI and may be empty when
// the document omits it.
type Metadata struct {
	Name           string
	Version        string
	Summary        string
	RequiresPython string
}

// Client provides access to the PyPI JSON API.
// All methods are safe for concurrent use.
type Client struct {
	http    *httputil.Client
	baseURL string
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at a PyPI mirror or test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// NewClient creates a PyPI client on top of the shared transport.
func NewClient(http *httputil.Client, opts ...Option) *Client {
	c := &Client{http: http, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MetadataURL returns the JSON metadata URL for pkg.
func (c *Client) MetadataURL(pkg string) string {
	return fmt.Sprintf("%s/%s/json", c.baseURL, integrations.NormalizePkgName(pkg))
}

// FetchMetadata retrieves the metadata document for pkg.
// timeout applies to each attempt.
func (c *Client) FetchMetadata(ctx context.Context, pkg string, timeout time.Duration) (*Metadata, error) {
	var data apiResponse
	if err := c.http.GetJSON(ctx, c.MetadataURL(pkg), httputil.Request{Timeout: timeout}, &data); err != nil {
		return nil, err
	}
	return &Metadata{
		Name:           data.Info.Name,
		Version:        strings.TrimSpace(data.Info.Version),
		Summary:        data.Info.Summary,
		RequiresPython: data.Info.RequiresPython,
	}, nil
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	Summary        string `json:"summary"`
	RequiresPython string `json:"requires_python"`
}

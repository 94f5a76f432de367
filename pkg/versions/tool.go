package versions

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/stackpin/pkg/httputil"
	"github.com/matzehuels/stackpin/pkg/integrations/github"
)

// ToolResolver resolves the latest GitHub release of a build tool from the
// redirect issued by /releases/latest.
type ToolResolver struct {
	Client   *github.Client
	Owner    string
	Repo     string
	Name     string // used in messages; defaults to Repo
	Timeout  time.Duration
	Explicit string
}

// Resolve returns the override when set, otherwise the tag named by the
// latest-release redirect. A response that does not redirect is a failure.
func (r *ToolResolver) Resolve(ctx context.Context) (string, error) {
	return observe(ctx, SourceTool, func() (string, bool, error) {
		if v, ok := Override(r.Explicit); ok {
			return v, true, nil
		}
		v, err := r.discover(ctx)
		return v, false, err
	})
}

func (r *ToolResolver) discover(ctx context.Context) (string, error) {
	name := displayName(r.Name, r.Repo)

	redirect, err := r.Client.LatestRelease(ctx, r.Owner, r.Repo, r.Timeout)
	if err != nil {
		var se *httputil.StatusError
		switch {
		case errors.Is(err, github.ErrMissingLocation):
			return "", failf(SourceTool, err, "GitHub redirected for the latest %s release but did not provide a Location header.", name)
		case errors.Is(err, github.ErrNoRedirect):
			return "", failf(SourceTool, err, "Expected GitHub to redirect for the latest %s release, but the request completed without a redirect.", name)
		case errors.As(err, &se):
			return "", failf(SourceTool, err, "Unexpected response retrieving latest %s release: HTTP %d", name, se.StatusCode)
		default:
			return "", failf(SourceTool, err, "Unable to discover the latest %s release: %v", name, err)
		}
	}

	tag, ok := github.TagFromLocation(redirect.Location)
	if !ok {
		return "", failf(SourceTool, nil, "Failed to extract the %s release version from redirect Location header.", name)
	}
	return tag, nil
}

package versions

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/stackpin/pkg/integrations/github"
)

// InterpreterResolver resolves the Python version pinned by a package
// release, read from a file in the package repository at the release tag.
type InterpreterResolver struct {
	Client      *github.Client
	URLTemplate string // must contain {tag}
	DisplayName string // package name used in messages
	Timeout     time.Duration
	Explicit    string
}

// Resolve returns the override when set. Otherwise it needs packageVersion
// to locate the pin file and returns its trimmed content.
func (r *InterpreterResolver) Resolve(ctx context.Context, packageVersion string) (string, error) {
	return observe(ctx, SourceInterpreter, func() (string, bool, error) {
		if v, ok := Override(r.Explicit); ok {
			return v, true, nil
		}
		v, err := r.discover(ctx, strings.TrimSpace(packageVersion))
		return v, false, err
	})
}

func (r *InterpreterResolver) discover(ctx context.Context, packageVersion string) (string, error) {
	name := displayName(r.DisplayName, "package")
	if packageVersion == "" {
		return "", failf(SourceInterpreter, nil, "Cannot determine Python version because the %s version is unset.", name)
	}

	url := github.ExpandTemplate(r.URLTemplate, packageVersion)
	content, err := r.Client.RawFile(ctx, url, r.Timeout)
	if err != nil {
		return "", fetchFailure(SourceInterpreter, url, "text", err)
	}

	version := strings.TrimSpace(content)
	if version == "" {
		return "", failf(SourceInterpreter, nil, "The %s file for %s %s was empty or whitespace-only.",
			github.PinFileName(r.URLTemplate), name, packageVersion)
	}
	return version, nil
}

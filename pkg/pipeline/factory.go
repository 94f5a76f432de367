package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stackpin/pkg/errors"
	"github.com/matzehuels/stackpin/pkg/httputil"
	"github.com/matzehuels/stackpin/pkg/integrations/github"
	"github.com/matzehuels/stackpin/pkg/integrations/pypi"
	"github.com/matzehuels/stackpin/pkg/versions"
)

// PackageResolver resolves the package version.
type PackageResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ToolResolver resolves the build tool version.
type ToolResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// InterpreterResolver resolves the interpreter version for a package version.
type InterpreterResolver interface {
	Resolve(ctx context.Context, packageVersion string) (string, error)
}

// Resolvers is the set used by one run.
type Resolvers struct {
	Package     PackageResolver
	Tool        ToolResolver
	Interpreter InterpreterResolver
}

// ResolverFactory builds the resolvers of one run from the shared transport,
// the normalized timeout and the (defaulted) options.
type ResolverFactory interface {
	Build(client *httputil.Client, timeout time.Duration, opts Options) (Resolvers, error)
}

// DefaultFactory builds the PyPI and GitHub backed resolvers.
// Empty URLs select the public services.
type DefaultFactory struct {
	PyPIBaseURL  string
	GitHubWebURL string
}

func (f DefaultFactory) Build(client *httputil.Client, timeout time.Duration, opts Options) (Resolvers, error) {
	t := opts.Target
	owner, repo, err := github.ParseRepoRef(t.ToolRepo)
	if err != nil {
		return Resolvers{}, err
	}

	var pypiOpts []pypi.Option
	if f.PyPIBaseURL != "" {
		if err := errors.ValidateURL(f.PyPIBaseURL); err != nil {
			return Resolvers{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "pypi base URL")
		}
		pypiOpts = append(pypiOpts, pypi.WithBaseURL(f.PyPIBaseURL))
	}
	var ghOpts []github.Option
	if f.GitHubWebURL != "" {
		if err := errors.ValidateURL(f.GitHubWebURL); err != nil {
			return Resolvers{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "github web URL")
		}
		ghOpts = append(ghOpts, github.WithWebURL(f.GitHubWebURL))
	}
	gh := github.NewClient(client, ghOpts...)

	return Resolvers{
		Package: &versions.PackageResolver{
			Client:      pypi.NewClient(client, pypiOpts...),
			Package:     t.Package,
			DisplayName: t.DisplayName,
			Timeout:     timeout,
			Explicit:    opts.PackageVersion,
		},
		Tool: &versions.ToolResolver{
			Client:   gh,
			Owner:    owner,
			Repo:     repo,
			Name:     t.ToolName,
			Timeout:  timeout,
			Explicit: opts.ToolVersion,
		},
		Interpreter: &versions.InterpreterResolver{
			Client:      gh,
			URLTemplate: t.PinURLTemplate,
			DisplayName: t.DisplayName,
			Timeout:     timeout,
			Explicit:    opts.InterpreterVersion,
		},
	}, nil
}

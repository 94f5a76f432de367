package versions

import (
	"context"
	"time"

	"github.com/matzehuels/stackpin/pkg/integrations/pypi"
)

// PackageResolver resolves the latest release of a PyPI package.
type PackageResolver struct {
	Client      *pypi.Client
	Package     string        // PyPI project name, e.g. "aipscan"
	DisplayName string        // used in messages; defaults to Package
	Timeout     time.Duration // per request
	Explicit    string        // override; blank means discover
}

// Resolve returns the override when set, otherwise info.version from the
// package's PyPI JSON document.
func (r *PackageResolver) Resolve(ctx context.Context) (string, error) {
	return observe(ctx, SourcePackage, func() (string, bool, error) {
		if v, ok := Override(r.Explicit); ok {
			return v, true, nil
		}
		v, err := r.discover(ctx)
		return v, false, err
	})
}

func (r *PackageResolver) discover(ctx context.Context) (string, error) {
	url := r.Client.MetadataURL(r.Package)
	meta, err := r.Client.FetchMetadata(ctx, r.Package, r.Timeout)
	if err != nil {
		return "", fetchFailure(SourcePackage, url, "JSON", err)
	}
	if meta.Version == "" {
		return "", failf(SourcePackage, nil, "PyPI metadata for %s did not include a version field.", displayName(r.DisplayName, r.Package))
	}
	return meta.Version, nil
}

func displayName(display, fallback string) string {
	if display != "" {
		return display
	}
	return fallback
}

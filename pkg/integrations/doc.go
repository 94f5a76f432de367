// Package integrations provides HTTP clients for the upstream sources that
// versions are discovered from.
//
// # Overview
//
// Each source has its own subpackage:
//
//   - [pypi]: Python Package Index JSON metadata
//   - [github]: GitHub release redirects and raw repository files
//
// # Client Pattern
//
// Clients wrap a shared [httputil.Client], which owns default headers,
// retry and redirect policy:
//
//	http := httputil.NewClient()
//	meta, err := pypi.NewClient(http).FetchMetadata(ctx, "aipscan", timeout)
//
// Clients return transport errors unchanged so that callers can classify
// them with errors.As.
//
// [pypi]: github.com/matzehuels/stackpin/pkg/integrations/pypi
// [github]: github.com/matzehuels/stackpin/pkg/integrations/github
// [httputil.Client]: github.com/matzehuels/stackpin/pkg/httputil.Client
package integrations

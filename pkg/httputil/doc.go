// Package httputil provides the HTTP transport used by the version resolvers.
//
// # Overview
//
// [Client] issues GET and HEAD requests with a fixed set of default headers,
// a per-request timeout, and bounded retry:
//
//	c := httputil.NewClient()
//	body, err := c.FetchBody(ctx, url, httputil.Request{Timeout: 15 * time.Second})
//
// Caller headers are merged over the defaults, so a caller can replace the
// User-Agent for a single call.
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// The client marks two failures retryable:
//
//   - Network errors (connection refused, reset, per-attempt timeout)
//   - 5xx server errors
//
// Any other status is returned at once. Backoff is linear: the n-th retry
// waits n times the backoff unit. When the budget runs out the last
// underlying error is returned, unwrapped, so callers see the same
// [*StatusError] or [*NetworkError] they would have seen without retry.
//
// # Redirects
//
// By default redirects are followed. [WithFollowRedirects](false), or
// [Client.NoRedirects], makes a 3xx a terminal [*StatusError] that carries
// the response headers, so callers can read the Location without fetching
// the target page.
//
// # Configuration
//
// Defaults:
//
//   - Attempts: 3
//   - Backoff unit: 500ms
//   - User-Agent: stackpin/<version>
//
// There is no response caching; every call performs network I/O.
package httputil

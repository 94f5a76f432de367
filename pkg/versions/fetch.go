package versions

import (
	"errors"

	"github.com/matzehuels/stackpin/pkg/httputil"
)

// fetchFailure normalizes a transport error for url into a ResolutionError.
// what names the expected payload ("JSON", "text").
func fetchFailure(source Source, url, what string, err error) *ResolutionError {
	var se *httputil.StatusError
	var de *httputil.DecodeError
	switch {
	case errors.As(err, &se):
		return failf(source, err, "HTTP %d retrieving %s", se.StatusCode, url)
	case errors.As(err, &de):
		return failf(source, err, "Failed to parse %s from %s: %v", what, url, de.Err)
	default:
		return failf(source, err, "Unable to retrieve %s from %s: %v", what, url, err)
	}
}

package httputil

import (
	"errors"
	"fmt"
	"net/http"
)

var errInvalidUTF8 = errors.New("body is not valid UTF-8")

// StatusError is returned for any non-2xx response.
// Header holds the response headers, including Location for redirects.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d retrieving %s", e.StatusCode, e.URL)
}

// Location returns the Location header of the response, if any.
func (e *StatusError) Location() string {
	if e.Header == nil {
		return ""
	}
	return e.Header.Get("Location")
}

// NetworkError is returned when no HTTP response was received
// (DNS failure, refused or reset connection, timeout).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string { return e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is returned when a response body cannot be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.URL, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// IsRedirect reports whether code is one of the redirect statuses
// 301, 302, 303, 307 or 308.
func IsRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

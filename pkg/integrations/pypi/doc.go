// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Overview
//
// This package fetches release metadata from PyPI (https://pypi.org). Only
// the fields needed to pin a deployment are decoded.
//
// # Usage
//
//	client := pypi.NewClient(httputil.NewClient())
//	meta, err := client.FetchMetadata(ctx, "aipscan", 15*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(meta.Name, meta.Version)
//
// # Errors
//
// Transport failures are returned unchanged from [httputil.Client]:
// [*httputil.StatusError], [*httputil.NetworkError] and, for malformed
// bodies, [*httputil.DecodeError].
//
// Package names are normalized following PEP 503.
package pypi

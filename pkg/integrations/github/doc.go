// Package github discovers release information from github.com without
// using the REST API.
//
// # Overview
//
// The web endpoint https://github.com/<owner>/<repo>/releases/latest answers
// with a redirect to /releases/tag/<tag>. [Client.LatestRelease] issues a
// HEAD with redirects suppressed and returns the redirect target, so no
// token and no API rate limit are involved:
//
//	client := github.NewClient(httputil.NewClient())
//	r, err := client.LatestRelease(ctx, "astral-sh", "uv", 15*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tag, ok := github.TagFromLocation(r.Location)
//
// # Raw files
//
// [Client.RawFile] fetches a text file such as .python-version from
// raw.githubusercontent.com; [ExpandTemplate] builds its URL for a tag.
//
// # Validation
//
// [ParseRepoRef] validates "owner/repo" slugs before any request is made.
package github

package github

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	perrors "github.com/matzehuels/stackpin/pkg/errors"
)

// DefaultPinURLTemplate locates the .python-version file of an AIPscan tag.
const DefaultPinURLTemplate = "https://raw.githubusercontent.com/artefactual-labs/AIPscan/refs/tags/{tag}/.python-version"

var tagPattern = regexp.MustCompile(`/tag/([^/?#]+)`)

// TagFromLocation extracts the release tag from a redirect Location such as
// https://github.com/astral-sh/uv/releases/tag/0.5.11. Any query string is
// dropped and the result is trimmed. ok is false when no /tag/ segment
// yields a non-empty value.
func TagFromLocation(location string) (tag string, ok bool) {
	m := tagPattern.FindStringSubmatch(location)
	if m == nil {
		return "", false
	}
	tag, _, _ = strings.Cut(m[1], "?")
	tag = strings.TrimSpace(tag)
	return tag, tag != ""
}

// ExpandTemplate substitutes {tag} in tmpl with the path-escaped tag.
func ExpandTemplate(tmpl, tag string) string {
	return strings.ReplaceAll(tmpl, "{tag}", url.PathEscape(tag))
}

// ValidateTemplate checks that tmpl is an absolute http(s) URL containing
// the {tag} placeholder.
func ValidateTemplate(tmpl string) error {
	if !strings.Contains(tmpl, "{tag}") {
		return errors.New("pin URL template must contain {tag}")
	}
	sample := strings.ReplaceAll(tmpl, "{tag}", "tag")
	if err := perrors.ValidateURL(sample); err != nil {
		return err
	}
	_, err := url.Parse(sample)
	return err
}

// PinFileName returns the last path element of tmpl, e.g. ".python-version".
func PinFileName(tmpl string) string {
	if i := strings.LastIndex(tmpl, "/"); i >= 0 && i < len(tmpl)-1 {
		return tmpl[i+1:]
	}
	return tmpl
}

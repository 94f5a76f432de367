package github

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ParseRepoRef parses an "owner/repo" slug and validates both parts.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(strings.TrimSpace(ref), "/")
	if !found {
		return "", "", fmt.Errorf("invalid repo %q: use owner/repo", ref)
	}
	if !validOwner.MatchString(owner) {
		return "", "", fmt.Errorf("invalid repo %q: owner must be 1-39 alphanumeric characters or hyphens", ref)
	}
	if !validRepo.MatchString(repo) {
		return "", "", fmt.Errorf("invalid repo %q: name must be 1-100 alphanumeric characters, hyphens, underscores, or dots", ref)
	}
	return owner, repo, nil
}

package pipeline

import "strings"

const (
	refPrefix       = "refs/"
	branchRefPrefix = "refs/heads/"
)

// NormalizeRef turns a bare branch name into a fully-formed branch ref.
// Anything already under refs/ (tags, pull merge refs, fully-formed branch
// refs) passes through untouched.
func NormalizeRef(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if strings.HasPrefix(name, refPrefix) {
		return name
	}

	return branchRefPrefix + name
}

// ShortRef is the inverse used for human-facing messages: it strips the
// refs/heads/ prefix from branch refs and leaves everything else alone.
func ShortRef(ref string) string {
	return strings.TrimPrefix(ref, branchRefPrefix)
}

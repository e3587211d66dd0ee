// Package gh is the GitHub Actions side of the bridge: it derives the
// source-control reference for the triggering event and writes step outputs
// back to the calling workflow.
package gh

import (
	"fmt"

	"github.com/sethvargo/go-githubactions"
)

// SourceRef captures the source-control metadata of the triggering GitHub
// event. Read-only for the duration of one invocation.
type SourceRef struct {
	// Repository is the "owner/name" slug of the triggering repository.
	Repository string

	// Ref is the fully-formed git ref the workflow ran for, e.g.
	// "refs/heads/main" or "refs/tags/v1.2.0".
	Ref string

	// CommitSHA is the commit the workflow ran for.
	CommitSHA string
}

// ResolveSourceRef reads the source reference from the Actions environment.
func ResolveSourceRef(action *githubactions.Action) (SourceRef, error) {
	ghCtx, err := action.Context()
	if err != nil {
		return SourceRef{}, fmt.Errorf("failed to read GitHub context: %w", err)
	}

	return SourceRef{
		Repository: ghCtx.Repository,
		Ref:        ghCtx.Ref,
		CommitSHA:  ghCtx.SHA,
	}, nil
}

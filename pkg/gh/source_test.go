package gh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-githubactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAction(env map[string]string) *githubactions.Action {
	return githubactions.New(githubactions.WithGetenv(func(key string) string {
		return env[key]
	}))
}

func TestResolveSourceRef(t *testing.T) {
	action := newTestAction(map[string]string{
		"GITHUB_REPOSITORY": "my-org/my-repo",
		"GITHUB_REF":        "refs/heads/feature/polling",
		"GITHUB_SHA":        "8f5b0e1c4c1d9f3a7b2e6d5c4b3a2f1e0d9c8b7a",
	})

	source, err := ResolveSourceRef(action)
	require.NoError(t, err)

	assert.Equal(t, "my-org/my-repo", source.Repository)
	assert.Equal(t, "refs/heads/feature/polling", source.Ref)
	assert.Equal(t, "8f5b0e1c4c1d9f3a7b2e6d5c4b3a2f1e0d9c8b7a", source.CommitSHA)
}

func TestResolveSourceRef_OutsideActions(t *testing.T) {
	source, err := ResolveSourceRef(newTestAction(nil))
	require.NoError(t, err)

	assert.Empty(t, source.Repository)
	assert.Empty(t, source.Ref)
	assert.Empty(t, source.CommitSHA)
}

func TestWriteRunOutputs(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(outputFile, nil, 0o600))

	action := newTestAction(map[string]string{
		"GITHUB_OUTPUT": outputFile,
	})

	WriteRunOutputs(action, RunReport{
		RunID:   412,
		Outcome: "succeeded",
		WebLink: "https://dev.azure.com/my-org/my-project/_build/results?buildId=412",
	})

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	assert.Contains(t, string(content), OutputRunID)
	assert.Contains(t, string(content), "412")
	assert.Contains(t, string(content), OutputRunOutcome)
	assert.Contains(t, string(content), "succeeded")
	assert.Contains(t, string(content), OutputWebLink)
}

func TestWriteRunOutputs_SkipsEmptyFields(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(outputFile, nil, 0o600))

	action := newTestAction(map[string]string{
		"GITHUB_OUTPUT": outputFile,
	})

	WriteRunOutputs(action, RunReport{})

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Empty(t, string(content))
}

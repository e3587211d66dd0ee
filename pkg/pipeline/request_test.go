package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() TriggerRequest {
	return TriggerRequest{
		ProjectURL:   "https://dev.azure.com/my-org/my-project",
		PipelineName: "deploy-service",
		Token:        "pat-token",
	}
}

func TestTriggerRequestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*TriggerRequest)
		expectError bool
	}{
		{
			name:   "valid request",
			mutate: func(r *TriggerRequest) {},
		},
		{
			name:        "missing project URL",
			mutate:      func(r *TriggerRequest) { r.ProjectURL = "" },
			expectError: true,
		},
		{
			name:        "project URL is not a URL",
			mutate:      func(r *TriggerRequest) { r.ProjectURL = "not a url" },
			expectError: true,
		},
		{
			name:        "missing pipeline name",
			mutate:      func(r *TriggerRequest) { r.PipelineName = "" },
			expectError: true,
		},
		{
			name:        "missing token",
			mutate:      func(r *TriggerRequest) { r.Token = "" },
			expectError: true,
		},
		{
			name: "branch and variables are optional",
			mutate: func(r *TriggerRequest) {
				r.Branch = ""
				r.Variables = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(&request)

			err := request.Validate()

			if tt.expectError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestTriggerRequestValidate_DefaultsPollInterval(t *testing.T) {
	request := validRequest()
	require.NoError(t, request.Validate())
	assert.Equal(t, DefaultPollInterval, request.PollInterval)

	request = validRequest()
	request.PollInterval = 30 * time.Second
	require.NoError(t, request.Validate())
	assert.Equal(t, 30*time.Second, request.PollInterval)
}

package pipeline

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const DefaultPollInterval = 5 * time.Second

var validate = validator.New(validator.WithRequiredStructEnabled())

// TriggerRequest is everything one invocation needs to trigger a run.
// Immutable once validated.
type TriggerRequest struct {
	ProjectURL   string            `validate:"required,url"`
	PipelineName string            `validate:"required"`
	Token        string            `validate:"required"`
	Branch       string            // optional override of the event ref
	Variables    map[string]string // optional queue-time variables
	PollInterval time.Duration
}

// Validate checks the request and fills the poll-interval default.
func (r *TriggerRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid trigger request: %w", err)
	}

	if r.PollInterval <= 0 {
		r.PollInterval = DefaultPollInterval
	}

	return nil
}

// Source is the resolved source-control reference a run is triggered for,
// expressed in Azure DevOps terms.
type Source struct {
	// Repository is the GitHub "owner/name" slug, used to pin GitHub-type
	// release artifacts.
	Repository string

	// Branch is the fully-formed ref, e.g. refs/heads/main.
	Branch string

	// Version is the commit SHA.
	Version string

	// Variables are the queue-time variables for the run.
	Variables map[string]string
}

package pipeline

// RunStatus tracks where a triggered run is in its lifecycle.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "inProgress"
	RunStatusCompleted  RunStatus = "completed"
)

// RunOutcome is the terminal verdict of a run.
type RunOutcome string

const (
	OutcomeSucceeded          RunOutcome = "succeeded"
	OutcomePartiallySucceeded RunOutcome = "partiallySucceeded"
	OutcomeFailed             RunOutcome = "failed"
	OutcomeCanceled           RunOutcome = "canceled"
	OutcomeUnknown            RunOutcome = "unknown"
)

// Success reports whether the outcome counts as a passing workflow step.
// Partially succeeded maps to Azure DevOps "succeeded with issues", which
// does not fail the calling workflow.
func (o RunOutcome) Success() bool {
	return o == OutcomeSucceeded || o == OutcomePartiallySucceeded
}

// RunResult is the polled state of one triggered run.
type RunResult struct {
	ID      int
	Type    Type
	Status  RunStatus
	Outcome RunOutcome
	WebLink string
}

// webLink digs the browser URL out of a resource's _links payload. The SDK
// surfaces _links as an untyped map; a missing or malformed payload yields
// an empty string rather than an error.
func webLink(links any) string {
	byName, ok := links.(map[string]any)
	if !ok {
		return ""
	}

	web, ok := byName["web"].(map[string]any)
	if !ok {
		return ""
	}

	href, _ := web["href"].(string)

	return href
}

package gh

import (
	"strconv"

	"github.com/sethvargo/go-githubactions"
)

// Step output names consumed by downstream workflow steps.
const (
	OutputRunID      = "run-id"
	OutputRunOutcome = "run-outcome"
	OutputWebLink    = "pipeline-url"
)

// RunReport is what one finished (or failed-to-start) run reports back to
// the workflow.
type RunReport struct {
	RunID   int
	Outcome string
	WebLink string
}

// WriteRunOutputs publishes the report as step outputs. Empty fields are
// skipped so that a run that never started does not emit misleading values.
func WriteRunOutputs(action *githubactions.Action, report RunReport) {
	if report.RunID != 0 {
		action.SetOutput(OutputRunID, strconv.Itoa(report.RunID))
	}

	if report.Outcome != "" {
		action.SetOutput(OutputRunOutcome, report.Outcome)
	}

	if report.WebLink != "" {
		action.SetOutput(OutputWebLink, report.WebLink)
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
)

// BuildRunner queues a YAML pipeline run and polls it to completion.
type BuildRunner struct {
	api      buildAPI
	project  string
	interval time.Duration
	logger   *slog.Logger
}

func NewBuildRunner(api buildAPI, project string, interval time.Duration, logger *slog.Logger) *BuildRunner {
	return &BuildRunner{
		api:      api,
		project:  project,
		interval: interval,
		logger:   logger.With("module", "build-runner"),
	}
}

// Run queues a build for the target definition and blocks until the build
// completes or ctx is canceled.
func (r *BuildRunner) Run(ctx context.Context, target Target, source Source) (RunResult, error) {
	queued, err := r.queue(ctx, target, source)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		ID:      *queued.Id,
		Type:    TypeBuild,
		Status:  RunStatusPending,
		WebLink: webLink(queued.Links),
	}

	r.logger.Info("Queued build",
		"pipeline", target.Name,
		"build_id", result.ID,
		"branch", ShortRef(source.Branch),
		"url", result.WebLink)

	return r.poll(ctx, result)
}

func (r *BuildRunner) queue(ctx context.Context, target Target, source Source) (*build.Build, error) {
	definitionID := target.DefinitionID
	queueBuild := build.Build{
		Definition: &build.DefinitionReference{Id: &definitionID},
	}

	if source.Branch != "" {
		branch := source.Branch
		queueBuild.SourceBranch = &branch
	}

	if source.Version != "" {
		version := source.Version
		queueBuild.SourceVersion = &version
	}

	if len(source.Variables) > 0 {
		encoded, err := json.Marshal(source.Variables)
		if err != nil {
			return nil, fmt.Errorf("failed to encode build parameters: %w", err)
		}

		parameters := string(encoded)
		queueBuild.Parameters = &parameters
	}

	queued, err := r.api.QueueBuild(ctx, build.QueueBuildArgs{
		Project: &r.project,
		Build:   &queueBuild,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue build for pipeline %q: %w", target.Name, err)
	}

	if queued.Id == nil {
		return nil, fmt.Errorf("queue response for pipeline %q carries no build id", target.Name)
	}

	return queued, nil
}

func (r *BuildRunner) poll(ctx context.Context, result RunResult) (RunResult, error) {
	for {
		if err := wait(ctx, r.interval); err != nil {
			return result, err
		}

		current, err := r.api.GetBuild(ctx, build.GetBuildArgs{
			Project: &r.project,
			BuildId: &result.ID,
		})
		if err != nil {
			return result, fmt.Errorf("failed to poll build %d: %w", result.ID, err)
		}

		if link := webLink(current.Links); link != "" {
			result.WebLink = link
		}

		if current.Status == nil || *current.Status != build.BuildStatusValues.Completed {
			result.Status = RunStatusInProgress
			r.logger.Debug("Build still running", "build_id", result.ID, "status", buildStatus(current.Status))

			continue
		}

		result.Status = RunStatusCompleted
		result.Outcome = buildOutcome(current.Result)

		r.logger.Info("Build completed", "build_id", result.ID, "outcome", result.Outcome)

		return result, nil
	}
}

func buildStatus(status *build.BuildStatus) string {
	if status == nil {
		return "unknown"
	}

	return string(*status)
}

func buildOutcome(result *build.BuildResult) RunOutcome {
	if result == nil {
		return OutcomeUnknown
	}

	switch *result {
	case build.BuildResultValues.Succeeded:
		return OutcomeSucceeded
	case build.BuildResultValues.PartiallySucceeded:
		return OutcomePartiallySucceeded
	case build.BuildResultValues.Failed:
		return OutcomeFailed
	case build.BuildResultValues.Canceled:
		return OutcomeCanceled
	default:
		return OutcomeUnknown
	}
}

// wait sleeps for one poll interval, returning early when ctx is canceled.
func wait(ctx context.Context, interval time.Duration) error {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
)

const githubArtifactType = "GitHub"

// ReleaseRunner creates a classic release and polls its automatically
// triggered environments to completion.
type ReleaseRunner struct {
	api      releaseAPI
	project  string
	interval time.Duration
	logger   *slog.Logger
}

func NewReleaseRunner(api releaseAPI, project string, interval time.Duration, logger *slog.Logger) *ReleaseRunner {
	return &ReleaseRunner{
		api:      api,
		project:  project,
		interval: interval,
		logger:   logger.With("module", "release-runner"),
	}
}

// Run creates a release for the target definition, pinning GitHub artifacts
// to the triggering branch and commit, and blocks until every environment
// the service queued at creation time reaches a terminal state. Stages that
// only deploy on manual approval are left alone.
func (r *ReleaseRunner) Run(ctx context.Context, target Target, source Source) (RunResult, error) {
	created, err := r.create(ctx, target, source)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		ID:      *created.Id,
		Type:    TypeRelease,
		Status:  RunStatusPending,
		WebLink: webLink(created.Links),
	}

	awaited := activeEnvironments(created)

	r.logger.Info("Created release",
		"pipeline", target.Name,
		"release_id", result.ID,
		"environments", len(awaited),
		"url", result.WebLink)

	if len(awaited) == 0 {
		// Nothing was queued automatically: creating the release is the
		// whole job, e.g. when every stage is manually triggered.
		result.Status = RunStatusCompleted
		result.Outcome = OutcomeSucceeded

		return result, nil
	}

	return r.poll(ctx, result, awaited)
}

func (r *ReleaseRunner) create(ctx context.Context, target Target, source Source) (*release.Release, error) {
	definition, err := r.api.GetReleaseDefinition(ctx, release.GetReleaseDefinitionArgs{
		Project:      &r.project,
		DefinitionId: &target.DefinitionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release definition %d: %w", target.DefinitionID, err)
	}

	definitionID := target.DefinitionID
	reason := release.ReleaseReasonValues.ContinuousIntegration
	description := releaseDescription(source)

	metadata := release.ReleaseStartMetadata{
		DefinitionId: &definitionID,
		Description:  &description,
		Reason:       &reason,
	}

	if artifacts := pinGitHubArtifacts(definition, source); len(artifacts) > 0 {
		metadata.Artifacts = &artifacts
	}

	if len(source.Variables) > 0 {
		variables := make(map[string]release.ConfigurationVariableValue, len(source.Variables))
		for name, value := range source.Variables {
			v := value
			variables[name] = release.ConfigurationVariableValue{Value: &v}
		}

		metadata.Variables = &variables
	}

	created, err := r.api.CreateRelease(ctx, release.CreateReleaseArgs{
		Project:              &r.project,
		ReleaseStartMetadata: &metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release for pipeline %q: %w", target.Name, err)
	}

	if created.Id == nil {
		return nil, fmt.Errorf("create response for pipeline %q carries no release id", target.Name)
	}

	return created, nil
}

// pinGitHubArtifacts builds artifact overrides so that GitHub-sourced
// artifacts deploy the triggering commit instead of the default version.
// When the triggering repository is known, only artifacts referencing it are
// pinned.
func pinGitHubArtifacts(definition *release.ReleaseDefinition, source Source) []release.ArtifactMetadata {
	if definition == nil || definition.Artifacts == nil || source.Version == "" {
		return nil
	}

	var pinned []release.ArtifactMetadata

	for _, artifact := range *definition.Artifacts {
		if artifact.Type == nil || *artifact.Type != githubArtifactType || artifact.Alias == nil {
			continue
		}

		if source.Repository != "" && !artifactReferencesRepository(artifact, source.Repository) {
			continue
		}

		alias := *artifact.Alias
		version := source.Version
		branch := source.Branch

		instance := release.BuildVersion{
			Id:            &version,
			SourceVersion: &version,
		}
		if branch != "" {
			instance.SourceBranch = &branch
		}

		pinned = append(pinned, release.ArtifactMetadata{
			Alias:             &alias,
			InstanceReference: &instance,
		})
	}

	return pinned
}

func artifactReferencesRepository(artifact release.Artifact, repository string) bool {
	if artifact.DefinitionReference == nil {
		return false
	}

	definition, ok := (*artifact.DefinitionReference)["definition"]
	if !ok || definition.Name == nil {
		return false
	}

	return strings.EqualFold(*definition.Name, repository)
}

func releaseDescription(source Source) string {
	if source.Repository == "" {
		return "Triggered from GitHub Actions"
	}

	description := "Triggered from GitHub Actions for " + source.Repository
	if len(source.Version) >= 8 {
		description += "@" + source.Version[:8]
	}

	return description
}

func (r *ReleaseRunner) poll(ctx context.Context, result RunResult, awaited []int) (RunResult, error) {
	for {
		if err := wait(ctx, r.interval); err != nil {
			return result, err
		}

		current, err := r.api.GetRelease(ctx, release.GetReleaseArgs{
			Project:   &r.project,
			ReleaseId: &result.ID,
		})
		if err != nil {
			return result, fmt.Errorf("failed to poll release %d: %w", result.ID, err)
		}

		if link := webLink(current.Links); link != "" {
			result.WebLink = link
		}

		if current.Status != nil && *current.Status == release.ReleaseStatusValues.Abandoned {
			result.Status = RunStatusCompleted
			result.Outcome = OutcomeCanceled

			r.logger.Info("Release abandoned", "release_id", result.ID)

			return result, nil
		}

		statuses, done := awaitedStatuses(current, awaited)
		if !done {
			result.Status = RunStatusInProgress
			r.logger.Debug("Release still deploying", "release_id", result.ID)

			continue
		}

		result.Status = RunStatusCompleted
		result.Outcome = releaseOutcome(statuses)

		r.logger.Info("Release finished", "release_id", result.ID, "outcome", result.Outcome)

		return result, nil
	}
}

// activeEnvironments returns the ids of environments the service queued when
// the release was created. Those are the stages this invocation waits on.
func activeEnvironments(rel *release.Release) []int {
	if rel.Environments == nil {
		return nil
	}

	var active []int

	for _, env := range *rel.Environments {
		if env.Id == nil || env.Status == nil {
			continue
		}

		if environmentActive(*env.Status) {
			active = append(active, *env.Id)
		}
	}

	return active
}

// awaitedStatuses reports the status of every awaited environment and
// whether all of them are terminal.
func awaitedStatuses(rel *release.Release, awaited []int) ([]release.EnvironmentStatus, bool) {
	byID := make(map[int]release.EnvironmentStatus)

	if rel.Environments != nil {
		for _, env := range *rel.Environments {
			if env.Id != nil && env.Status != nil {
				byID[*env.Id] = *env.Status
			}
		}
	}

	statuses := make([]release.EnvironmentStatus, 0, len(awaited))

	for _, id := range awaited {
		status, ok := byID[id]
		if !ok || !environmentTerminal(status) {
			return nil, false
		}

		statuses = append(statuses, status)
	}

	return statuses, true
}

func environmentActive(status release.EnvironmentStatus) bool {
	switch status {
	case release.EnvironmentStatusValues.Queued,
		release.EnvironmentStatusValues.Scheduled,
		release.EnvironmentStatusValues.InProgress:
		return true
	default:
		return false
	}
}

func environmentTerminal(status release.EnvironmentStatus) bool {
	switch status {
	case release.EnvironmentStatusValues.Succeeded,
		release.EnvironmentStatusValues.PartiallySucceeded,
		release.EnvironmentStatusValues.Rejected,
		release.EnvironmentStatusValues.Canceled:
		return true
	default:
		return false
	}
}

// releaseOutcome aggregates environment verdicts: any rejection fails the
// run, cancellation outranks partial success, and partial success outranks a
// clean pass.
func releaseOutcome(statuses []release.EnvironmentStatus) RunOutcome {
	outcome := OutcomeSucceeded

	for _, status := range statuses {
		switch status {
		case release.EnvironmentStatusValues.Rejected:
			return OutcomeFailed
		case release.EnvironmentStatusValues.Canceled:
			outcome = OutcomeCanceled
		case release.EnvironmentStatusValues.PartiallySucceeded:
			if outcome != OutcomeCanceled {
				outcome = OutcomePartiallySucceeded
			}
		}
	}

	return outcome
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
)

// Type distinguishes the two kinds of pipeline one name can resolve to.
type Type string

const (
	// TypeBuild is a YAML (build-definition) pipeline.
	TypeBuild Type = "build"
	// TypeRelease is a classic (release-definition) pipeline.
	TypeRelease Type = "release"
)

// Static error variables for lookup failures.
var (
	ErrPipelineNotFound  = errors.New("no pipeline found with the given name")
	ErrAmbiguousPipeline = errors.New("pipeline name matches more than one definition")
)

// buildAPI is the slice of build.Client this package uses.
type buildAPI interface {
	GetDefinitions(ctx context.Context, args build.GetDefinitionsArgs) (*build.GetDefinitionsResponseValue, error)
	QueueBuild(ctx context.Context, args build.QueueBuildArgs) (*build.Build, error)
	GetBuild(ctx context.Context, args build.GetBuildArgs) (*build.Build, error)
}

// releaseAPI is the slice of release.Client this package uses.
type releaseAPI interface {
	GetReleaseDefinitions(ctx context.Context, args release.GetReleaseDefinitionsArgs) (*release.GetReleaseDefinitionsResponseValue, error)
	GetReleaseDefinition(ctx context.Context, args release.GetReleaseDefinitionArgs) (*release.ReleaseDefinition, error)
	CreateRelease(ctx context.Context, args release.CreateReleaseArgs) (*release.Release, error)
	GetRelease(ctx context.Context, args release.GetReleaseArgs) (*release.Release, error)
}

// Target is a resolved pipeline: the definition to trigger and which API it
// lives behind.
type Target struct {
	Type         Type
	DefinitionID int
	Name         string
}

// Resolver maps a human-readable pipeline name to a Target. Build
// definitions are consulted first; a miss (or a lookup error) falls back to
// release definitions once.
type Resolver struct {
	builds   buildAPI
	releases releaseAPI
	project  string
	logger   *slog.Logger
}

func NewResolver(builds buildAPI, releases releaseAPI, project string, logger *slog.Logger) *Resolver {
	return &Resolver{
		builds:   builds,
		releases: releases,
		project:  project,
		logger:   logger.With("module", "resolver"),
	}
}

func (r *Resolver) Resolve(ctx context.Context, name string) (Target, error) {
	target, buildErr := r.resolveBuild(ctx, name)
	if buildErr == nil {
		return target, nil
	}

	if errors.Is(buildErr, ErrAmbiguousPipeline) {
		return Target{}, buildErr
	}

	r.logger.Debug("No YAML pipeline matched, trying release definitions",
		"pipeline", name, "reason", buildErr)

	target, releaseErr := r.resolveRelease(ctx, name)
	if releaseErr == nil {
		return target, nil
	}

	if errors.Is(releaseErr, ErrAmbiguousPipeline) {
		return Target{}, releaseErr
	}

	return Target{}, fmt.Errorf("%w: %q in project %q (build lookup: %v; release lookup: %v)",
		ErrPipelineNotFound, name, r.project, buildErr, releaseErr)
}

func (r *Resolver) resolveBuild(ctx context.Context, name string) (Target, error) {
	definitions, err := r.builds.GetDefinitions(ctx, build.GetDefinitionsArgs{
		Project: &r.project,
		Name:    &name,
	})
	if err != nil {
		return Target{}, fmt.Errorf("build definition lookup failed: %w", err)
	}

	matches := definitions.Value

	switch len(matches) {
	case 0:
		return Target{}, fmt.Errorf("%w: no build definition named %q", ErrPipelineNotFound, name)
	case 1:
		if matches[0].Id == nil {
			return Target{}, fmt.Errorf("build definition %q carries no id", name)
		}

		return Target{
			Type:         TypeBuild,
			DefinitionID: *matches[0].Id,
			Name:         name,
		}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q matches %d build definitions", ErrAmbiguousPipeline, name, len(matches))
	}
}

func (r *Resolver) resolveRelease(ctx context.Context, name string) (Target, error) {
	exactMatch := true

	definitions, err := r.releases.GetReleaseDefinitions(ctx, release.GetReleaseDefinitionsArgs{
		Project:          &r.project,
		SearchText:       &name,
		IsExactNameMatch: &exactMatch,
	})
	if err != nil {
		return Target{}, fmt.Errorf("release definition lookup failed: %w", err)
	}

	matches := definitions.Value

	switch len(matches) {
	case 0:
		return Target{}, fmt.Errorf("%w: no release definition named %q", ErrPipelineNotFound, name)
	case 1:
		if matches[0].Id == nil {
			return Target{}, fmt.Errorf("release definition %q carries no id", name)
		}

		return Target{
			Type:         TypeRelease,
			DefinitionID: *matches[0].Id,
			Name:         name,
		}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q matches %d release definitions", ErrAmbiguousPipeline, name, len(matches))
	}
}

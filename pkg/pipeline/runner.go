// Package pipeline resolves a pipeline name to a YAML or classic definition,
// triggers a run for the current source reference, and polls it to a
// terminal state.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/otelhelper"
)

const tracerName = "azp-trigger"

// Runner is the linear resolve → trigger → poll → report flow. One Runner
// serves exactly one invocation.
type Runner struct {
	resolver     *Resolver
	builds       *BuildRunner
	releases     *ReleaseRunner
	project      string
	invocationID string
	logger       *slog.Logger
}

func NewRunner(builds buildAPI, releases releaseAPI, project, invocationID string, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		resolver:     NewResolver(builds, releases, project, logger),
		builds:       NewBuildRunner(builds, project, interval, logger),
		releases:     NewReleaseRunner(releases, project, interval, logger),
		project:      project,
		invocationID: invocationID,
		logger:       logger.With("module", "runner"),
	}
}

// Run executes the whole flow for one trigger request.
func (r *Runner) Run(ctx context.Context, pipelineName string, source Source) (RunResult, error) {
	tracer := otel.Tracer(tracerName)

	ctx, span := otelhelper.StartSpan(ctx, tracer, "pipeline.run",
		attribute.String(otelhelper.ProjectKey, r.project),
		attribute.String(otelhelper.PipelineNameKey, pipelineName),
		attribute.String(otelhelper.SourceBranchKey, source.Branch),
		attribute.String(otelhelper.SourceVersionKey, source.Version),
	)
	defer span.End()

	if r.invocationID != "" {
		span.SetAttributes(attribute.String(otelhelper.InvocationIDKey, r.invocationID))
	}

	target, err := r.resolve(ctx, pipelineName)
	if err != nil {
		otelhelper.SetError(span, err)

		return RunResult{}, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.PipelineTypeKey, string(target.Type)),
		attribute.Int(otelhelper.DefinitionIDKey, target.DefinitionID),
	)

	result, err := r.trigger(ctx, target, source)
	if err != nil {
		otelhelper.SetError(span, err)

		return result, err
	}

	span.SetAttributes(
		attribute.Int(otelhelper.RunIDKey, result.ID),
		attribute.String(otelhelper.RunOutcomeKey, string(result.Outcome)),
	)

	return result, nil
}

func (r *Runner) resolve(ctx context.Context, pipelineName string) (Target, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(tracerName), "pipeline.resolve")
	defer span.End()

	target, err := r.resolver.Resolve(ctx, pipelineName)
	if err != nil {
		otelhelper.SetError(span, err)

		return Target{}, err
	}

	r.logger.Info("Resolved pipeline",
		"pipeline", pipelineName,
		"type", target.Type,
		"definition_id", target.DefinitionID)

	return target, nil
}

func (r *Runner) trigger(ctx context.Context, target Target, source Source) (RunResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, otel.Tracer(tracerName), "pipeline.trigger",
		attribute.String(otelhelper.PipelineTypeKey, string(target.Type)),
	)
	defer span.End()

	var (
		result RunResult
		err    error
	)

	switch target.Type {
	case TypeRelease:
		result, err = r.releases.Run(ctx, target, source)
	default:
		result, err = r.builds.Run(ctx, target, source)
	}

	if err != nil {
		otelhelper.SetError(span, err)
	}

	return result, err
}

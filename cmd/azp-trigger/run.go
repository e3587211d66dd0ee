package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sethvargo/go-githubactions"
	cli "github.com/urfave/cli/v3"

	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/azdo"
	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/gh"
	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/log"
	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/otelhelper"
	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/pipeline"
)

func runAction(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	action := githubactions.New()

	request := pipeline.TriggerRequest{
		ProjectURL:   command.String("project-url"),
		PipelineName: command.String("pipeline-name"),
		Token:        command.String("azure-devops-token"),
		Branch:       command.String("branch"),
		PollInterval: command.Duration("poll-interval"),
	}

	// Never let the PAT reach the workflow log.
	action.AddMask(request.Token)

	tracerProvider, err := otelhelper.InitTracer(ctx, "azp-trigger")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	if tracerProvider != nil {
		defer func() {
			if err := tracerProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
				slog.Error("Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	invocationID := uuid.New().String()[:8]
	logger := log.WithModule("azp-trigger").With("invocation_id", invocationID)

	variables, err := pipeline.ParseVariables(command.String("variables"))
	if err != nil {
		return err
	}

	request.Variables = variables

	if err := request.Validate(); err != nil {
		return err
	}

	sourceRef, err := gh.ResolveSourceRef(action)
	if err != nil {
		return err
	}

	source := buildSource(request, sourceRef)

	project, err := azdo.ParseProjectURL(request.ProjectURL)
	if err != nil {
		return err
	}

	logger.Info("Triggering pipeline",
		"project", project.Name,
		"pipeline", request.PipelineName,
		"branch", pipeline.ShortRef(source.Branch))

	clients, err := azdo.NewClients(ctx, project, request.Token)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(clients.Build, clients.Release, project.Name, invocationID, request.PollInterval, logger)

	result, err := runner.Run(ctx, request.PipelineName, source)

	gh.WriteRunOutputs(action, gh.RunReport{
		RunID:   result.ID,
		Outcome: string(result.Outcome),
		WebLink: result.WebLink,
	})

	if err != nil {
		return err
	}

	return reportOutcome(action, logger, request.PipelineName, result)
}

// buildSource merges the branch override into the GitHub source reference.
// An override pointing at a different ref drops the event commit: the SHA of
// the triggering event does not exist on an arbitrary other branch.
func buildSource(request pipeline.TriggerRequest, ref gh.SourceRef) pipeline.Source {
	source := pipeline.Source{
		Repository: ref.Repository,
		Branch:     ref.Ref,
		Version:    ref.CommitSHA,
		Variables:  request.Variables,
	}

	if request.Branch == "" {
		return source
	}

	override := pipeline.NormalizeRef(request.Branch)
	if override != ref.Ref {
		source.Version = ""
	}

	source.Branch = override

	return source
}

func reportOutcome(action *githubactions.Action, logger *slog.Logger, pipelineName string, result pipeline.RunResult) error {
	logger.Info("Pipeline finished",
		"pipeline", pipelineName,
		"run_id", result.ID,
		"outcome", result.Outcome,
		"url", result.WebLink)

	switch {
	case result.Outcome == pipeline.OutcomePartiallySucceeded:
		action.Warningf("Pipeline %q run %d partially succeeded: %s", pipelineName, result.ID, result.WebLink)

		return nil
	case result.Outcome.Success():
		action.Infof("Pipeline %q run %d succeeded: %s", pipelineName, result.ID, result.WebLink)

		return nil
	default:
		return fmt.Errorf("pipeline %q run %d finished with outcome %s: %s",
			pipelineName, result.ID, result.Outcome, result.WebLink)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/azdo"
	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/pipeline"
)

// NewValidateCommand checks the action inputs without contacting Azure
// DevOps, so a workflow (or a local shell) can lint its configuration.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate action inputs without triggering anything",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "project-url",
				Usage:   "Full URL of the Azure DevOps project",
				Sources: cli.EnvVars("INPUT_PROJECT_URL", "AZDO_PROJECT_URL"),
			},
			&cli.StringFlag{
				Name:    "pipeline-name",
				Usage:   "Name of the pipeline to trigger",
				Sources: cli.EnvVars("INPUT_PIPELINE_NAME", "AZDO_PIPELINE_NAME"),
			},
			&cli.StringFlag{
				Name:    "azure-devops-token",
				Usage:   "Personal access token",
				Sources: cli.EnvVars("INPUT_AZURE_DEVOPS_TOKEN", "AZDO_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "branch",
				Usage:   "Branch override",
				Sources: cli.EnvVars("INPUT_BRANCH", "AZDO_BRANCH"),
			},
			&cli.StringFlag{
				Name:    "variables",
				Usage:   "JSON object of queue-time variables",
				Sources: cli.EnvVars("INPUT_VARIABLES", "AZDO_VARIABLES"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			request := pipeline.TriggerRequest{
				ProjectURL:   command.String("project-url"),
				PipelineName: command.String("pipeline-name"),
				Token:        command.String("azure-devops-token"),
				Branch:       command.String("branch"),
			}

			return validateInputs(request, command.String("variables"))
		},
	}
}

func validateInputs(request pipeline.TriggerRequest, rawVariables string) error {
	failures := 0

	check := func(name string, err error) {
		if err != nil {
			_, _ = fmt.Fprintf(os.Stdout, "  ❌ %s: %v\n", name, err)
			failures++

			return
		}

		_, _ = fmt.Fprintf(os.Stdout, "  ✅ %s\n", name)
	}

	_, _ = fmt.Fprintln(os.Stdout, "Input Validation Results:")
	_, _ = fmt.Fprintln(os.Stdout, "=========================")

	variables, variablesErr := pipeline.ParseVariables(rawVariables)
	request.Variables = variables

	check("request", request.Validate())

	_, urlErr := azdo.ParseProjectURL(request.ProjectURL)
	check("project-url", urlErr)

	check("variables", variablesErr)

	if request.Branch != "" {
		_, _ = fmt.Fprintf(os.Stdout, "  ✅ branch: will run for %s\n", pipeline.NormalizeRef(request.Branch))
	}

	if failures > 0 {
		return fmt.Errorf("found %d invalid inputs", failures)
	}

	_, _ = fmt.Fprintln(os.Stdout, "All inputs are valid! ✅")

	return nil
}

package main

import (
	"context"
	"os"

	"github.com/sethvargo/go-githubactions"
	cli "github.com/urfave/cli/v3"

	"github.com/katiemacaulay/azure-pipeline-github-action/pkg/pipeline"
)

func main() {
	cmd := &cli.Command{
		Name:                  "azp-trigger",
		Usage:                 "Trigger an Azure DevOps pipeline from GitHub Actions and wait for it to finish",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "project-url",
				Usage:    "Full URL of the Azure DevOps project, e.g. https://dev.azure.com/my-org/my-project",
				Required: true,
				Sources:  cli.EnvVars("INPUT_PROJECT_URL", "AZDO_PROJECT_URL"),
			},
			&cli.StringFlag{
				Name:     "pipeline-name",
				Usage:    "Name of the YAML or classic pipeline to trigger",
				Required: true,
				Sources:  cli.EnvVars("INPUT_PIPELINE_NAME", "AZDO_PIPELINE_NAME"),
			},
			&cli.StringFlag{
				Name:     "azure-devops-token",
				Usage:    "Personal access token authorized to queue runs in the project",
				Required: true,
				Sources:  cli.EnvVars("INPUT_AZURE_DEVOPS_TOKEN", "AZDO_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "branch",
				Usage:   "Branch to run for instead of the branch that triggered the workflow",
				Value:   "",
				Sources: cli.EnvVars("INPUT_BRANCH", "AZDO_BRANCH"),
			},
			&cli.StringFlag{
				Name:    "variables",
				Usage:   "JSON object of queue-time variables, e.g. {\"environment\": \"staging\"}",
				Value:   "",
				Sources: cli.EnvVars("INPUT_VARIABLES", "AZDO_VARIABLES"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "How often to poll the triggered run for completion",
				Value:   pipeline.DefaultPollInterval,
				Sources: cli.EnvVars("INPUT_POLL_INTERVAL", "AZDO_POLL_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("INPUT_LOG_LEVEL", "LOG_LEVEL"),
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		githubactions.Errorf("%v", err)
		os.Exit(1)
	}
}

package azdo

import (
	"context"
	"fmt"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
)

// Clients bundles the two SDK clients one invocation can need. Both are
// created up front because pipeline-type resolution may consult either.
type Clients struct {
	Build   build.Client
	Release release.Client
}

// NewClients opens a PAT-authenticated connection to the organization and
// constructs the build and release area clients.
func NewClients(ctx context.Context, project Project, token string) (*Clients, error) {
	connection := azuredevops.NewPatConnection(project.OrganizationURL, token)

	buildClient, err := build.NewClient(ctx, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create build client for %s: %w", project.OrganizationURL, err)
	}

	releaseClient, err := release.NewClient(ctx, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create release client for %s: %w", project.OrganizationURL, err)
	}

	return &Clients{Build: buildClient, Release: releaseClient}, nil
}

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"
	"github.com/stretchr/testify/mock"
)

const testProject = "my-project"

// MockBuildAPI mocks the build.Client slice used by this package.
type MockBuildAPI struct {
	mock.Mock
}

func (m *MockBuildAPI) GetDefinitions(ctx context.Context, args build.GetDefinitionsArgs) (*build.GetDefinitionsResponseValue, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*build.GetDefinitionsResponseValue), called.Error(1)
	}

	return nil, called.Error(1)
}

func (m *MockBuildAPI) QueueBuild(ctx context.Context, args build.QueueBuildArgs) (*build.Build, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*build.Build), called.Error(1)
	}

	return nil, called.Error(1)
}

func (m *MockBuildAPI) GetBuild(ctx context.Context, args build.GetBuildArgs) (*build.Build, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*build.Build), called.Error(1)
	}

	return nil, called.Error(1)
}

// MockReleaseAPI mocks the release.Client slice used by this package.
type MockReleaseAPI struct {
	mock.Mock
}

func (m *MockReleaseAPI) GetReleaseDefinitions(ctx context.Context, args release.GetReleaseDefinitionsArgs) (*release.GetReleaseDefinitionsResponseValue, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*release.GetReleaseDefinitionsResponseValue), called.Error(1)
	}

	return nil, called.Error(1)
}

func (m *MockReleaseAPI) GetReleaseDefinition(ctx context.Context, args release.GetReleaseDefinitionArgs) (*release.ReleaseDefinition, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*release.ReleaseDefinition), called.Error(1)
	}

	return nil, called.Error(1)
}

func (m *MockReleaseAPI) CreateRelease(ctx context.Context, args release.CreateReleaseArgs) (*release.Release, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*release.Release), called.Error(1)
	}

	return nil, called.Error(1)
}

func (m *MockReleaseAPI) GetRelease(ctx context.Context, args release.GetReleaseArgs) (*release.Release, error) {
	called := m.Called(ctx, args)

	if value := called.Get(0); value != nil {
		return value.(*release.Release), called.Error(1)
	}

	return nil, called.Error(1)
}

// Test helpers

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func buildStatusPtr(v build.BuildStatus) *build.BuildStatus { return &v }

func buildResultPtr(v build.BuildResult) *build.BuildResult { return &v }

func envStatusPtr(v release.EnvironmentStatus) *release.EnvironmentStatus { return &v }

func releaseStatusPtr(v release.ReleaseStatus) *release.ReleaseStatus { return &v }

func webLinks(href string) map[string]any {
	return map[string]any{
		"web": map[string]any{"href": href},
	}
}

func requireMocks(t *testing.T, mocks ...interface{ AssertExpectations(mock.TestingT) bool }) {
	t.Helper()

	for _, m := range mocks {
		m.AssertExpectations(t)
	}
}

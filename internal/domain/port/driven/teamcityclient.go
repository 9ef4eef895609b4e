package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// Sentinel errors returned by TeamCityClient implementations.
var (
	// ErrNotConfigured indicates no CI server URL or token is configured.
	ErrNotConfigured = errors.New("teamcity not configured")

	// ErrUpstreamUnavailable indicates the CI server could not be reached or
	// answered with an error status.
	ErrUpstreamUnavailable = errors.New("teamcity unavailable")
)

// TeamCityClient defines the driven port for reading from the CI server.
// FetchLatestBuild returns nil, nil when the configuration has never run.
type TeamCityClient interface {
	FetchProjects(ctx context.Context) ([]model.Project, error)
	FetchBuildTypes(ctx context.Context) ([]model.BuildType, error)
	FetchLatestBuild(ctx context.Context, buildTypeID string, runningOnly bool) (*model.BuildRun, error)
	FetchAgents(ctx context.Context) ([]model.Agent, error)
}

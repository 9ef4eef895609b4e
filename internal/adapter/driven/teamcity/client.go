// Package teamcity implements the TeamCityClient port against the TeamCity REST API.
package teamcity

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gregjones/httpcache"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TeamCityClient = (*Client)(nil)

const (
	listRetries        = 2
	agentDetailWorkers = 4
	maxErrorBody       = 512
)

// Client implements the driven.TeamCityClient port over HTTP with XML payloads.
type Client struct {
	http         *http.Client
	baseURL      string
	token        string
	retryInitial time.Duration
}

// NewClient creates a TeamCity client with the following transport stack:
//  1. bearer token authentication
//  2. httpcache (ETag-based conditional request caching)
//  3. http.DefaultTransport
//
// Each request is bounded by timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()

	return &Client{
		http: &http.Client{
			Transport: &bearerTransport{token: token, next: cacheTransport},
			Timeout:   timeout,
		},
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		retryInitial: 500 * time.Millisecond,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) *Client {
	return &Client{
		http:         &http.Client{Transport: &bearerTransport{token: token, next: transportOf(httpClient)}, Timeout: httpClient.Timeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		retryInitial: time.Millisecond,
	}
}

func transportOf(c *http.Client) http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	return http.DefaultTransport
}

// bearerTransport sets the Authorization and Accept headers on every request.
type bearerTransport struct {
	token string
	next  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	clone.Header.Set("Accept", "application/xml")
	return t.next.RoundTrip(clone)
}

// Configured reports whether a server URL and token are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.token != ""
}

// FetchProjects lists every project with its parent link.
func (c *Client) FetchProjects(ctx context.Context) ([]model.Project, error) {
	var resp xmlProjects
	if err := c.getWithRetry(ctx, "/app/rest/projects", url.Values{"fields": {projectFields}}, &resp); err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}

	projects := make([]model.Project, 0, len(resp.Projects))
	for _, p := range resp.Projects {
		projects = append(projects, mapProject(p))
	}
	return projects, nil
}

// FetchBuildTypes lists every build configuration with its project and
// archive flags.
func (c *Client) FetchBuildTypes(ctx context.Context) ([]model.BuildType, error) {
	var resp xmlBuildTypes
	if err := c.getWithRetry(ctx, "/app/rest/buildTypes", url.Values{"fields": {buildTypeFields}}, &resp); err != nil {
		return nil, fmt.Errorf("fetch build types: %w", err)
	}

	types := make([]model.BuildType, 0, len(resp.BuildTypes))
	for _, bt := range resp.BuildTypes {
		types = append(types, mapBuildType(bt, c.baseURL))
	}
	return types, nil
}

// FetchLatestBuild returns the most recent run of a build configuration, or
// the most recent running one when runningOnly is set. It returns nil, nil
// when there is no such run. It is not retried; callers bound it with a
// short timeout.
func (c *Client) FetchLatestBuild(ctx context.Context, buildTypeID string, runningOnly bool) (*model.BuildRun, error) {
	locator := "buildType:" + buildTypeID + ",count:1"
	if runningOnly {
		locator = "buildType:" + buildTypeID + ",state:running,count:1"
	}

	var resp xmlBuilds
	q := url.Values{"locator": {locator}, "fields": {buildFields}}
	if err := c.get(ctx, "/app/rest/builds", q, &resp); err != nil {
		return nil, fmt.Errorf("fetch latest build %s: %w", buildTypeID, err)
	}

	if len(resp.Builds) == 0 {
		return nil, nil
	}
	return mapBuild(resp.Builds[0]), nil
}

// FetchAgents lists agents and loads each one's detail record for its
// connection and authorization flags. An agent whose detail cannot be read
// is returned with all flags false.
func (c *Client) FetchAgents(ctx context.Context) ([]model.Agent, error) {
	var list xmlAgents
	if err := c.getWithRetry(ctx, "/app/rest/agents", nil, &list); err != nil {
		return nil, fmt.Errorf("fetch agents: %w", err)
	}

	agents := make([]model.Agent, len(list.Agents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(agentDetailWorkers)

	for i, a := range list.Agents {
		g.Go(func() error {
			agents[i] = mapAgent(a)
			if a.Href == "" {
				return nil
			}

			var detail xmlAgent
			if err := c.get(gctx, a.Href, nil, &detail); err != nil {
				slog.Debug("agent detail unavailable", "agent", a.Name, "error", err)
				return nil
			}
			agents[i] = mapAgent(detail)
			return nil
		})
	}

	_ = g.Wait() // Detail failures are absorbed per agent.

	return agents, nil
}

// getWithRetry performs get with exponential backoff on transient failures.
func (c *Client) getWithRetry(ctx context.Context, path string, query url.Values, v any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial

	policy := backoff.WithContext(backoff.WithMaxRetries(b, listRetries), ctx)

	return backoff.Retry(func() error {
		return c.get(ctx, path, query, v)
	}, policy)
}

// get issues a GET request and decodes the XML body into v. Client errors
// and undecodable bodies are marked permanent so they are not retried.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	if !c.Configured() {
		return backoff.Permanent(driven.ErrNotConfigured)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return backoff.Permanent(fmt.Errorf("%w: %w", driven.ErrUpstreamUnavailable, err))
		}
		return fmt.Errorf("%w: %w", driven.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := fmt.Errorf("%w: GET %s returned %d: %s",
			driven.ErrUpstreamUnavailable, path, resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(statusErr)
		}
		return statusErr
	}

	if err := xml.NewDecoder(resp.Body).Decode(v); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: decode %s: %w", driven.ErrUpstreamUnavailable, path, err))
	}

	return nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Defaults used when CatalogService is constructed with zero values.
const (
	DefaultEnrichWorkers = 12
	DefaultCallTimeout   = 3 * time.Second
	DefaultCacheTTL      = 2 * time.Minute
)

// CacheStatus reports both catalog caches.
type CacheStatus struct {
	Builds CacheInfo
	Agents CacheInfo
}

// CatalogService reads build configurations and agents from the CI server
// and serves them from TTL caches.
type CatalogService struct {
	client      driven.TeamCityClient
	workers     int
	callTimeout time.Duration

	builds *SnapshotCache[model.BuildRecord]
	agents *SnapshotCache[model.Agent]
}

// NewCatalogService creates a CatalogService. Zero values for ttl, workers,
// and callTimeout select the package defaults.
func NewCatalogService(client driven.TeamCityClient, ttl time.Duration, workers int, callTimeout time.Duration) *CatalogService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	s := &CatalogService{
		client:      client,
		workers:     workers,
		callTimeout: callTimeout,
	}
	s.builds = NewSnapshotCache("builds", ttl, s.fetchBuilds)
	s.agents = NewSnapshotCache("agents", ttl, client.FetchAgents)
	return s
}

// Builds returns every active build configuration with its latest status.
func (s *CatalogService) Builds(ctx context.Context) Result[model.BuildRecord] {
	return s.builds.Get(ctx)
}

// Agents returns the build agents.
func (s *CatalogService) Agents(ctx context.Context) Result[model.Agent] {
	return s.agents.Get(ctx)
}

// ForceRefreshBuilds clears the build cache.
func (s *CatalogService) ForceRefreshBuilds() { s.builds.ForceRefresh() }

// ForceRefreshAgents clears the agent cache.
func (s *CatalogService) ForceRefreshAgents() { s.agents.ForceRefresh() }

// CacheStatus reports both caches without fetching.
func (s *CatalogService) CacheStatus() CacheStatus {
	return CacheStatus{Builds: s.builds.Info(), Agents: s.agents.Info()}
}

// TopLevelProjects returns the distinct outermost project names among the
// given builds, in first-seen order.
func TopLevelProjects(records []model.BuildRecord) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range records {
		top := rec.TopProject()
		if top == "" {
			continue
		}
		if _, ok := seen[top]; ok {
			continue
		}
		seen[top] = struct{}{}
		names = append(names, top)
	}
	return names
}

// fetchBuilds lists build configurations, resolves their paths, drops
// archived projects, and enriches each with its latest run.
func (s *CatalogService) fetchBuilds(ctx context.Context) ([]model.BuildRecord, error) {
	start := time.Now()

	projects, err := s.client.FetchProjects(ctx)
	if err != nil {
		// Paths fall back to the flat project name on each build type.
		slog.Warn("project metadata unavailable, using flat project names", "error", err)
		projects = nil
	}

	buildTypes, err := s.client.FetchBuildTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch build types: %w", err)
	}

	resolver := NewPathResolver(projects)
	records := make([]model.BuildRecord, 0, len(buildTypes))
	archived := 0

	for _, bt := range buildTypes {
		if bt.Archived || bt.ParentArchived || resolver.IsArchived(bt.ProjectID) {
			archived++
			continue
		}
		records = append(records, model.BuildRecord{
			ID:          bt.ID,
			Name:        bt.Name,
			ProjectPath: resolver.Resolve(bt.ProjectID, bt.ProjectName),
			Status:      model.BuildStatusUnknown,
			State:       model.BuildStateFinished,
			WebURL:      bt.WebURL,
		})
	}

	enriched := s.Enrich(ctx, records)

	slog.Info("build catalog fetched",
		"build_types", len(buildTypes),
		"archived", archived,
		"builds", len(enriched),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return enriched, nil
}

// Enrich fills in the latest run of each record using a bounded worker pool.
// A running build takes precedence over the last finished one. A failed
// lookup degrades only that record to UNKNOWN. Output order matches input.
func (s *CatalogService) Enrich(ctx context.Context, records []model.BuildRecord) []model.BuildRecord {
	out := make([]model.BuildRecord, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, rec := range records {
		g.Go(func() error {
			out[i] = s.enrichOne(gctx, rec)
			return nil
		})
	}

	_ = g.Wait() // Workers never return errors.

	return out
}

func (s *CatalogService) enrichOne(ctx context.Context, rec model.BuildRecord) model.BuildRecord {
	run, err := s.latestRun(ctx, rec.ID, true)
	if err != nil || run == nil {
		run, err = s.latestRun(ctx, rec.ID, false)
	}

	if err != nil {
		slog.Debug("build status lookup failed", "build_type_id", rec.ID, "error", err)
		rec.Status = model.BuildStatusUnknown
		rec.State = model.BuildStateFinished
		return rec
	}
	if run == nil {
		rec.Status = model.BuildStatusUnknown
		rec.State = model.BuildStateFinished
		return rec
	}

	rec.Status = run.Status
	rec.State = run.State
	rec.Number = run.Number
	rec.StatusText = run.StatusText
	if run.WebURL != "" {
		rec.WebURL = run.WebURL
	}
	return rec
}

func (s *CatalogService) latestRun(ctx context.Context, id string, runningOnly bool) (*model.BuildRun, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	return s.client.FetchLatestBuild(callCtx, id, runningOnly)
}

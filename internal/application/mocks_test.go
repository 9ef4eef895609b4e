package application

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// --- Mock implementations ---

type mockTeamCityClient struct {
	projects    []model.Project
	projectsErr error
	buildTypes  []model.BuildType
	typesErr    error
	agents      []model.Agent
	agentsErr   error

	// latest returns the run for a build type; nil function means never run.
	latest func(ctx context.Context, id string, runningOnly bool) (*model.BuildRun, error)

	typeCalls   atomic.Int32
	latestCalls atomic.Int32
}

func (m *mockTeamCityClient) FetchProjects(_ context.Context) ([]model.Project, error) {
	return m.projects, m.projectsErr
}

func (m *mockTeamCityClient) FetchBuildTypes(_ context.Context) ([]model.BuildType, error) {
	m.typeCalls.Add(1)
	return m.buildTypes, m.typesErr
}

func (m *mockTeamCityClient) FetchLatestBuild(ctx context.Context, id string, runningOnly bool) (*model.BuildRun, error) {
	m.latestCalls.Add(1)
	if m.latest == nil {
		return nil, nil
	}
	return m.latest(ctx, id, runningOnly)
}

func (m *mockTeamCityClient) FetchAgents(_ context.Context) ([]model.Agent, error) {
	return m.agents, m.agentsErr
}

type mockSelectionStore struct {
	mu   sync.Mutex
	ids  []string
	meta map[string]model.SelectionMeta
	err  error
}

func (m *mockSelectionStore) BulkReplace(_ context.Context, ids []string, meta map[string]model.SelectionMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.ids = append([]string(nil), ids...)
	m.meta = meta
	return nil
}

func (m *mockSelectionStore) SelectedIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ids := append([]string(nil), m.ids...)
	sort.Strings(ids)
	return ids, nil
}

func (m *mockSelectionStore) List(_ context.Context) ([]model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Selection, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, model.Selection{BuildTypeID: id, Selected: true})
	}
	return out, nil
}


type mockPreferenceStore struct {
	prefs *model.DisplayPreferences
	err   error
}

func (m *mockPreferenceStore) GetDisplay(_ context.Context) (model.DisplayPreferences, error) {
	if m.err != nil {
		return model.DisplayPreferences{}, m.err
	}
	if m.prefs == nil {
		return model.DefaultDisplayPreferences(), nil
	}
	return *m.prefs, nil
}

func (m *mockPreferenceStore) SetDisplay(_ context.Context, prefs model.DisplayPreferences) error {
	if m.err != nil {
		return m.err
	}
	m.prefs = &prefs
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []model.BuildStatusEvent
	err    error
}

func (m *mockPublisher) PublishStatusChange(_ context.Context, event model.BuildStatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// statusByID returns a latest-run function that reports finished runs with
// the given statuses and ignores running-only lookups.
func statusByID(statuses map[string]model.BuildStatus) func(context.Context, string, bool) (*model.BuildRun, error) {
	return func(_ context.Context, id string, runningOnly bool) (*model.BuildRun, error) {
		if runningOnly {
			return nil, nil
		}
		st, ok := statuses[id]
		if !ok {
			return nil, nil
		}
		return &model.BuildRun{Number: "1", Status: st, State: model.BuildStateFinished}, nil
	}
}

func sampleCatalogClient() *mockTeamCityClient {
	return &mockTeamCityClient{
		projects: []model.Project{
			{ID: "_Root", Name: "<Root project>"},
			{ID: "Go2Version612", Name: "GO2 Version 612", ParentID: "_Root"},
			{ID: "Go2Version612_Plugins", Name: "Plugins", ParentID: "Go2Version612"},
			{ID: "Go2Version611", Name: "GO2 Version 611", ParentID: "_Root"},
			{ID: "WebServices", Name: "Web Services", ParentID: "_Root"},
			{ID: "Old", Name: "Old", ParentID: "_Root", Archived: true},
		},
		buildTypes: []model.BuildType{
			{ID: "Go2Version612_Plugins_BuildDebug", Name: "BuildDebug", ProjectID: "Go2Version612_Plugins"},
			{ID: "Go2Version612_Plugins_BuildRelease", Name: "BuildRelease", ProjectID: "Go2Version612_Plugins"},
			{ID: "Go2Version611_Compile", Name: "Compile", ProjectID: "Go2Version611"},
			{ID: "WebServices_Portal_Deploy", Name: "Deploy", ProjectID: "WebServices"},
			{ID: "Old_Build", Name: "Build", ProjectID: "Old"},
		},
		latest: statusByID(map[string]model.BuildStatus{
			"Go2Version612_Plugins_BuildDebug":   model.BuildStatusSuccess,
			"Go2Version612_Plugins_BuildRelease": model.BuildStatusFailure,
			"Go2Version611_Compile":              model.BuildStatusSuccess,
			"WebServices_Portal_Deploy":          model.BuildStatusSuccess,
		}),
	}
}

package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

type dashboardFixture struct {
	client     *mockTeamCityClient
	selections *mockSelectionStore
	prefs      *mockPreferenceStore
	versions   *memVersionStore
	svc        *DashboardService
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	f := &dashboardFixture{
		client:     sampleCatalogClient(),
		selections: &mockSelectionStore{},
		prefs:      &mockPreferenceStore{},
		versions:   &memVersionStore{},
	}
	catalog := NewCatalogService(f.client, time.Minute, 4, time.Second)
	vm := newTestVersionManager(f.versions, "")
	f.svc = NewDashboardService(catalog, f.selections, f.prefs, vm, NewTreeBuilder(DepthNone()))
	return f
}

func TestGetBuildTree(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.ids = []string{"WebServices_Portal_Deploy", "Gone_Build"}

	view, err := f.svc.GetBuildTree(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.FreshnessFresh, view.Freshness)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, []string{"GO2 Version 611", "GO2 Version 612", "Web Services"}, view.Forest.Names())
	assert.Equal(t, []string{"WebServices_Portal_Deploy"}, view.SelectedIDs)

	plugins := view.Forest["GO2 Version 612"].Subprojects["Plugins"]
	require.NotNil(t, plugins)
	require.Len(t, plugins.Builds, 2)
	assert.Equal(t, "Go2Version612_Plugins_BuildDebug", plugins.Builds[0].ID)
}

func TestGetBuildTree_UpstreamUnavailable(t *testing.T) {
	f := newDashboardFixture(t)
	f.client.typesErr = driven.ErrUpstreamUnavailable

	view, err := f.svc.GetBuildTree(context.Background())

	assert.Nil(t, view)
	assert.ErrorIs(t, err, driven.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGetBuildTree_ZeroBuildsIsNotAnError(t *testing.T) {
	f := newDashboardFixture(t)
	f.client.buildTypes = nil

	view, err := f.svc.GetBuildTree(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, view.Total)
	assert.Empty(t, view.Forest)
	assert.Equal(t, model.FreshnessFresh, view.Freshness)
}

func TestGetFilteredTree(t *testing.T) {
	f := newDashboardFixture(t)

	view, err := f.svc.GetFilteredTree(context.Background())
	require.NoError(t, err)

	// Defaults list 612 and New as current. 611 is not in the default history
	// (which spells it 6.11) and New is absent upstream.
	assert.Equal(t, []string{"GO2 Version 611"}, view.Report.NewVersions)
	assert.Equal(t, []string{"GO2 Version New"}, view.Report.ObsoleteVersions)
	assert.True(t, view.Report.AutoUpdated)
	assert.Equal(t, []string{"GO2 Version 612", "GO2 Version 611"}, view.CurrentVersions)
	assert.ElementsMatch(t, []string{"GO2 Version 611", "GO2 Version 612"}, view.Forest.Names())
	assert.Empty(t, view.MissingVersions)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, []string{}, view.OtherSelectedIDs)
}

func TestGetFilteredTree_ReportsSelectionsOutsideTree(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.ids = []string{"WebServices_Portal_Deploy", "Go2Version612_Plugins_BuildDebug", "Gone_Build"}

	view, err := f.svc.GetFilteredTree(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Go2Version612_Plugins_BuildDebug"}, view.SelectedIDs)
	assert.Equal(t, []string{"Gone_Build", "WebServices_Portal_Deploy"}, view.OtherSelectedIDs)
}

func TestGetDashboardView(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.ids = []string{
		"Go2Version612_Plugins_BuildDebug",
		"Go2Version612_Plugins_BuildRelease",
		"Removed_Upstream",
	}

	view, err := f.svc.GetDashboardView(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, view.SelectedCount)
	assert.Equal(t, []string{"Removed_Upstream"}, view.MissingIDs)
	assert.Equal(t, model.StatusCounts{Total: 2, Success: 1, Failure: 1}, view.Counts)
	require.Len(t, view.Builds, 2)
	assert.Equal(t, 2, view.Forest.TotalBuilds())
	require.Len(t, view.Summaries, 1)
	assert.Equal(t, model.OverallStatusFailing, view.Summaries[0].Overall)
}

func TestGetDashboardView_DisplayFilter(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.ids = []string{"Go2Version612_Plugins_BuildDebug", "Go2Version612_Plugins_BuildRelease"}
	prefs := model.DefaultDisplayPreferences()
	prefs.ShowSuccess = false
	f.prefs.prefs = &prefs

	view, err := f.svc.GetDashboardView(context.Background())
	require.NoError(t, err)

	require.Len(t, view.Builds, 1)
	assert.Equal(t, "Go2Version612_Plugins_BuildRelease", view.Builds[0].ID)
	assert.Equal(t, 2, view.Counts.Total)
	assert.False(t, view.Preferences.ShowSuccess)
}

func TestGetDashboardView_PreferenceErrorUsesDefaults(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.ids = []string{"WebServices_Portal_Deploy"}
	f.prefs.err = errors.New("locked")

	view, err := f.svc.GetDashboardView(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.DefaultDisplayPreferences(), view.Preferences)
	assert.Len(t, view.Builds, 1)
}

func TestGetDashboardView_StaleIsServedWithWarning(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.ids = []string{"WebServices_Portal_Deploy"}
	ctx := context.Background()

	_, err := f.svc.GetDashboardView(ctx)
	require.NoError(t, err)

	f.client.typesErr = driven.ErrUpstreamUnavailable
	f.svc.catalog.builds.now = func() time.Time { return time.Now().Add(time.Hour) }

	view, err := f.svc.GetDashboardView(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.FreshnessStale, view.Freshness)
	assert.NotEmpty(t, view.Warning)
	assert.Len(t, view.Builds, 1)
}

func TestSaveSelection(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	ack, err := f.svc.SaveSelection(ctx, []string{"Go2Version612_Plugins_BuildDebug", " ", "Unknown_Id", "Go2Version612_Plugins_BuildDebug"})
	require.NoError(t, err)

	assert.Equal(t, 2, ack.Selected)
	assert.Equal(t, 1, ack.Unknown)
	assert.True(t, ack.Verified)
	assert.Equal(t, []string{"Go2Version612_Plugins_BuildDebug", "Unknown_Id"}, f.selections.ids)
	assert.Equal(t, model.SelectionMeta{ProjectName: "GO2 Version 612 / Plugins", BuildName: "BuildDebug"},
		f.selections.meta["Go2Version612_Plugins_BuildDebug"])

	ack, err = f.svc.SaveSelection(ctx, []string{"WebServices_Portal_Deploy"})
	require.NoError(t, err)
	assert.Equal(t, 1, ack.Selected)
	assert.Equal(t, []string{"WebServices_Portal_Deploy"}, f.selections.ids)
}

func TestSaveSelection_CatalogUnavailableStillSaves(t *testing.T) {
	f := newDashboardFixture(t)
	f.client.typesErr = driven.ErrUpstreamUnavailable

	ack, err := f.svc.SaveSelection(context.Background(), []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, 1, ack.Selected)
	assert.False(t, ack.Verified)
	assert.Equal(t, []string{"A"}, f.selections.ids)
}

func TestSaveSelection_StoreError(t *testing.T) {
	f := newDashboardFixture(t)
	f.selections.err = errors.New("disk I/O error")

	_, err := f.svc.SaveSelection(context.Background(), []string{"A"})
	assert.Error(t, err)
}

func TestPreferencesRoundTrip(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	prefs := model.DefaultDisplayPreferences()
	prefs.ShowRunning = false
	require.NoError(t, f.svc.UpdatePreferences(ctx, prefs))

	got, err := f.svc.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefs, got)
}

func TestDetectVersions(t *testing.T) {
	f := newDashboardFixture(t)

	report, err := f.svc.DetectVersions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"GO2 Version New"}, report.ObsoleteVersions)
}

func TestSelections(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveSelection(ctx, []string{"B", "A"})
	require.NoError(t, err)

	got, err := f.svc.Selections(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].BuildTypeID)
	assert.True(t, got[1].Selected)
}

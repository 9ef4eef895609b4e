package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		name  string
		build model.BuildRecord
		want  string
	}{
		{"running wins over status", model.BuildRecord{Status: model.BuildStatusFailure, State: model.BuildStateRunning}, "status-running"},
		{"success", model.BuildRecord{Status: model.BuildStatusSuccess, State: model.BuildStateFinished}, "status-success"},
		{"failure", model.BuildRecord{Status: model.BuildStatusFailure, State: model.BuildStateFinished}, "status-failure"},
		{"error", model.BuildRecord{Status: model.BuildStatusError, State: model.BuildStateFinished}, "status-failure"},
		{"unknown", model.BuildRecord{Status: model.BuildStatusUnknown}, "status-unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusClass(tt.build))
		})
	}
}

func TestToLayoutViewModel(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	meta := application.ViewMeta{Freshness: model.FreshnessStale, FetchedAt: fetched, Warning: "serving cached data"}

	t.Run("auto refresh on", func(t *testing.T) {
		prefs := model.DefaultDisplayPreferences()
		layout := toLayoutViewModel(meta, &prefs)
		assert.Equal(t, 30, layout.RefreshSeconds)
		assert.Equal(t, "stale", layout.Freshness)
		assert.Equal(t, "2026-03-01T12:00:00Z", layout.FetchedAt)
		assert.Equal(t, "serving cached data", layout.Warning)
	})

	t.Run("auto refresh off", func(t *testing.T) {
		prefs := model.DefaultDisplayPreferences()
		prefs.AutoRefresh = false
		assert.Zero(t, toLayoutViewModel(meta, &prefs).RefreshSeconds)
	})

	t.Run("no preferences", func(t *testing.T) {
		layout := toLayoutViewModel(application.ViewMeta{}, nil)
		assert.Zero(t, layout.RefreshSeconds)
		assert.Empty(t, layout.FetchedAt)
	})
}

func TestToDashboardViewModel_GroupsByProject(t *testing.T) {
	view := &application.DashboardView{
		Builds: []model.BuildRecord{
			{ID: "b", Name: "B", ProjectPath: []string{"Zeta"}, Status: model.BuildStatusSuccess, State: model.BuildStateFinished},
			{ID: "a", Name: "A", ProjectPath: []string{"Alpha", "Core"}, Status: model.BuildStatusFailure, State: model.BuildStateFinished},
			{ID: "c", Name: "C", ProjectPath: []string{"Zeta"}, State: model.BuildStateRunning},
		},
		Counts:        model.StatusCounts{Total: 3, Running: 1, Success: 1, Failure: 1},
		SelectedCount: 3,
		MissingIDs:    []string{},
		Preferences:   model.DefaultDisplayPreferences(),
	}

	page := toDashboardViewModel(view, []string{"GO2 Version 612"})

	require.Len(t, page.Groups, 2)
	assert.Equal(t, "Alpha / Core", page.Groups[0].ProjectName)
	assert.Equal(t, "Zeta", page.Groups[1].ProjectName)
	require.Len(t, page.Groups[1].Builds, 2)
	assert.True(t, page.Groups[1].Builds[1].Running)
	assert.Equal(t, "status-running", page.Groups[1].Builds[1].StatusClass)
	assert.Equal(t, 3, page.Counts.Total)
	assert.True(t, page.ShowStats)
	assert.Equal(t, []string{"GO2 Version 612"}, page.CurrentVersions)
}

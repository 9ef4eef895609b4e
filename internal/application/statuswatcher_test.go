package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

func TestStatusWatcher_PublishesTransitions(t *testing.T) {
	client := sampleCatalogClient()
	catalog := NewCatalogService(client, time.Minute, 2, time.Second)
	selections := &mockSelectionStore{ids: []string{"Go2Version612_Plugins_BuildDebug"}}
	pub := &mockPublisher{}
	w := NewStatusWatcher(catalog, selections, pub, time.Minute)
	ctx := context.Background()

	n, err := w.check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "first observation is a baseline")

	client.latest = statusByID(map[string]model.BuildStatus{
		"Go2Version612_Plugins_BuildDebug":   model.BuildStatusFailure,
		"Go2Version612_Plugins_BuildRelease": model.BuildStatusSuccess,
	})
	catalog.ForceRefreshBuilds()

	n, err = w.check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "Go2Version612_Plugins_BuildDebug", ev.BuildTypeID)
	assert.Equal(t, model.BuildStatusSuccess, ev.Previous)
	assert.Equal(t, model.BuildStatusFailure, ev.Current)
	assert.Equal(t, "GO2 Version 612 / Plugins", ev.ProjectName)
}

func TestStatusWatcher_WatchesAllWhenNothingSelected(t *testing.T) {
	client := sampleCatalogClient()
	catalog := NewCatalogService(client, time.Minute, 2, time.Second)
	pub := &mockPublisher{}
	w := NewStatusWatcher(catalog, &mockSelectionStore{}, pub, time.Minute)
	ctx := context.Background()

	_, err := w.check(ctx)
	require.NoError(t, err)

	client.latest = statusByID(map[string]model.BuildStatus{})
	catalog.ForceRefreshBuilds()

	n, err := w.check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestStatusWatcher_SkipsWhenCatalogUnavailable(t *testing.T) {
	client := &mockTeamCityClient{typesErr: errors.New("connection refused")}
	catalog := NewCatalogService(client, time.Minute, 1, time.Second)
	pub := &mockPublisher{}
	w := NewStatusWatcher(catalog, &mockSelectionStore{}, pub, time.Minute)

	_, err := w.check(context.Background())

	assert.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestStatusWatcher_Trigger(t *testing.T) {
	client := sampleCatalogClient()
	catalog := NewCatalogService(client, time.Minute, 2, time.Second)
	w := NewStatusWatcher(catalog, &mockSelectionStore{}, &mockPublisher{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	triggerCtx, triggerCancel := context.WithTimeout(ctx, 2*time.Second)
	defer triggerCancel()

	require.NoError(t, w.Trigger(triggerCtx))
}

func TestStatusWatcher_TriggerCanceled(t *testing.T) {
	catalog := NewCatalogService(sampleCatalogClient(), time.Minute, 1, time.Second)
	w := NewStatusWatcher(catalog, &mockSelectionStore{}, &mockPublisher{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.Trigger(ctx), context.Canceled)
}

func TestStatusWatcher_BacksOffWhenQuiet(t *testing.T) {
	client := sampleCatalogClient()
	catalog := NewCatalogService(client, time.Minute, 2, time.Second)
	selections := &mockSelectionStore{ids: []string{"Go2Version612_Plugins_BuildDebug"}}
	w := NewStatusWatcher(catalog, selections, &mockPublisher{}, time.Minute)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := w.check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Minute, w.nextInterval(), "no change seen yet")

	client.latest = statusByID(map[string]model.BuildStatus{
		"Go2Version612_Plugins_BuildDebug": model.BuildStatusFailure,
	})
	catalog.ForceRefreshBuilds()
	n, err := w.check(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, 2*time.Minute, w.nextInterval(), "recent change")

	client.latest = func(_ context.Context, id string, runningOnly bool) (*model.BuildRun, error) {
		if id != "Go2Version612_Plugins_BuildDebug" {
			return nil, nil
		}
		return &model.BuildRun{Number: "2", Status: model.BuildStatusFailure, State: model.BuildStateRunning}, nil
	}
	catalog.ForceRefreshBuilds()
	_, err = w.check(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, w.nextInterval(), "watched build running")
}

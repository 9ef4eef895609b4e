package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// checkRequest represents a manual check trigger.
type checkRequest struct {
	done chan error
}

// StatusWatcher periodically compares build statuses with the previous
// check and publishes an event for every transition. It watches the selected
// builds, or every build when nothing is selected. The wait between checks
// backs off from the base interval while the watched builds are quiet.
type StatusWatcher struct {
	catalog    *CatalogService
	selections driven.SelectionStore
	publisher  driven.EventPublisher
	interval   time.Duration
	now        func() time.Time

	previous   map[string]model.BuildStatus
	running    bool
	lastChange time.Time
	checkCh    chan checkRequest
}

// NewStatusWatcher creates a new StatusWatcher with all required dependencies.
func NewStatusWatcher(
	catalog *CatalogService,
	selections driven.SelectionStore,
	publisher driven.EventPublisher,
	interval time.Duration,
) *StatusWatcher {
	return &StatusWatcher{
		catalog:    catalog,
		selections: selections,
		publisher:  publisher,
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
		previous:   make(map[string]model.BuildStatus),
		checkCh:    make(chan checkRequest),
	}
}

// Start runs an immediate check, then checks again after the interval for
// the current activity tier. It also serves manual Trigger requests. Start
// blocks until the context is canceled.
func (w *StatusWatcher) Start(ctx context.Context) {
	if _, err := w.check(ctx); err != nil {
		slog.Error("initial status check failed", "error", err)
	}

	timer := time.NewTimer(w.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("status watcher stopped")
			return
		case <-timer.C:
			if _, err := w.check(ctx); err != nil {
				slog.Error("status check failed", "error", err)
			}
			timer.Reset(w.nextInterval())
		case req := <-w.checkCh:
			_, err := w.check(ctx)
			req.done <- err
		}
	}
}

// nextInterval must only be called from the Start goroutine.
func (w *StatusWatcher) nextInterval() time.Duration {
	tier := classifyActivity(w.running, w.lastChange, w.now())
	d := tierInterval(tier, w.interval)
	slog.Debug("next status check scheduled", "tier", tier.String(), "in", d)
	return d
}

// Trigger requests an immediate check, bypassing the interval. It blocks
// until the check completes or the context is canceled.
func (w *StatusWatcher) Trigger(ctx context.Context) error {
	done := make(chan error, 1)
	req := checkRequest{done: done}

	select {
	case w.checkCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// check compares the current statuses against the previous check and
// publishes transitions. Stale data is ignored since it carries no new
// information. It returns the number of events published.
func (w *StatusWatcher) check(ctx context.Context) (int, error) {
	res := w.catalog.Builds(ctx)
	if res.Freshness != model.FreshnessFresh {
		return 0, fmt.Errorf("check statuses: %w", res.Err)
	}

	ids, err := w.selections.SelectedIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("check statuses: %w", err)
	}
	watched := toSet(ids)

	published := 0
	running := false
	for _, rec := range res.Data {
		if len(watched) > 0 {
			if _, ok := watched[rec.ID]; !ok {
				continue
			}
		}
		if rec.IsRunning() {
			running = true
		}

		prev, seen := w.previous[rec.ID]
		w.previous[rec.ID] = rec.Status
		if !seen || prev == rec.Status {
			continue
		}

		event := model.BuildStatusEvent{
			BuildTypeID: rec.ID,
			ProjectName: rec.ProjectName(),
			BuildName:   rec.Name,
			Previous:    prev,
			Current:     rec.Status,
			State:       rec.State,
			WebURL:      rec.WebURL,
			ObservedAt:  w.now(),
		}
		if err := w.publisher.PublishStatusChange(ctx, event); err != nil {
			slog.Error("failed to publish status change", "build_type_id", rec.ID, "error", err)
			continue
		}
		published++
	}

	w.running = running
	if published > 0 {
		w.lastChange = w.now()
		slog.Info("status transitions published", "count", published)
	}
	return published, nil
}

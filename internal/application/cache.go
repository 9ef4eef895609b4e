package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// ErrNoData indicates a refresh failed and there was no earlier payload to fall back on.
var ErrNoData = errors.New("no cached data available")

// FetchFunc loads a fresh payload from upstream.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// snapshot is an immutable cache entry. It is replaced, never mutated.
type snapshot[T any] struct {
	payload   []T
	fetchedAt time.Time
}

// Result is the outcome of a cache read. Data is nil only when Freshness is
// FreshnessUnavailable; an empty non-nil Data means upstream confirmed zero items.
type Result[T any] struct {
	Data      []T
	Freshness model.Freshness
	FetchedAt time.Time
	Err       error // Set for stale and unavailable results.
}

// Warning returns a user-facing note for stale results, empty otherwise.
func (r Result[T]) Warning() string {
	if r.Freshness != model.FreshnessStale {
		return ""
	}
	return fmt.Sprintf("serving cached data from %s: %v", r.FetchedAt.UTC().Format(time.RFC3339), r.Err)
}

// CacheInfo describes the state of a cache for status reporting.
type CacheInfo struct {
	HasData   bool
	Count     int
	FetchedAt time.Time
	Age       time.Duration
	Expired   bool
	TTL       time.Duration
}

// SnapshotCache holds the last fetched payload for a single key with a TTL.
// Concurrent misses share one upstream fetch.
type SnapshotCache[T any] struct {
	name  string
	ttl   time.Duration
	fetch FetchFunc[T]
	now   func() time.Time

	current atomic.Pointer[snapshot[T]]
	group   singleflight.Group

	// mu orders snapshot stores against ForceRefresh. A fetch started before
	// the latest ForceRefresh never stores its payload.
	mu  sync.Mutex
	gen uint64
}

// NewSnapshotCache creates a cache named for logging that loads through fetch.
func NewSnapshotCache[T any](name string, ttl time.Duration, fetch FetchFunc[T]) *SnapshotCache[T] {
	return &SnapshotCache[T]{
		name:  name,
		ttl:   ttl,
		fetch: fetch,
		now:   time.Now,
	}
}

// Get returns the cached payload if it is younger than the TTL, otherwise
// refreshes it. A failed refresh falls back to the previous payload as stale,
// or reports unavailable when there is none.
func (c *SnapshotCache[T]) Get(ctx context.Context) Result[T] {
	if snap := c.current.Load(); snap != nil && c.now().Sub(snap.fetchedAt) < c.ttl {
		return Result[T]{Data: snap.payload, Freshness: model.FreshnessFresh, FetchedAt: snap.fetchedAt}
	}

	// The shared fetch must not be canceled by whichever caller started it.
	ch := c.group.DoChan(c.name, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err == nil {
			snap := res.Val.(*snapshot[T])
			return Result[T]{Data: snap.payload, Freshness: model.FreshnessFresh, FetchedAt: snap.fetchedAt}
		}
		return c.fallback(res.Err)
	case <-ctx.Done():
		return c.fallback(ctx.Err())
	}
}

// ForceRefresh drops the current entry so the next Get fetches from upstream.
func (c *SnapshotCache[T]) ForceRefresh() {
	c.mu.Lock()
	c.gen++
	c.current.Store(nil)
	c.group.Forget(c.name)
	c.mu.Unlock()
	slog.Info("cache cleared", "cache", c.name)
}

// Info reports the cache state without triggering a fetch. An empty cache
// reports as expired.
func (c *SnapshotCache[T]) Info() CacheInfo {
	info := CacheInfo{TTL: c.ttl, Expired: true}
	snap := c.current.Load()
	if snap == nil {
		return info
	}
	info.HasData = true
	info.Count = len(snap.payload)
	info.FetchedAt = snap.fetchedAt
	info.Age = c.now().Sub(snap.fetchedAt)
	info.Expired = info.Age >= c.ttl
	return info
}

func (c *SnapshotCache[T]) refresh(ctx context.Context) (*snapshot[T], error) {
	c.mu.Lock()
	startGen := c.gen
	c.mu.Unlock()

	payload, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", c.name, err)
	}
	if payload == nil {
		payload = []T{}
	}

	snap := &snapshot[T]{payload: payload, fetchedAt: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != startGen {
		slog.Debug("discarding superseded fetch", "cache", c.name)
		return snap, nil
	}
	c.current.Store(snap)
	slog.Debug("cache refreshed", "cache", c.name, "count", len(payload))
	return snap, nil
}

func (c *SnapshotCache[T]) fallback(err error) Result[T] {
	if snap := c.current.Load(); snap != nil {
		slog.Warn("serving stale cache", "cache", c.name, "age", c.now().Sub(snap.fetchedAt).Round(time.Second), "error", err)
		return Result[T]{Data: snap.payload, Freshness: model.FreshnessStale, FetchedAt: snap.fetchedAt, Err: err}
	}
	slog.Error("cache unavailable", "cache", c.name, "error", err)
	return Result[T]{Freshness: model.FreshnessUnavailable, Err: fmt.Errorf("%w: %w", ErrNoData, err)}
}

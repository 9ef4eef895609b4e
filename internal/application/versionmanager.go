package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// VersionManager maintains the whitelist of current top-level versions.
type VersionManager struct {
	store  driven.VersionStore
	marker string
	now    func() time.Time
	mu     sync.Mutex
}

// NewVersionManager creates a VersionManager that recognizes version
// projects by marker. An empty marker uses model.DefaultVersionMarker.
func NewVersionManager(store driven.VersionStore, marker string) *VersionManager {
	if marker == "" {
		marker = model.DefaultVersionMarker
	}
	return &VersionManager{
		store:  store,
		marker: marker,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Info returns the persisted configuration, or defaults when none is readable.
func (m *VersionManager) Info(ctx context.Context) model.VersionConfig {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx)
}

// UpdateCurrentVersions replaces the current versions and records them in
// the history. Empty and repeated names are dropped.
func (m *VersionManager) UpdateCurrentVersions(ctx context.Context, versions []string) (model.VersionConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.load(ctx)

	current := make([]string, 0, len(versions))
	for _, v := range versions {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(current, v) {
			current = append(current, v)
		}
	}

	cfg.CurrentVersions = current
	cfg.VersionHistory = union(cfg.VersionHistory, current)
	cfg.LastUpdated = m.now()

	if err := m.store.Save(ctx, cfg); err != nil {
		return cfg, fmt.Errorf("save version config: %w", err)
	}

	slog.Info("current versions updated", "versions", current)
	return cfg, nil
}

// DetectNewVersions reconciles the configuration against the top-level
// project names currently present upstream. It never fails: load and save
// problems are logged and detection proceeds on defaults.
func (m *VersionManager) DetectNewVersions(ctx context.Context, projectNames []string) model.VersionReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.load(ctx)

	candidates := m.matchMarker(projectNames)
	candidateSet := toSet(candidates)
	historySet := toSet(cfg.VersionHistory)

	newVersions := difference(candidates, historySet)
	obsolete := difference(cfg.CurrentVersions, candidateSet)
	missingInHistory := difference(candidates, historySet)

	report := model.VersionReport{
		NewVersions:      newVersions,
		ObsoleteVersions: obsolete,
		MissingInHistory: missingInHistory,
		CurrentVersions:  cfg.CurrentVersions,
		Recommendations:  []string{},
	}

	if !cfg.AutoDetect || (len(newVersions) == 0 && len(obsolete) == 0) {
		return report
	}

	cfg.VersionHistory = union(cfg.VersionHistory, newVersions)
	cfg.CurrentVersions = latestVersions(candidates, cfg.MaxVersions)
	cfg.LastUpdated = m.now()

	if len(newVersions) > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("New versions detected: %s", strings.Join(newVersions, ", ")))
	}
	report.Recommendations = append(report.Recommendations,
		fmt.Sprintf("Current versions updated: %s", strings.Join(cfg.CurrentVersions, ", ")))
	if len(obsolete) > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Obsolete versions detected: %s", strings.Join(obsolete, ", ")))
	}

	if err := m.store.Save(ctx, cfg); err != nil {
		slog.Error("failed to persist detected versions", "error", err)
	} else {
		report.AutoUpdated = true
	}

	report.CurrentVersions = cfg.CurrentVersions
	slog.Info("version detection applied",
		"new", newVersions,
		"obsolete", obsolete,
		"current", cfg.CurrentVersions,
	)

	return report
}

// load must be called with m.mu held.
func (m *VersionManager) load(ctx context.Context) model.VersionConfig {
	cfg, err := m.store.Load(ctx)
	if err != nil {
		slog.Warn("version config unreadable, using defaults", "error", err)
		return model.DefaultVersionConfig()
	}
	if cfg == nil {
		return model.DefaultVersionConfig()
	}
	if cfg.MaxVersions <= 0 {
		cfg.MaxVersions = model.DefaultVersionConfig().MaxVersions
	}
	return *cfg
}

// matchMarker returns the distinct names containing the marker, in input order.
func (m *VersionManager) matchMarker(names []string) []string {
	seen := make(map[string]struct{})
	var matched []string
	for _, name := range names {
		if !strings.Contains(name, m.marker) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		matched = append(matched, name)
	}
	return matched
}

// latestVersions sorts candidates in reverse lexical order and keeps the
// first max. Lexical order approximates recency; equal names keep input order.
func latestVersions(candidates []string, max int) []string {
	sorted := append([]string(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// difference returns the values of a not present in b, in a's order.
func difference(a []string, b map[string]struct{}) []string {
	out := []string{}
	for _, v := range a {
		if _, ok := b[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// union returns the sorted distinct values of a and b.
func union(a, b []string) []string {
	set := toSet(a)
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

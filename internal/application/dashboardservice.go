package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// ViewMeta describes how the catalog behind a view was served.
type ViewMeta struct {
	Freshness model.Freshness
	FetchedAt time.Time
	Warning   string
}

// BuildTreeView is the full build tree with selection flags.
type BuildTreeView struct {
	ViewMeta
	Forest      model.Forest
	Total       int
	Skipped     int
	SelectedIDs []string
}

// FilteredTreeView is the build tree restricted to current versions.
type FilteredTreeView struct {
	BuildTreeView
	CurrentVersions []string
	MissingVersions []string
	Report          model.VersionReport
	// OtherSelectedIDs are stored selections not present in Forest: builds
	// under non-current versions and ids missing upstream. Sorted.
	OtherSelectedIDs []string
}

// DashboardView is the set of selected builds shaped for display.
type DashboardView struct {
	ViewMeta
	Forest        model.Forest
	Builds        []model.BuildRecord // Selected builds that pass the display filter, by ID.
	Counts        model.StatusCounts  // Over every selected build found upstream.
	Summaries     []ProjectSummary
	SelectedCount int
	MissingIDs    []string // Selected but not present upstream.
	Preferences   model.DisplayPreferences
}

// SelectionAck confirms a saved selection.
type SelectionAck struct {
	Selected int
	Unknown  int // IDs not present in the current catalog; saved regardless.
	// Verified is false when the catalog was unavailable and Unknown was
	// not counted.
	Verified bool
}

// DashboardService assembles the served views from the catalog, the stored
// selection, preferences, and the current-version whitelist.
type DashboardService struct {
	catalog    *CatalogService
	selections driven.SelectionStore
	prefs      driven.PreferenceStore
	versions   *VersionManager
	builder    *TreeBuilder
}

// NewDashboardService creates a DashboardService with all required dependencies.
func NewDashboardService(
	catalog *CatalogService,
	selections driven.SelectionStore,
	prefs driven.PreferenceStore,
	versions *VersionManager,
	builder *TreeBuilder,
) *DashboardService {
	return &DashboardService{
		catalog:    catalog,
		selections: selections,
		prefs:      prefs,
		versions:   versions,
		builder:    builder,
	}
}

// GetBuildTree returns every build in a project forest with the stored
// selection applied.
func (s *DashboardService) GetBuildTree(ctx context.Context) (*BuildTreeView, error) {
	res := s.catalog.Builds(ctx)
	if res.Freshness == model.FreshnessUnavailable {
		return nil, fmt.Errorf("get build tree: %w", res.Err)
	}

	selected, err := s.selectedSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("get build tree: %w", err)
	}

	forest, stats := s.builder.Build(res.Data, selected)
	if stats.Skipped > 0 {
		slog.Warn("malformed build records skipped", "count", stats.Skipped)
	}

	return &BuildTreeView{
		ViewMeta:    metaFrom(res),
		Forest:      forest,
		Total:       forest.TotalBuilds(),
		Skipped:     stats.Skipped,
		SelectedIDs: SelectedIDs(forest),
	}, nil
}

// GetFilteredTree returns the build tree limited to the current versions.
// Version detection runs first so newly published versions appear.
func (s *DashboardService) GetFilteredTree(ctx context.Context) (*FilteredTreeView, error) {
	tree, err := s.GetBuildTree(ctx)
	if err != nil {
		return nil, err
	}

	report := s.versions.DetectNewVersions(ctx, tree.Forest.Names())
	filtered, missing := FilterTopLevel(tree.Forest, report.CurrentVersions)

	tree.Forest = filtered
	tree.Total = filtered.TotalBuilds()
	tree.SelectedIDs = SelectedIDs(filtered)

	stored, err := s.selections.SelectedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get filtered tree: %w", err)
	}
	shown := toSet(tree.SelectedIDs)
	other := []string{}
	for _, id := range stored {
		if _, ok := shown[id]; !ok {
			other = append(other, id)
		}
	}
	sort.Strings(other)

	return &FilteredTreeView{
		BuildTreeView:    *tree,
		CurrentVersions:  report.CurrentVersions,
		MissingVersions:  missing,
		Report:           report,
		OtherSelectedIDs: other,
	}, nil
}

// DetectVersions runs version detection against the current catalog.
func (s *DashboardService) DetectVersions(ctx context.Context) (model.VersionReport, error) {
	res := s.catalog.Builds(ctx)
	if res.Freshness == model.FreshnessUnavailable {
		return model.VersionReport{}, fmt.Errorf("detect versions: %w", res.Err)
	}
	return s.versions.DetectNewVersions(ctx, TopLevelProjects(res.Data)), nil
}

// GetDashboardView returns the selected builds with status counts. Selected
// IDs missing from the catalog are reported rather than dropped.
func (s *DashboardService) GetDashboardView(ctx context.Context) (*DashboardView, error) {
	res := s.catalog.Builds(ctx)
	if res.Freshness == model.FreshnessUnavailable {
		return nil, fmt.Errorf("get dashboard view: %w", res.Err)
	}

	ids, err := s.selections.SelectedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get dashboard view: %w", err)
	}

	prefs, err := s.prefs.GetDisplay(ctx)
	if err != nil {
		slog.Warn("display preferences unreadable, using defaults", "error", err)
		prefs = model.DefaultDisplayPreferences()
	}

	byID := make(map[string]model.BuildRecord, len(res.Data))
	for _, rec := range res.Data {
		byID[rec.ID] = rec
	}

	var found []model.BuildRecord
	missing := []string{}
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, rec)
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].ID < found[j].ID })

	shown := []model.BuildRecord{}
	selected := make(map[string]struct{}, len(found))
	for _, rec := range found {
		if prefs.Allows(rec) {
			shown = append(shown, rec)
			selected[rec.ID] = struct{}{}
		}
	}

	forest, _ := s.builder.Build(shown, selected)

	return &DashboardView{
		ViewMeta:      metaFrom(res),
		Forest:        forest,
		Builds:        shown,
		Counts:        CountStatuses(found),
		Summaries:     SummarizeForest(forest),
		SelectedCount: len(ids),
		MissingIDs:    missing,
		Preferences:   prefs,
	}, nil
}

// SaveSelection replaces the stored selection with ids. Display metadata is
// taken from the catalog when it is available.
func (s *DashboardService) SaveSelection(ctx context.Context, ids []string) (*SelectionAck, error) {
	clean := dedupeIDs(ids)

	meta := make(map[string]model.SelectionMeta, len(clean))
	unknown := 0

	res := s.catalog.Builds(ctx)
	verified := res.Freshness != model.FreshnessUnavailable
	if verified {
		byID := make(map[string]model.BuildRecord, len(res.Data))
		for _, rec := range res.Data {
			byID[rec.ID] = rec
		}
		for _, id := range clean {
			rec, ok := byID[id]
			if !ok {
				unknown++
				continue
			}
			meta[id] = model.SelectionMeta{ProjectName: rec.ProjectName(), BuildName: rec.Name}
		}
	}

	if err := s.selections.BulkReplace(ctx, clean, meta); err != nil {
		return nil, fmt.Errorf("save selection: %w", err)
	}

	slog.Info("selection saved", "selected", len(clean), "unknown", unknown, "verified", verified)
	return &SelectionAck{Selected: len(clean), Unknown: unknown, Verified: verified}, nil
}

// Preferences returns the display preferences.
func (s *DashboardService) Preferences(ctx context.Context) (model.DisplayPreferences, error) {
	prefs, err := s.prefs.GetDisplay(ctx)
	if err != nil {
		return model.DisplayPreferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferences stores new display preferences.
func (s *DashboardService) UpdatePreferences(ctx context.Context, prefs model.DisplayPreferences) error {
	if err := s.prefs.SetDisplay(ctx, prefs); err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	return nil
}

// Selections returns the stored selection with its display metadata.
func (s *DashboardService) Selections(ctx context.Context) ([]model.Selection, error) {
	sel, err := s.selections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	return sel, nil
}

func (s *DashboardService) selectedSet(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.selections.SelectedIDs(ctx)
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func metaFrom[T any](res Result[T]) ViewMeta {
	return ViewMeta{
		Freshness: res.Freshness,
		FetchedAt: res.FetchedAt,
		Warning:   res.Warning(),
	}
}

// dedupeIDs trims ids and drops empties and duplicates, keeping first occurrence.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package web

import (
	"sort"
	"time"

	vm "github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

const pageTitle = "TeamCity Dashboard"

func toLayoutViewModel(meta application.ViewMeta, prefs *model.DisplayPreferences) vm.LayoutViewModel {
	layout := vm.LayoutViewModel{
		Title:     pageTitle,
		Warning:   meta.Warning,
		Freshness: string(meta.Freshness),
	}
	if !meta.FetchedAt.IsZero() {
		layout.FetchedAt = meta.FetchedAt.UTC().Format(time.RFC3339)
	}
	if prefs != nil && prefs.AutoRefresh {
		layout.RefreshSeconds = int(prefs.RefreshInterval / time.Second)
	}
	return layout
}

// toDashboardViewModel converts the dashboard view into display rows grouped
// by project path. Groups are ordered by project name.
func toDashboardViewModel(view *application.DashboardView, currentVersions []string) vm.DashboardViewModel {
	groupIndex := make(map[string]int)
	var groups []vm.BuildGroupViewModel

	for _, b := range view.Builds {
		name := b.ProjectName()
		idx, ok := groupIndex[name]
		if !ok {
			idx = len(groups)
			groupIndex[name] = idx
			groups = append(groups, vm.BuildGroupViewModel{ProjectName: name})
		}
		groups[idx].Builds = append(groups[idx].Builds, toBuildRowViewModel(b))
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].ProjectName < groups[j].ProjectName })

	summaries := make([]vm.ProjectSummaryViewModel, 0, len(view.Summaries))
	for _, s := range view.Summaries {
		summaries = append(summaries, vm.ProjectSummaryViewModel{
			Name:        s.Name,
			Overall:     string(s.Overall),
			StatusClass: overallClass(s.Overall),
			BuildCount:  s.Counts.Total,
		})
	}

	return vm.DashboardViewModel{
		Layout:    toLayoutViewModel(view.ViewMeta, &view.Preferences),
		ShowStats: view.Preferences.ShowStats,
		Counts: vm.CountsViewModel{
			Total:   view.Counts.Total,
			Running: view.Counts.Running,
			Success: view.Counts.Success,
			Failure: view.Counts.Failure,
			Unknown: view.Counts.Unknown,
		},
		Summaries:       summaries,
		Groups:          groups,
		MissingIDs:      view.MissingIDs,
		SelectedCount:   view.SelectedCount,
		CurrentVersions: currentVersions,
	}
}

func toBuildRowViewModel(b model.BuildRecord) vm.BuildRowViewModel {
	return vm.BuildRowViewModel{
		ID:             b.ID,
		Name:           b.Name,
		Status:         string(b.Status),
		StatusClass:    statusClass(b),
		State:          string(b.State),
		Running:        b.IsRunning(),
		Number:         b.Number,
		StatusTextHTML: RenderStatusText(b.StatusText),
		WebURL:         b.WebURL,
	}
}

// toSelectionViewModel flattens the filtered tree into display order:
// top-level projects by name, then depth-first with subprojects by name.
func toSelectionViewModel(view *application.FilteredTreeView, csrf string, saved bool) vm.SelectionViewModel {
	var nodes []vm.TreeNodeViewModel

	var walk func(n *model.ProjectNode, depth int)
	walk = func(n *model.ProjectNode, depth int) {
		node := vm.TreeNodeViewModel{Name: n.Name, Depth: depth}
		for _, b := range n.Builds {
			node.Builds = append(node.Builds, vm.SelectableBuildViewModel{
				ID:          b.ID,
				Name:        b.Name,
				Status:      string(b.Status),
				StatusClass: statusClass(b.BuildRecord),
				Selected:    b.Selected,
			})
		}
		nodes = append(nodes, node)
		for _, name := range n.SubprojectNames() {
			walk(n.Subprojects[name], depth+1)
		}
	}
	for _, name := range view.Forest.Names() {
		walk(view.Forest[name], 0)
	}

	return vm.SelectionViewModel{
		Layout:              toLayoutViewModel(view.ViewMeta, nil),
		CSRFToken:           csrf,
		Nodes:               nodes,
		Total:               view.Total,
		SelectedCount:       len(view.SelectedIDs),
		CurrentVersions:     view.CurrentVersions,
		MissingVersions:     view.MissingVersions,
		RecommendationsHTML: RenderRecommendations(view.Report.Recommendations),
		Saved:               saved,
		PreservedIDs:        view.OtherSelectedIDs,
	}
}

func statusClass(b model.BuildRecord) string {
	switch {
	case b.IsRunning():
		return "status-running"
	case b.Status == model.BuildStatusSuccess:
		return "status-success"
	case b.Status.IsFailing():
		return "status-failure"
	default:
		return "status-unknown"
	}
}

func overallClass(s model.OverallStatus) string {
	switch s {
	case model.OverallStatusPassing:
		return "status-success"
	case model.OverallStatusFailing:
		return "status-failure"
	case model.OverallStatusRunning:
		return "status-running"
	default:
		return "status-unknown"
	}
}

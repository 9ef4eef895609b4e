package application

import (
	"log/slog"
	"sort"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// Filler segments used when a depth policy pads short paths.
const (
	fillerCategory    = "General"
	fillerSubcategory = "Builds"
)

// DepthPolicy controls where builds land in the tree.
// The zero value places each build at the depth implied by its path.
type DepthPolicy struct {
	force int
}

// DepthNone places builds at the depth of their path.
func DepthNone() DepthPolicy { return DepthPolicy{} }

// DepthForce pads shorter paths with filler segments until they have n segments.
// Longer paths are left intact.
func DepthForce(n int) DepthPolicy { return DepthPolicy{force: n} }

func (p DepthPolicy) apply(path []string) []string {
	if p.force <= len(path) {
		return path
	}
	padded := make([]string, 0, p.force)
	padded = append(padded, path...)
	for len(padded) < p.force {
		if len(padded) == 1 {
			padded = append(padded, fillerCategory)
		} else {
			padded = append(padded, fillerSubcategory)
		}
	}
	return padded
}

// TreeStats reports what a Build call did with its input.
type TreeStats struct {
	Placed  int
	Skipped int
}

// TreeBuilder converts flat build records into a project forest.
type TreeBuilder struct {
	policy DepthPolicy
}

// NewTreeBuilder creates a TreeBuilder with the given depth policy.
func NewTreeBuilder(policy DepthPolicy) *TreeBuilder {
	return &TreeBuilder{policy: policy}
}

// Build places every record at the node matching its path. Records with an
// empty ID or path are skipped and counted. Builds at each node are sorted
// by ID so any input permutation yields the same tree. selected marks which
// IDs carry the selected flag; it may be nil.
func (b *TreeBuilder) Build(records []model.BuildRecord, selected map[string]struct{}) (model.Forest, TreeStats) {
	forest := make(model.Forest)
	var stats TreeStats

	for _, rec := range records {
		if rec.ID == "" || len(rec.ProjectPath) == 0 {
			stats.Skipped++
			slog.Debug("skipping malformed build record", "id", rec.ID, "name", rec.Name)
			continue
		}

		path := b.policy.apply(rec.ProjectPath)

		node, ok := forest[path[0]]
		if !ok {
			node = model.NewProjectNode(path[0])
			forest[path[0]] = node
		}
		for _, seg := range path[1:] {
			node = node.Child(seg)
		}

		_, isSelected := selected[rec.ID]
		node.Builds = append(node.Builds, model.TreeBuild{BuildRecord: rec, Selected: isSelected})
		stats.Placed++
	}

	for _, node := range forest {
		sortBuilds(node)
	}

	return forest, stats
}

func sortBuilds(node *model.ProjectNode) {
	sort.SliceStable(node.Builds, func(i, j int) bool {
		return node.Builds[i].ID < node.Builds[j].ID
	})
	for _, sub := range node.Subprojects {
		sortBuilds(sub)
	}
}

// SelectedIDs returns the IDs of selected builds in the forest, in walk order.
func SelectedIDs(forest model.Forest) []string {
	ids := []string{}
	forest.Walk(func(b *model.TreeBuild) {
		if b.Selected {
			ids = append(ids, b.ID)
		}
	})
	return ids
}

// FilterTopLevel keeps only the named top-level projects. Names with no
// matching project are returned as missing.
func FilterTopLevel(forest model.Forest, names []string) (model.Forest, []string) {
	filtered := make(model.Forest, len(names))
	missing := []string{}
	for _, name := range names {
		node, ok := forest[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		filtered[name] = node
	}
	return filtered, missing
}

// CountStatuses tallies running, success, and failure builds. Running is
// decided by state; success and failure by status.
func CountStatuses(records []model.BuildRecord) model.StatusCounts {
	var c model.StatusCounts
	for _, rec := range records {
		c.Total++
		switch {
		case rec.IsRunning():
			c.Running++
		case rec.Status == model.BuildStatusSuccess:
			c.Success++
		case rec.Status.IsFailing():
			c.Failure++
		default:
			c.Unknown++
		}
	}
	return c
}

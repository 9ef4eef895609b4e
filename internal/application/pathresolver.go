package application

import (
	"strings"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// syntheticRootNames are project names the CI server uses for its implicit
// root. They never appear in a resolved path. Compared case-insensitively.
var syntheticRootNames = map[string]struct{}{
	"<root project>": {},
	"root project":   {},
	"root":           {},
	"projects":       {},
}

// PathResolver reconstructs project paths from parent links.
type PathResolver struct {
	projects map[string]model.Project
}

// NewPathResolver indexes projects by ID. Later duplicates overwrite earlier ones.
func NewPathResolver(projects []model.Project) *PathResolver {
	index := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		index[p.ID] = p
	}
	return &PathResolver{projects: index}
}

// HasMetadata reports whether any project metadata was loaded.
func (r *PathResolver) HasMetadata() bool {
	return len(r.projects) > 0
}

// Resolve returns the path from the outermost ancestor down to projectID.
// A cycle or a missing parent ends the walk. When no project metadata is
// loaded, or projectID is unknown, the flat fallback name is split instead.
func (r *PathResolver) Resolve(projectID, fallback string) []string {
	if !r.HasMetadata() {
		return SplitProjectName(fallback)
	}
	if _, ok := r.projects[projectID]; !ok {
		return SplitProjectName(fallback)
	}

	var reversed []string
	visited := make(map[string]struct{})

	for id := projectID; id != ""; {
		if _, seen := visited[id]; seen {
			break
		}
		visited[id] = struct{}{}

		p, ok := r.projects[id]
		if !ok {
			break
		}
		if !isSyntheticRoot(p.Name) {
			reversed = append(reversed, strings.TrimSpace(p.Name))
		}
		id = p.ParentID
	}

	path := make([]string, len(reversed))
	for i, name := range reversed {
		path[len(reversed)-1-i] = name
	}
	return path
}

// IsArchived reports whether the project or its direct parent is archived.
func (r *PathResolver) IsArchived(projectID string) bool {
	p, ok := r.projects[projectID]
	if !ok {
		return false
	}
	if p.Archived {
		return true
	}
	parent, ok := r.projects[p.ParentID]
	return ok && parent.Archived
}

// SplitProjectName splits a display path on the separator, trimming each
// segment and dropping empty ones and synthetic root names.
func SplitProjectName(name string) []string {
	var path []string
	for _, seg := range strings.Split(name, model.PathSeparator) {
		seg = strings.TrimSpace(seg)
		if seg == "" || isSyntheticRoot(seg) {
			continue
		}
		path = append(path, seg)
	}
	return path
}

func isSyntheticRoot(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return true
	}
	_, ok := syntheticRootNames[strings.ToLower(trimmed)]
	return ok
}

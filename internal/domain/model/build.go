package model

import "strings"

// PathSeparator joins project path segments for display.
const PathSeparator = " / "

// BuildRecord is the latest known state of a single build configuration.
// Identity is the configuration ID, not a run ID.
type BuildRecord struct {
	ID          string      // Build configuration ID (e.g., "Go2Version612_Plugins_BuildDebug").
	Name        string      // Build configuration display name.
	ProjectPath []string    // Ordered project names, outermost ancestor first.
	Status      BuildStatus // Status of the latest run.
	State       BuildState  // State of the latest run.
	Number      string      // Build number of the latest run, empty if never run.
	StatusText  string      // Free-form status text reported by the CI server.
	WebURL      string      // Link to the configuration or latest run in the CI UI.
}

// ProjectName returns the project path joined for display.
func (b BuildRecord) ProjectName() string {
	return strings.Join(b.ProjectPath, PathSeparator)
}

// TopProject returns the outermost project name, or empty for an unplaced record.
func (b BuildRecord) TopProject() string {
	if len(b.ProjectPath) == 0 {
		return ""
	}
	return b.ProjectPath[0]
}

// IsRunning reports whether the latest run is in progress.
func (b BuildRecord) IsRunning() bool {
	return b.State == BuildStateRunning
}

// BuildType is a build configuration as listed by the CI server, before
// its project path has been resolved.
type BuildType struct {
	ID             string
	Name           string
	ProjectID      string
	ProjectName    string // Flat display path as reported upstream.
	WebURL         string
	Archived       bool
	ParentArchived bool
}

// Project is a CI project folder with a link to its parent.
type Project struct {
	ID       string
	Name     string
	ParentID string
	Archived bool
}

// BuildRun is the latest run of a build configuration.
type BuildRun struct {
	ID         int64
	Number     string
	Status     BuildStatus
	State      BuildState
	StatusText string
	WebURL     string
}

// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// LayoutViewModel holds page-level data shared by every page.
type LayoutViewModel struct {
	Title          string
	RefreshSeconds int // Zero disables the meta refresh.
	Warning        string
	Freshness      string
	FetchedAt      string
}

// CountsViewModel holds the status tallies shown in the stats bar.
type CountsViewModel struct {
	Total   int
	Running int
	Success int
	Failure int
	Unknown int
}

// ProjectSummaryViewModel is one top-level project badge.
type ProjectSummaryViewModel struct {
	Name        string
	Overall     string
	StatusClass string
	BuildCount  int
}

// BuildRowViewModel is one build row on the dashboard.
type BuildRowViewModel struct {
	ID             string
	Name           string
	Status         string
	StatusClass    string
	State          string
	Running        bool
	Number         string
	StatusTextHTML string // Pre-sanitized HTML.
	WebURL         string
}

// BuildGroupViewModel groups dashboard rows by full project path.
type BuildGroupViewModel struct {
	ProjectName string
	Builds      []BuildRowViewModel
}

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	Layout          LayoutViewModel
	ShowStats       bool
	Counts          CountsViewModel
	Summaries       []ProjectSummaryViewModel
	Groups          []BuildGroupViewModel
	MissingIDs      []string
	SelectedCount   int
	CurrentVersions []string
}

// SelectableBuildViewModel is one checkbox on the selection page.
type SelectableBuildViewModel struct {
	ID          string
	Name        string
	Status      string
	StatusClass string
	Selected    bool
}

// TreeNodeViewModel is one project folder on the selection page, flattened
// in display order with its depth.
type TreeNodeViewModel struct {
	Name   string
	Depth  int
	Builds []SelectableBuildViewModel
}

// SelectionViewModel holds everything the selection page renders.
type SelectionViewModel struct {
	Layout              LayoutViewModel
	CSRFToken           string
	Nodes               []TreeNodeViewModel
	Total               int
	SelectedCount       int
	CurrentVersions     []string
	MissingVersions     []string
	RecommendationsHTML string // Pre-sanitized HTML.
	Saved               bool
	PreservedIDs        []string // Selected but not shown; submitted as hidden fields.
}

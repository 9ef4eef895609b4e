package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// freshnessFields is embedded in every response backed by the catalog cache.
type freshnessFields struct {
	Freshness string `json:"freshness"`
	FetchedAt string `json:"fetched_at,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// BuildResponse is the JSON representation of a build configuration and its latest run.
type BuildResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ProjectName string   `json:"project_name"`
	ProjectPath []string `json:"project_path"`
	Status      string   `json:"status"`
	State       string   `json:"state"`
	Number      string   `json:"number,omitempty"`
	StatusText  string   `json:"status_text,omitempty"`
	WebURL      string   `json:"web_url"`
	Selected    bool     `json:"selected"`
}

// BuildListResponse is the flat list of builds.
type BuildListResponse struct {
	freshnessFields
	Builds          []BuildResponse `json:"builds"`
	Count           int             `json:"count"`
	CacheAgeSeconds float64         `json:"cache_age_seconds"`
	Message         string          `json:"message,omitempty"`
}

// ProjectNodeResponse is one node of the project tree.
type ProjectNodeResponse struct {
	Name        string                         `json:"name"`
	Subprojects map[string]ProjectNodeResponse `json:"subprojects"`
	Builds      []BuildResponse                `json:"builds"`
	BuildCount  int                            `json:"build_count"`
}

// TreeResponse is the full build tree with selection state.
type TreeResponse struct {
	freshnessFields
	Projects       map[string]ProjectNodeResponse `json:"projects"`
	TotalBuilds    int                            `json:"total_builds"`
	SelectedBuilds []string                       `json:"selected_builds"`
	Skipped        int                            `json:"skipped"`
}

// FilteredTreeResponse is the build tree limited to current versions.
type FilteredTreeResponse struct {
	TreeResponse
	CurrentVersions []string              `json:"current_versions"`
	MissingVersions []string              `json:"missing_versions"`
	VersionInfo     VersionReportResponse `json:"version_info"`
}

// StatusCountsResponse is the JSON representation of build status counts.
type StatusCountsResponse struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Success int `json:"success"`
	Failure int `json:"failure"`
	Unknown int `json:"unknown"`
}

// ProjectSummaryResponse is the rolled-up status of one top-level project.
type ProjectSummaryResponse struct {
	Name    string               `json:"name"`
	Overall string               `json:"overall"`
	Counts  StatusCountsResponse `json:"counts"`
}

// DashboardResponse is the dashboard view of the selected builds.
type DashboardResponse struct {
	freshnessFields
	Projects      map[string]ProjectNodeResponse `json:"projects"`
	Builds        []BuildResponse                `json:"builds"`
	Counts        StatusCountsResponse           `json:"counts"`
	Summaries     []ProjectSummaryResponse       `json:"summaries"`
	SelectedCount int                            `json:"selected_count"`
	MissingBuilds []string                       `json:"missing_builds"`
	Preferences   DisplayPreferencesResponse     `json:"preferences"`
}

// SelectionRequest is the JSON body for saving the build selection.
type SelectionRequest struct {
	SelectedBuilds []string `json:"selected_builds"`
}

// SelectionResponse acknowledges a saved selection. UnknownCount is null
// when the catalog was unavailable and the IDs could not be checked.
type SelectionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SelectedCount int    `json:"selected_count"`
	UnknownCount  *int   `json:"unknown_count"`
}

// SelectionEntryResponse is one stored selection.
type SelectionEntryResponse struct {
	BuildTypeID string `json:"build_type_id"`
	ProjectName string `json:"project_name"`
	BuildName   string `json:"build_name"`
	SelectedAt  string `json:"selected_at"`
}

// AgentResponse is the JSON representation of a build agent.
type AgentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TypeID     string `json:"type_id"`
	Status     string `json:"status"`
	Connected  bool   `json:"connected"`
	Enabled    bool   `json:"enabled"`
	Authorized bool   `json:"authorized"`
	UpToDate   bool   `json:"up_to_date"`
	Healthy    bool   `json:"healthy"`
	WebURL     string `json:"web_url,omitempty"`
}

// AgentListResponse is the list of build agents.
type AgentListResponse struct {
	freshnessFields
	Agents          []AgentResponse `json:"agents"`
	Count           int             `json:"count"`
	Healthy         int             `json:"healthy"`
	CacheAgeSeconds float64         `json:"cache_age_seconds"`
	Message         string          `json:"message,omitempty"`
}

// CacheInfoResponse describes one catalog cache.
type CacheInfoResponse struct {
	HasData         bool     `json:"has_data"`
	Count           int      `json:"count"`
	AgeSeconds      *float64 `json:"age_seconds"`
	Expired         bool     `json:"expired"`
	TTLSeconds      float64  `json:"ttl_seconds"`
	LastFetchedTime string   `json:"last_fetched_at,omitempty"`
}

// StatusResponse reports the upstream connection and cache state.
type StatusResponse struct {
	Status      string            `json:"status"`
	TeamCityURL string            `json:"teamcity_url"`
	Demo        bool              `json:"demo"`
	Builds      CacheInfoResponse `json:"builds_cache"`
	Agents      CacheInfoResponse `json:"agents_cache"`
}

// VersionConfigResponse is the JSON representation of the current-versions document.
type VersionConfigResponse struct {
	CurrentVersions []string `json:"current_versions"`
	VersionHistory  []string `json:"version_history"`
	AutoDetect      bool     `json:"auto_detect"`
	MaxVersions     int      `json:"max_versions"`
	LastUpdated     string   `json:"last_updated,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// VersionReportResponse is the outcome of a version detection pass.
type VersionReportResponse struct {
	NewVersions      []string `json:"new_versions"`
	ObsoleteVersions []string `json:"obsolete_versions"`
	MissingInHistory []string `json:"missing_in_history"`
	CurrentVersions  []string `json:"current_versions"`
	Recommendations  []string `json:"recommendations"`
	AutoUpdated      bool     `json:"auto_updated"`
}

// DetectVersionsResponse is returned by the detection endpoint.
type DetectVersionsResponse struct {
	Success           bool                  `json:"success"`
	VersionInfo       VersionReportResponse `json:"version_info"`
	AvailableProjects []string              `json:"available_projects"`
}

// UpdateVersionsRequest is the JSON body for overriding the current versions.
type UpdateVersionsRequest struct {
	Versions []string `json:"versions"`
}

// DisplayPreferencesResponse is the JSON representation of display preferences.
type DisplayPreferencesResponse struct {
	ShowSuccess            bool `json:"show_success"`
	ShowFailure            bool `json:"show_failure"`
	ShowRunning            bool `json:"show_running"`
	ShowStats              bool `json:"show_stats"`
	AutoRefresh            bool `json:"auto_refresh"`
	RefreshIntervalSeconds int  `json:"refresh_interval_seconds"`
}

// DisplayPreferencesRequest is a partial update of display preferences.
// Omitted fields keep their stored value.
type DisplayPreferencesRequest struct {
	ShowSuccess            *bool `json:"show_success"`
	ShowFailure            *bool `json:"show_failure"`
	ShowRunning            *bool `json:"show_running"`
	ShowStats              *bool `json:"show_stats"`
	AutoRefresh            *bool `json:"auto_refresh"`
	RefreshIntervalSeconds *int  `json:"refresh_interval_seconds"`
}

// ConfigResponse is the dashboard configuration.
type ConfigResponse struct {
	Display         DisplayPreferencesResponse `json:"display"`
	Selections      []SelectionEntryResponse   `json:"selections"`
	SelectedBuilds  []string                   `json:"selected_builds"`
	TotalSelected   int                        `json:"total_selected"`
	CurrentVersions []string                   `json:"current_versions"`
	CacheTTLSeconds float64                    `json:"cache_ttl_seconds"`
}

// HealthResponse is the JSON response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toFreshness(meta application.ViewMeta) freshnessFields {
	return resultFreshness(meta.Freshness, meta.FetchedAt, meta.Warning)
}

func toBuildResponse(b model.BuildRecord, selected bool) BuildResponse {
	path := b.ProjectPath
	if path == nil {
		path = []string{}
	}
	return BuildResponse{
		ID:          b.ID,
		Name:        b.Name,
		ProjectName: b.ProjectName(),
		ProjectPath: path,
		Status:      string(b.Status),
		State:       string(b.State),
		Number:      b.Number,
		StatusText:  b.StatusText,
		WebURL:      b.WebURL,
		Selected:    selected,
	}
}

func toBuildResponses(records []model.BuildRecord, selected map[string]struct{}) []BuildResponse {
	out := make([]BuildResponse, 0, len(records))
	for _, rec := range records {
		_, ok := selected[rec.ID]
		out = append(out, toBuildResponse(rec, ok))
	}
	return out
}

func toProjectNodeResponse(n *model.ProjectNode) ProjectNodeResponse {
	resp := ProjectNodeResponse{
		Name:        n.Name,
		Subprojects: make(map[string]ProjectNodeResponse, len(n.Subprojects)),
		Builds:      make([]BuildResponse, 0, len(n.Builds)),
		BuildCount:  n.BuildCount(),
	}
	for _, b := range n.Builds {
		resp.Builds = append(resp.Builds, toBuildResponse(b.BuildRecord, b.Selected))
	}
	for name, sub := range n.Subprojects {
		resp.Subprojects[name] = toProjectNodeResponse(sub)
	}
	return resp
}

func toProjectsResponse(forest model.Forest) map[string]ProjectNodeResponse {
	out := make(map[string]ProjectNodeResponse, len(forest))
	for name, node := range forest {
		out[name] = toProjectNodeResponse(node)
	}
	return out
}

func toTreeResponse(view application.BuildTreeView) TreeResponse {
	selected := view.SelectedIDs
	if selected == nil {
		selected = []string{}
	}
	return TreeResponse{
		freshnessFields: toFreshness(view.ViewMeta),
		Projects:        toProjectsResponse(view.Forest),
		TotalBuilds:     view.Total,
		SelectedBuilds:  selected,
		Skipped:         view.Skipped,
	}
}

func toStatusCountsResponse(c model.StatusCounts) StatusCountsResponse {
	return StatusCountsResponse{
		Total:   c.Total,
		Running: c.Running,
		Success: c.Success,
		Failure: c.Failure,
		Unknown: c.Unknown,
	}
}

func toDashboardResponse(view application.DashboardView) DashboardResponse {
	selected := make(map[string]struct{}, len(view.Builds))
	for _, b := range view.Builds {
		selected[b.ID] = struct{}{}
	}

	summaries := make([]ProjectSummaryResponse, 0, len(view.Summaries))
	for _, s := range view.Summaries {
		summaries = append(summaries, ProjectSummaryResponse{
			Name:    s.Name,
			Overall: string(s.Overall),
			Counts:  toStatusCountsResponse(s.Counts),
		})
	}

	missing := view.MissingIDs
	if missing == nil {
		missing = []string{}
	}

	return DashboardResponse{
		freshnessFields: toFreshness(view.ViewMeta),
		Projects:        toProjectsResponse(view.Forest),
		Builds:          toBuildResponses(view.Builds, selected),
		Counts:          toStatusCountsResponse(view.Counts),
		Summaries:       summaries,
		SelectedCount:   view.SelectedCount,
		MissingBuilds:   missing,
		Preferences:     toDisplayPreferencesResponse(view.Preferences),
	}
}

func toAgentResponse(a model.Agent) AgentResponse {
	return AgentResponse{
		ID:         a.ID,
		Name:       a.Name,
		TypeID:     a.TypeID,
		Status:     a.StatusLabel(),
		Connected:  a.Connected,
		Enabled:    a.Enabled,
		Authorized: a.Authorized,
		UpToDate:   a.UpToDate,
		Healthy:    a.Healthy(),
		WebURL:     a.WebURL,
	}
}

func toCacheInfoResponse(info application.CacheInfo) CacheInfoResponse {
	resp := CacheInfoResponse{
		HasData:    info.HasData,
		Count:      info.Count,
		Expired:    info.Expired,
		TTLSeconds: info.TTL.Seconds(),
	}
	if info.HasData {
		age := info.Age.Seconds()
		resp.AgeSeconds = &age
		resp.LastFetchedTime = formatTime(info.FetchedAt)
	}
	return resp
}

func toVersionConfigResponse(cfg model.VersionConfig) VersionConfigResponse {
	return VersionConfigResponse{
		CurrentVersions: nonNil(cfg.CurrentVersions),
		VersionHistory:  nonNil(cfg.VersionHistory),
		AutoDetect:      cfg.AutoDetect,
		MaxVersions:     cfg.MaxVersions,
		LastUpdated:     formatTime(cfg.LastUpdated),
		Notes:           cfg.Notes,
	}
}

func toVersionReportResponse(r model.VersionReport) VersionReportResponse {
	return VersionReportResponse{
		NewVersions:      nonNil(r.NewVersions),
		ObsoleteVersions: nonNil(r.ObsoleteVersions),
		MissingInHistory: nonNil(r.MissingInHistory),
		CurrentVersions:  nonNil(r.CurrentVersions),
		Recommendations:  nonNil(r.Recommendations),
		AutoUpdated:      r.AutoUpdated,
	}
}

func toDisplayPreferencesResponse(p model.DisplayPreferences) DisplayPreferencesResponse {
	return DisplayPreferencesResponse{
		ShowSuccess:            p.ShowSuccess,
		ShowFailure:            p.ShowFailure,
		ShowRunning:            p.ShowRunning,
		ShowStats:              p.ShowStats,
		AutoRefresh:            p.AutoRefresh,
		RefreshIntervalSeconds: int(p.RefreshInterval / time.Second),
	}
}

func toSelectionEntryResponse(s model.Selection) SelectionEntryResponse {
	return SelectionEntryResponse{
		BuildTypeID: s.BuildTypeID,
		ProjectName: s.ProjectName,
		BuildName:   s.BuildName,
		SelectedAt:  formatTime(s.SelectedAt),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

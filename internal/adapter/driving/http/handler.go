package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// ServerInfo is the static deployment information reported by status endpoints.
type ServerInfo struct {
	TeamCityURL string
	Demo        bool
	CacheTTL    time.Duration
}

// triggerTimeout bounds how long a force refresh waits for the status watcher.
const triggerTimeout = 10 * time.Second

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	catalog   *application.CatalogService
	dashboard *application.DashboardService
	versions  *application.VersionManager
	watcher   *application.StatusWatcher
	info      ServerInfo
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. watcher may
// be nil when status watching is disabled.
func NewHandler(
	catalog *application.CatalogService,
	dashboard *application.DashboardService,
	versions *application.VersionManager,
	watcher *application.StatusWatcher,
	info ServerInfo,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:   catalog,
		dashboard: dashboard,
		versions:  versions,
		watcher:   watcher,
		info:      info,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/builds", h.ListBuilds)
	mux.HandleFunc("GET /api/v1/builds/tree", h.GetBuildTree)
	mux.HandleFunc("GET /api/v1/builds/tree/filtered", h.GetFilteredTree)
	mux.HandleFunc("POST /api/v1/builds/tree/selection", h.SaveSelection)
	mux.HandleFunc("GET /api/v1/builds/dashboard", h.GetDashboard)
	mux.HandleFunc("GET /api/v1/teamcity/builds", h.ListTeamCityBuilds)
	mux.HandleFunc("POST /api/v1/teamcity/builds/force-refresh", h.ForceRefreshBuilds)
	mux.HandleFunc("GET /api/v1/teamcity/status", h.TeamCityStatus)
	mux.HandleFunc("GET /api/v1/agents", h.ListAgents)
	mux.HandleFunc("POST /api/v1/agents/force-refresh", h.ForceRefreshAgents)
	mux.HandleFunc("GET /api/v1/versions/info", h.VersionInfo)
	mux.HandleFunc("POST /api/v1/versions/update", h.UpdateVersions)
	mux.HandleFunc("POST /api/v1/versions/detect", h.DetectVersions)
	mux.HandleFunc("GET /api/v1/config", h.GetConfig)
	mux.HandleFunc("PUT /api/v1/config/display", h.UpdateDisplay)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with all API routes registered and
// wrapped with the standard middleware chain.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListBuilds returns every build configuration as a flat list.
func (h *Handler) ListBuilds(w http.ResponseWriter, r *http.Request) {
	res := h.catalog.Builds(r.Context())
	if !h.available(w, res.Freshness, res.Err, "builds") {
		return
	}

	writeJSON(w, http.StatusOK, h.buildList(res, ""))
}

// ListTeamCityBuilds returns the cached builds together with the cache age.
func (h *Handler) ListTeamCityBuilds(w http.ResponseWriter, r *http.Request) {
	h.ListBuilds(w, r)
}

// ForceRefreshBuilds discards the cached builds and fetches them again. When
// a status watcher is running it checks the refreshed statuses right away.
func (h *Handler) ForceRefreshBuilds(w http.ResponseWriter, r *http.Request) {
	h.catalog.ForceRefreshBuilds()

	res := h.catalog.Builds(r.Context())
	if !h.available(w, res.Freshness, res.Err, "builds") {
		return
	}

	if h.watcher != nil {
		ctx, cancel := context.WithTimeout(r.Context(), triggerTimeout)
		if err := h.watcher.Trigger(ctx); err != nil {
			h.logger.Warn("status check after refresh failed", "error", err)
		}
		cancel()
	}

	writeJSON(w, http.StatusOK, h.buildList(res, "cache refreshed"))
}

// GetBuildTree returns the full project tree with the stored selection applied.
func (h *Handler) GetBuildTree(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.GetBuildTree(r.Context())
	if err != nil {
		h.unavailable(w, err, "build tree")
		return
	}

	writeJSON(w, http.StatusOK, toTreeResponse(*view))
}

// GetFilteredTree returns the project tree limited to the current versions.
func (h *Handler) GetFilteredTree(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.GetFilteredTree(r.Context())
	if err != nil {
		h.unavailable(w, err, "filtered build tree")
		return
	}

	writeJSON(w, http.StatusOK, FilteredTreeResponse{
		TreeResponse:    toTreeResponse(view.BuildTreeView),
		CurrentVersions: nonNil(view.CurrentVersions),
		MissingVersions: nonNil(view.MissingVersions),
		VersionInfo:     toVersionReportResponse(view.Report),
	})
}

// SaveSelection replaces the stored build selection.
func (h *Handler) SaveSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ack, err := h.dashboard.SaveSelection(r.Context(), req.SelectedBuilds)
	if err != nil {
		h.logger.Error("failed to save selection", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := SelectionResponse{
		Success:       true,
		Message:       fmt.Sprintf("selection saved (%d builds)", ack.Selected),
		SelectedCount: ack.Selected,
	}
	if ack.Verified {
		resp.UnknownCount = &ack.Unknown
	} else {
		resp.Message += "; build ids not checked, TeamCity unavailable"
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDashboard returns the selected builds grouped by project with status counts.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.GetDashboardView(r.Context())
	if err != nil {
		h.unavailable(w, err, "dashboard")
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(*view))
}

// ListAgents returns the build agents with their connection state.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	res := h.catalog.Agents(r.Context())
	if !h.available(w, res.Freshness, res.Err, "agents") {
		return
	}

	writeJSON(w, http.StatusOK, h.agentList(res, ""))
}

// ForceRefreshAgents discards the cached agents and fetches them again.
func (h *Handler) ForceRefreshAgents(w http.ResponseWriter, r *http.Request) {
	h.catalog.ForceRefreshAgents()

	res := h.catalog.Agents(r.Context())
	if !h.available(w, res.Freshness, res.Err, "agents") {
		return
	}

	writeJSON(w, http.StatusOK, h.agentList(res, "cache refreshed"))
}

// TeamCityStatus reports the cache state for builds and agents.
func (h *Handler) TeamCityStatus(w http.ResponseWriter, _ *http.Request) {
	status := h.catalog.CacheStatus()

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:      "operational",
		TeamCityURL: h.info.TeamCityURL,
		Demo:        h.info.Demo,
		Builds:      toCacheInfoResponse(status.Builds),
		Agents:      toCacheInfoResponse(status.Agents),
	})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// available writes a 503 and returns false when the catalog could not be served.
func (h *Handler) available(w http.ResponseWriter, freshness model.Freshness, err error, what string) bool {
	if freshness != model.FreshnessUnavailable {
		return true
	}
	h.unavailable(w, err, what)
	return false
}

func (h *Handler) unavailable(w http.ResponseWriter, err error, what string) {
	h.logger.Error("failed to load "+what, "error", err)
	writeError(w, http.StatusServiceUnavailable, "teamcity unavailable: "+what+" could not be loaded")
}

func (h *Handler) buildList(res application.Result[model.BuildRecord], message string) BuildListResponse {
	return BuildListResponse{
		freshnessFields: resultFreshness(res.Freshness, res.FetchedAt, res.Warning()),
		Builds:          toBuildResponses(res.Data, nil),
		Count:           len(res.Data),
		CacheAgeSeconds: time.Since(res.FetchedAt).Seconds(),
		Message:         message,
	}
}

func (h *Handler) agentList(res application.Result[model.Agent], message string) AgentListResponse {
	agents := make([]AgentResponse, 0, len(res.Data))
	healthy := 0
	for _, a := range res.Data {
		if a.Healthy() {
			healthy++
		}
		agents = append(agents, toAgentResponse(a))
	}

	return AgentListResponse{
		freshnessFields: resultFreshness(res.Freshness, res.FetchedAt, res.Warning()),
		Agents:          agents,
		Count:           len(agents),
		Healthy:         healthy,
		CacheAgeSeconds: time.Since(res.FetchedAt).Seconds(),
		Message:         message,
	}
}

func resultFreshness(f model.Freshness, fetchedAt time.Time, warning string) freshnessFields {
	return freshnessFields{
		Freshness: string(f),
		FetchedAt: formatTime(fetchedAt),
		Warning:   warning,
	}
}

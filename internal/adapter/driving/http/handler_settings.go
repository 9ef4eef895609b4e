package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/application"
)

const (
	minRefreshInterval = 5 * time.Second
	maxRefreshInterval = time.Hour
)

// VersionInfo returns the current-versions document.
func (h *Handler) VersionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toVersionConfigResponse(h.versions.Info(r.Context())))
}

// UpdateVersions overrides the current versions.
func (h *Handler) UpdateVersions(w http.ResponseWriter, r *http.Request) {
	var req UpdateVersionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Versions) == 0 {
		writeError(w, http.StatusBadRequest, "versions is required")
		return
	}

	cfg, err := h.versions.UpdateCurrentVersions(r.Context(), req.Versions)
	if err != nil {
		h.logger.Error("failed to update versions", "versions", req.Versions, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toVersionConfigResponse(cfg))
}

// DetectVersions runs version detection against the top-level projects
// currently present upstream.
func (h *Handler) DetectVersions(w http.ResponseWriter, r *http.Request) {
	res := h.catalog.Builds(r.Context())
	if !h.available(w, res.Freshness, res.Err, "projects") {
		return
	}

	projects := application.TopLevelProjects(res.Data)
	report := h.versions.DetectNewVersions(r.Context(), projects)

	writeJSON(w, http.StatusOK, DetectVersionsResponse{
		Success:           true,
		VersionInfo:       toVersionReportResponse(report),
		AvailableProjects: nonNil(projects),
	})
}

// GetConfig returns the display preferences, the stored selection, and the
// current versions.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.dashboard.Preferences(r.Context())
	if err != nil {
		h.logger.Error("failed to load preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	selections, err := h.dashboard.Selections(r.Context())
	if err != nil {
		h.logger.Error("failed to load selections", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entries := make([]SelectionEntryResponse, 0, len(selections))
	ids := make([]string, 0, len(selections))
	for _, s := range selections {
		entries = append(entries, toSelectionEntryResponse(s))
		ids = append(ids, s.BuildTypeID)
	}

	writeJSON(w, http.StatusOK, ConfigResponse{
		Display:         toDisplayPreferencesResponse(prefs),
		Selections:      entries,
		SelectedBuilds:  ids,
		TotalSelected:   len(ids),
		CurrentVersions: nonNil(h.versions.Info(r.Context()).CurrentVersions),
		CacheTTLSeconds: h.info.CacheTTL.Seconds(),
	})
}

// UpdateDisplay applies a partial update to the display preferences.
func (h *Handler) UpdateDisplay(w http.ResponseWriter, r *http.Request) {
	var req DisplayPreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := h.dashboard.Preferences(r.Context())
	if err != nil {
		h.logger.Error("failed to load preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.ShowSuccess != nil {
		prefs.ShowSuccess = *req.ShowSuccess
	}
	if req.ShowFailure != nil {
		prefs.ShowFailure = *req.ShowFailure
	}
	if req.ShowRunning != nil {
		prefs.ShowRunning = *req.ShowRunning
	}
	if req.ShowStats != nil {
		prefs.ShowStats = *req.ShowStats
	}
	if req.AutoRefresh != nil {
		prefs.AutoRefresh = *req.AutoRefresh
	}
	if req.RefreshIntervalSeconds != nil {
		interval := time.Duration(*req.RefreshIntervalSeconds) * time.Second
		if interval < minRefreshInterval || interval > maxRefreshInterval {
			writeError(w, http.StatusBadRequest, "refresh_interval_seconds must be between 5 and 3600")
			return
		}
		prefs.RefreshInterval = interval
	}

	if err := h.dashboard.UpdatePreferences(r.Context(), prefs); err != nil {
		h.logger.Error("failed to update preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toDisplayPreferencesResponse(prefs))
}

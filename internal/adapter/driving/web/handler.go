// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/tcpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/tcpanel/internal/application"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	dashboard *application.DashboardService
	versions  *application.VersionManager
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	dashboard *application.DashboardService,
	versions *application.VersionManager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		dashboard: dashboard,
		versions:  versions,
		logger:    logger,
	}
}

// Dashboard renders the selected builds grouped by project.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.GetDashboardView(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard", "error", err)
		h.renderUnavailable(w, r)
		return
	}

	current := h.versions.Info(r.Context()).CurrentVersions
	page := toDashboardViewModel(view, current)
	h.render(w, r, http.StatusOK, templates.Layout(page.Layout, pages.Dashboard(page)))
}

// SelectionPage renders the version-filtered build tree as a selection form.
func (h *Handler) SelectionPage(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)

	view, err := h.dashboard.GetFilteredTree(r.Context())
	if err != nil {
		h.logger.Error("failed to load build tree", "error", err)
		h.renderUnavailable(w, r)
		return
	}

	page := toSelectionViewModel(view, token, r.URL.Query().Get("saved") == "1")
	h.render(w, r, http.StatusOK, templates.Layout(page.Layout, pages.Selection(page)))
}

// SaveSelection stores the checked builds and redirects back to the form.
func (h *Handler) SaveSelection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	if _, err := h.dashboard.SaveSelection(r.Context(), r.PostForm["build"]); err != nil {
		h.logger.Error("failed to save selection", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/app/select?saved=1", http.StatusSeeOther)
}

func (h *Handler) renderUnavailable(w http.ResponseWriter, r *http.Request) {
	layout := vm.LayoutViewModel{
		Title:   pageTitle,
		Warning: "TeamCity is unavailable and no cached data exists yet. Retry shortly.",
	}
	h.render(w, r, http.StatusServiceUnavailable, templates.Layout(layout, pages.Unavailable()))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tcpanel/internal/adapter/driven/demo"
	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

type failingClient struct{}

func (failingClient) FetchProjects(_ context.Context) ([]model.Project, error) {
	return nil, driven.ErrUpstreamUnavailable
}
func (failingClient) FetchBuildTypes(_ context.Context) ([]model.BuildType, error) {
	return nil, driven.ErrUpstreamUnavailable
}
func (failingClient) FetchLatestBuild(_ context.Context, _ string, _ bool) (*model.BuildRun, error) {
	return nil, driven.ErrUpstreamUnavailable
}
func (failingClient) FetchAgents(_ context.Context) ([]model.Agent, error) {
	return nil, driven.ErrUpstreamUnavailable
}

type memSelections struct {
	mu  sync.Mutex
	ids []string
}

func (m *memSelections) BulkReplace(_ context.Context, ids []string, _ map[string]model.SelectionMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append([]string{}, ids...)
	return nil
}
func (m *memSelections) SelectedIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := append([]string{}, m.ids...)
	sort.Strings(ids)
	return ids, nil
}
func (m *memSelections) List(_ context.Context) ([]model.Selection, error) { return nil, nil }

type memPrefs struct{}

func (memPrefs) GetDisplay(_ context.Context) (model.DisplayPreferences, error) {
	return model.DefaultDisplayPreferences(), nil
}
func (memPrefs) SetDisplay(_ context.Context, _ model.DisplayPreferences) error { return nil }

type memVersions struct{ cfg *model.VersionConfig }

func (m *memVersions) Load(_ context.Context) (*model.VersionConfig, error) { return m.cfg, nil }
func (m *memVersions) Save(_ context.Context, cfg model.VersionConfig) error {
	m.cfg = &cfg
	return nil
}

func setupWeb(client driven.TeamCityClient) (http.Handler, *memSelections) {
	selections := &memSelections{}
	catalog := application.NewCatalogService(client, time.Minute, 4, time.Second)
	versions := application.NewVersionManager(&memVersions{}, model.DefaultVersionMarker)
	dash := application.NewDashboardService(catalog, selections, memPrefs{}, versions, application.NewTreeBuilder(application.DepthNone()))

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandler(dash, versions, slog.Default()))
	return mux, selections
}

func serve(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDashboard_NoSelection(t *testing.T) {
	mux, _ := setupWeb(demo.NewClient())

	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>TeamCity Dashboard</title>")
	assert.Contains(t, body, "No builds selected")
	assert.Contains(t, body, `<meta http-equiv="refresh" content="30">`)
}

func TestDashboard_WithSelection(t *testing.T) {
	mux, selections := setupWeb(demo.NewClient())
	selections.ids = []string{"Go2Version612_Plugins_BuildRelease", "WebServices_Portal_Deploy", "Gone_Build"}

	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>GO2 Version 612 / Plugins</h2>")
	assert.Contains(t, body, "<h2>Web Services / Portal</h2>")
	assert.Contains(t, body, `<span class="line-error">Compilation error</span>`)
	assert.Contains(t, body, "<li>Gone_Build</li>")
	assert.NotContains(t, body, "InstallGO2cam")
	assert.Less(t, strings.Index(body, "GO2 Version 612 / Plugins"), strings.Index(body, "Web Services / Portal"))
}

func TestDashboard_Unavailable(t *testing.T) {
	mux, _ := setupWeb(failingClient{})

	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "TeamCity is unavailable")
}

func TestSelectionPage(t *testing.T) {
	mux, selections := setupWeb(demo.NewClient())
	selections.ids = []string{"Go2Version612_Plugins_BuildDebug"}

	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/app/select", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)

	body := rec.Body.String()
	assert.Contains(t, body, `<input type="hidden" name="csrf_token" value="`+cookies[0].Value+`">`)
	assert.Contains(t, body, `value="Go2Version612_Plugins_BuildDebug" checked>`)
	assert.Contains(t, body, `value="Go2Version612_Plugins_BuildRelease">`)
	assert.Contains(t, body, "GO2 Version New")
	assert.NotContains(t, body, "WebServices_Portal_Deploy", "non-version projects are filtered out")
	assert.NotContains(t, body, "Selection saved.")
}

func TestSelectionPage_ReusesCookieAndShowsSaved(t *testing.T) {
	mux, _ := setupWeb(demo.NewClient())

	req := httptest.NewRequest(http.MethodGet, "/app/select?saved=1", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing-token"})
	rec := serve(mux, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Contains(t, rec.Body.String(), `value="existing-token"`)
	assert.Contains(t, rec.Body.String(), "Selection saved.")
}

func TestSaveSelection(t *testing.T) {
	tests := []struct {
		name       string
		cookie     string
		formToken  string
		wantStatus int
		wantIDs    []string
	}{
		{name: "valid token", cookie: "tok", formToken: "tok", wantStatus: http.StatusSeeOther,
			wantIDs: []string{"Go2Version612_Plugins_BuildDebug", "WebServices_Portal_Deploy"}},
		{name: "missing cookie", formToken: "tok", wantStatus: http.StatusForbidden},
		{name: "mismatched token", cookie: "tok", formToken: "other", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, selections := setupWeb(demo.NewClient())

			form := url.Values{}
			form.Set("csrf_token", tt.formToken)
			form.Add("build", "WebServices_Portal_Deploy")
			form.Add("build", "Go2Version612_Plugins_BuildDebug")

			req := httptest.NewRequest(http.MethodPost, "/app/selection", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
			}
			rec := serve(mux, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/app/select?saved=1", rec.Header().Get("Location"))
				ids, err := selections.SelectedIDs(context.Background())
				require.NoError(t, err)
				assert.Equal(t, tt.wantIDs, ids)
			} else {
				assert.Empty(t, selections.ids)
			}
		})
	}
}

var (
	hiddenFieldRe     = regexp.MustCompile(`<input type="hidden" name="([a-z_]+)" value="([^"]*)">`)
	checkedCheckboxRe = regexp.MustCompile(`<input type="checkbox" name="build" value="([^"]*)" checked>`)
)

// formValues collects what a browser would submit for the selection form unchanged.
func formValues(body string) url.Values {
	form := url.Values{}
	for _, m := range hiddenFieldRe.FindAllStringSubmatch(body, -1) {
		form.Add(m[1], m[2])
	}
	for _, m := range checkedCheckboxRe.FindAllStringSubmatch(body, -1) {
		form.Add("build", m[1])
	}
	return form
}

func TestSelectionForm_UnchangedSubmitKeepsEverySelection(t *testing.T) {
	mux, selections := setupWeb(demo.NewClient())
	stored := []string{"Go2Version612_Plugins_BuildDebug", "Gone_Build", "WebServices_Portal_Deploy"}
	selections.ids = stored

	page := serve(mux, httptest.NewRequest(http.MethodGet, "/app/select", nil))
	require.Equal(t, http.StatusOK, page.Code)
	cookies := page.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Contains(t, page.Body.String(), "2 selected builds outside the current versions are kept.")

	form := formValues(page.Body.String())
	req := httptest.NewRequest(http.MethodPost, "/app/selection", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookies[0])
	rec := serve(mux, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	after, err := selections.SelectedIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, after)
}

func TestStaticAssets(t *testing.T) {
	mux, _ := setupWeb(demo.NewClient())

	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".status-failure")
}

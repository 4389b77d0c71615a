package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/navshell/pkg/layout"
	"github.com/mchmarny/navshell/pkg/menu"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	m := &menu.Menu{Title: "Test", Items: []menu.Item{
		{Key: "A", Path: "/a", Name: "Alpha", Children: []menu.Item{
			{Key: "A1", Path: "/a/1", Name: "One"},
			{Key: "A2", Path: "/a/2", Name: "Two"},
		}},
		{Key: "B", Path: "/b", Name: "Beta", Children: []menu.Item{
			{Key: "B1", Path: "/b/1", Name: "Beta One"},
		}},
		{Key: "status", Path: "/status", Name: "Status", Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "custom")
		})},
		{Key: "ext", Path: "https://example.com", Name: "Site", IsURL: true},
	}}

	a, err := New(m, layout.DefaultSettings())
	require.NoError(t, err)
	return a
}

func do(t *testing.T, a *App, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestNewInvalidDefaults(t *testing.T) {
	s := layout.DefaultSettings()
	s.Layout = "diagonal"

	_, err := New(&menu.Menu{}, s)
	assert.ErrorIs(t, err, layout.ErrInvalidSettings)
}

func TestNewNormalizesMenu(t *testing.T) {
	status := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "custom")
	})

	tests := []struct {
		name  string
		items []menu.Item
		err   error
	}{
		{
			name:  "missing key",
			items: []menu.Item{{Name: "Nothing"}},
			err:   menu.ErrEmptyKey,
		},
		{
			name:  "handler path served twice",
			items: []menu.Item{{Path: "/x", Name: "X", Handler: status}, {Key: "y", Path: "/x", Name: "Y", Handler: status}},
			err:   menu.ErrDuplicatePath,
		},
		{
			name:  "handler path shared with a page",
			items: []menu.Item{{Key: "page", Path: "/x", Name: "Page"}, {Key: "h", Path: "/x", Name: "H", Handler: status}},
			err:   menu.ErrDuplicatePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := New(&menu.Menu{Items: tt.items}, layout.DefaultSettings())
				assert.ErrorIs(t, err, tt.err)
			})
		})
	}
}

func TestNewKeylessMenu(t *testing.T) {
	m := &menu.Menu{Items: []menu.Item{
		{Name: "Admin", Path: "/admin", Children: []menu.Item{
			{Name: "Users", Path: "users"},
		}},
	}}

	a, err := New(m, layout.DefaultSettings())
	require.NoError(t, err)

	rec := do(t, a, http.MethodGet, "/admin/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-key="/admin"><details open>`)
	assert.Contains(t, rec.Body.String(), "<h2>Users</h2>")
}

func TestPageBreakpoint(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name   string
		query  string
		status int
		open   bool
	}{
		{name: "initial render collapses", query: "breakpoint=true&mobile=true", status: http.StatusOK, open: false},
		{name: "mounted mobile ignores breakpoint", query: "breakpoint=true&mobile=true&mounted=true", status: http.StatusOK, open: true},
		{name: "mounted desktop collapses", query: "breakpoint=true&mounted=true", status: http.StatusOK, open: false},
		{name: "breakpoint expands", query: "collapsed=true&breakpoint=false", status: http.StatusOK, open: true},
		{name: "invalid breakpoint", query: "breakpoint=maybe", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, a, http.MethodGet, "/a/2?"+tt.query, "")
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			if tt.open {
				assert.Contains(t, rec.Body.String(), `data-key="A"><details open>`)
			} else {
				assert.NotContains(t, rec.Body.String(), "<details open>")
			}
		})
	}
}

func TestPage(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/a/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data-key="A"><details open>`)
	assert.Contains(t, body, `<li aria-current="page">Two</li>`)
	assert.Contains(t, body, "<h2>Two</h2>")
}

func TestPageQuery(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/a/2?open=B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-key="B"><details open>`)
	assert.NotContains(t, rec.Body.String(), `data-key="A"><details open>`)

	rec = do(t, a, http.MethodGet, "/a/2?collapsed=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<details open>")

	rec = do(t, a, http.MethodGet, "/a/2?layout=topmenu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<aside")

	rec = do(t, a, http.MethodGet, "/a/2?layout=diagonal", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodGet, "/a/2?fixedHeader=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRootAndUnknown(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>Home</h2>")

	rec = do(t, a, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemHandler(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom", rec.Body.String())
}

func TestMenuAPI(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/api/menu?path=/b/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State menu.RouteState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"B"}, resp.State.OpenKeys)
	assert.Equal(t, []string{"B1"}, resp.State.SelectedKeys)
}

func TestSettingsAPI(t *testing.T) {
	a := newTestApp(t)

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) layout.Settings {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var s layout.Settings
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		return s
	}

	s := decode(t, do(t, a, http.MethodGet, "/api/settings", ""))
	assert.Equal(t, layout.DefaultSettings(), s)

	s = decode(t, do(t, a, http.MethodPut, "/api/settings", `{"layout":"both","title":"Drawer"}`))
	assert.Equal(t, layout.ModeBoth, s.Layout)
	assert.Equal(t, "Drawer", s.Title)

	s = decode(t, do(t, a, http.MethodGet, "/api/settings?layout=topmenu&fixSiderbar=true", ""))
	assert.Equal(t, layout.ModeTopMenu, s.Layout, "per-call overrides beat the drawer")
	assert.True(t, s.FixSiderbar)
	assert.Equal(t, "Drawer", s.Title)

	rec := do(t, a, http.MethodPut, "/api/settings", `{"navTheme":"pink"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, layout.ModeBoth, decode(t, do(t, a, http.MethodGet, "/api/settings", "")).Layout,
		"rejected drawer leaves the previous one")

	rec = do(t, a, http.MethodPut, "/api/settings", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	a := newTestApp(t)

	do(t, a, http.MethodGet, "/a/1", "")
	do(t, a, http.MethodGet, "/a/1", "")
	do(t, a, http.MethodGet, "/api/menu", "")

	rec := do(t, a, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `navshell_render_total{view="page"} 2`)
	assert.Contains(t, body, `navshell_render_total{view="api"} 1`)
	assert.Contains(t, body, `navshell_resolve_total{match="exact"} 2`)
	assert.Contains(t, body, `navshell_resolve_cache_total{result="hit"}`)

	rec = do(t, a, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

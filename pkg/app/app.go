// Package app wires a menu, layout settings and the HTTP server into a
// running application shell.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/mchmarny/navshell/pkg/layout"
	"github.com/mchmarny/navshell/pkg/menu"
	"github.com/mchmarny/navshell/pkg/metric"
	"github.com/mchmarny/navshell/pkg/render"
	"github.com/mchmarny/navshell/pkg/server"
)

var (
	version = "dev"     // Set at build time via -ldflags "-X github.com/mchmarny/navshell/pkg/app.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X github.com/mchmarny/navshell/pkg/app.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X github.com/mchmarny/navshell/pkg/app.date=date"
)

// Version returns the build version.
func Version() string { return version }

// App serves a menu as an application shell.
type App struct {
	menu     *menu.Menu
	defaults layout.Settings
	resolver *menu.Resolver
	srv      server.Server

	mu     sync.RWMutex
	drawer *layout.Overrides

	resolves *metric.Counter
	renders  *metric.Counter
}

// New creates the shell for m with caller defaults and registers every route.
// The items of m are normalized in place.
func New(m *menu.Menu, defaults layout.Settings, opts ...server.Option) (*App, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}

	if err := m.Normalize(); err != nil {
		return nil, err
	}

	opts = append(opts, server.WithPrometheusMetrics(), server.WithHealthCheck(nil))
	srv := server.New(opts...)
	reg := srv.Registry()

	cache := metric.NewCounter(reg, metric.ResolveCacheTotal, "Resolver cache lookups.", "result")
	res, err := menu.NewResolver(m.Items, menu.WithCacheCounter(cache))
	if err != nil {
		return nil, err
	}

	a := &App{
		menu:     m,
		defaults: defaults,
		resolver: res,
		srv:      srv,
		resolves: metric.NewCounter(reg, metric.ResolveTotal, "Open-key resolutions.", "match"),
		renders:  metric.NewCounter(reg, metric.RenderTotal, "Rendered views.", "view"),
	}

	a.routes()
	return a, nil
}

// Handler returns the root handler.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// Resolver returns the memoized resolver over the menu tree.
func (a *App) Resolver() *menu.Resolver {
	return a.resolver
}

// Run starts the server and blocks until the context is canceled or an error occurs.
func (a *App) Run(ctx context.Context) error {
	slog.Info("starting navshell", "commit", commit, "date", date, "items", len(menu.FlatKeys(a.menu.Items)))

	return a.srv.Serve(ctx)
}

// Drawer returns the current settings-drawer overrides.
func (a *App) Drawer() *layout.Overrides {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.drawer
}

// SetDrawer replaces the settings-drawer overrides after validating them
// against the caller defaults.
func (a *App) SetDrawer(o *layout.Overrides) error {
	if _, err := layout.Resolve(a.defaults, o, nil); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.drawer = o
	return nil
}

// Settings resolves the effective settings for a call.
func (a *App) Settings(call *layout.Overrides) (layout.Settings, error) {
	return layout.Resolve(a.defaults, a.Drawer(), call)
}

func (a *App) routes() {
	a.menu.RegisterHandlers(a.srv.Handle)

	a.srv.Handle("GET /api/menu", a.count("api", a.menu.Handler(a.resolver)))
	a.srv.Handle("GET /api/settings", http.HandlerFunc(a.getSettings))
	a.srv.Handle("PUT /api/settings", http.HandlerFunc(a.putSettings))

	names := menu.NameMap(a.menu.Items)
	paths := make([]string, 0, len(names))
	for p, it := range names {
		if it.Handler == nil {
			paths = append(paths, p)
		}
	}
	if _, ok := names["/"]; !ok {
		paths = append(paths, "/")
	}
	sort.Strings(paths)

	for _, p := range paths {
		pattern := "GET " + p
		if p == "/" {
			pattern = "GET /{$}"
		}
		a.srv.Handle(pattern, a.count("page", http.HandlerFunc(a.page)))
	}
}

func (a *App) count(view string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.renders.Increment(view)
		h.ServeHTTP(w, r)
	})
}

func (a *App) page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	call, err := overridesFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := a.Settings(call)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := layout.ViewOptions{}
	opts.Collapsed, _ = strconv.ParseBool(q.Get("collapsed"))
	if q.Get("match") == menu.MatchPrefix.String() {
		opts.Match = menu.MatchPrefix
	}
	if q.Has("open") {
		opts.OpenKeys = splitKeys(q.Get("open"))
	}
	opts.IsMobile, _ = strconv.ParseBool(q.Get("mobile"))
	opts.Mounted, _ = strconv.ParseBool(q.Get("mounted"))
	if q.Has("breakpoint") {
		collapsed, err := strconv.ParseBool(q.Get("breakpoint"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid breakpoint: "+err.Error())
			return
		}
		opts.Breakpoint = &collapsed
	}

	a.resolves.Increment(opts.Match.String())
	vm := layout.View(settings, a.menu, a.resolver, r.URL.Path, opts)

	slog.Debug("rendering page",
		"path", r.URL.Path,
		"open_keys", vm.OpenKeys,
		"selected_keys", vm.SelectedKeys)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := render.Write(w, vm, pageContent(vm)); err != nil {
		slog.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

func pageContent(vm layout.ViewModel) g.Node {
	title := vm.Settings.Title
	if n := len(vm.Breadcrumbs); n > 0 {
		title = vm.Breadcrumbs[n-1].Name
	}

	return html.Section(
		html.Class("page-content"),
		html.H2(g.Text(title)),
	)
}

func (a *App) getSettings(w http.ResponseWriter, r *http.Request) {
	call, err := overridesFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := a.Settings(call)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (a *App) putSettings(w http.ResponseWriter, r *http.Request) {
	var o layout.Overrides
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode settings: %v", err))
		return
	}

	if err := a.SetDrawer(&o); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("settings drawer updated")

	settings, err := a.Settings(nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// overridesFromQuery reads per-call overrides from the request query.
func overridesFromQuery(q url.Values) (*layout.Overrides, error) {
	var o layout.Overrides

	if v := q.Get("layout"); v != "" {
		m := layout.Mode(v)
		o.Layout = &m
	}
	if v := q.Get("navTheme"); v != "" {
		t := layout.NavTheme(v)
		o.NavTheme = &t
	}
	if v := q.Get("contentWidth"); v != "" {
		cw := layout.ContentWidth(v)
		o.ContentWidth = &cw
	}

	for name, dst := range map[string]**bool{
		"fixedHeader": &o.FixedHeader,
		"fixSiderbar": &o.FixSiderbar,
		"colorWeak":   &o.ColorWeak,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = &b
	}

	return &o, nil
}

func splitKeys(s string) []string {
	keys := []string{}
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func writeError(w http.ResponseWriter, status int, message string) {
	slog.Error("handling error response",
		"status", status,
		"message", message,
	)
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, "error, see logs for details", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

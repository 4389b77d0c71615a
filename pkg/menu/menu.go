package menu

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Menu represents the root menu structure.
type Menu struct {
	// Title is the menu
	Title string `json:"title" yaml:"title"`

	// Description of the menu
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version of the menu
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Items is the list of menu items
	Items []Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// RouteState is the menu state derived from a route.
type RouteState struct {
	Path         string       `json:"path"`
	OpenKeys     []string     `json:"openKeys"`
	SelectedKeys []string     `json:"selectedKeys"`
	Breadcrumbs  []Breadcrumb `json:"breadcrumbs"`
}

// Load reads a YAML menu file and normalizes its items.
func Load(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML menu definition and normalizes its items.
func Parse(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	if err := m.Normalize(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Normalize fills in keys and resolves paths of the menu items in place.
func (m *Menu) Normalize() error {
	items, err := Normalize(m.Items)
	if err != nil {
		return fmt.Errorf("normalize menu: %w", err)
	}
	m.Items = items
	return nil
}

// RegisterHandlers walks through the menu tree and registers all handlers with the server.
// External items are skipped.
func (m *Menu) RegisterHandlers(register func(pattern string, handler http.Handler)) {
	for i := range m.Items {
		m.registerItem(&m.Items[i], register)
	}
}

// registerItem recursively registers a menu item and all its sub-items.
func (m *Menu) registerItem(item *Item, register func(pattern string, handler http.Handler)) {
	if item.Handler != nil && item.Path != "" && !item.IsURL {
		register(item.Path, item.Handler)
	}

	for i := range item.Children {
		m.registerItem(&item.Children[i], register)
	}
}

// State derives the route state for path using res.
func (m *Menu) State(res *Resolver, path string, single bool, opts ...ResolveOption) RouteState {
	open := res.OpenKeys(path, opts...)
	if single {
		open = SingleOpen(m.Items, open)
	}

	return RouteState{
		Path:         path,
		OpenKeys:     open,
		SelectedKeys: res.SelectedKeys(path, opts...),
		Breadcrumbs:  Breadcrumbs(m.Items, path),
	}
}

// Handler returns an HTTP handler that responds with the menu structure as JSON.
// With a "path" query parameter the response also carries the route state;
// "match=prefix", "leaf=true" and "single=true" tune the resolution.
func (m *Menu) Handler(res *Resolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("handling menu request",
			"method", r.Method,
			"url", r.URL.Path,
		)

		q := r.URL.Query()
		resp := struct {
			*Menu
			State *RouteState `json:"state,omitempty"`
		}{Menu: m}

		if p := q.Get("path"); p != "" {
			var opts []ResolveOption
			if q.Get("match") == MatchPrefix.String() {
				opts = append(opts, WithMatch(MatchPrefix))
			}
			if leaf, _ := strconv.ParseBool(q.Get("leaf")); leaf {
				opts = append(opts, WithLeaf())
			}
			single, _ := strconv.ParseBool(q.Get("single"))

			st := m.State(res, p, single, opts...)
			resp.State = &st
		}

		data, err := json.Marshal(resp)
		if err != nil {
			slog.Error("failed to encode menu", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			slog.Error("failed to write menu response", "error", err)
			return
		}

		slog.Info("menu response sent",
			"method", r.Method,
			"url", r.URL.Path,
			"status", http.StatusOK,
		)
	})
}

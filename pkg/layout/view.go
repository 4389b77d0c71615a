package layout

import (
	"strings"

	"github.com/mchmarny/navshell/pkg/menu"
)

// GridClass returns the class of the content grid. Content is only
// narrowed for a fixed width with the side menu layout.
func GridClass(width ContentWidth, mode Mode) string {
	if width == WidthFixed && mode == ModeSideMenu {
		return "grid-content wide"
	}
	return "grid-content"
}

// SiderClass returns the class list of the sider for s.
func SiderClass(s Settings) string {
	classes := []string{"sider"}
	if s.FixSiderbar {
		classes = append(classes, "fix-sider-bar")
	}
	if s.NavTheme == ThemeLight {
		classes = append(classes, "light")
	}
	if s.Layout == ModeBoth {
		classes = append(classes, "with-header")
	}
	return strings.Join(classes, " ")
}

// ShouldNotifyCollapse reports whether a breakpoint-driven collapse is passed
// on to the caller: always on the initial render, afterwards only on desktop.
func ShouldNotifyCollapse(initialRender, isMobile bool) bool {
	return initialRender || !isMobile
}

// Sider is the collapse state of a sider.
type Sider struct {
	Collapsed bool
	IsMobile  bool

	// InitialRender is true until Mounted is called.
	InitialRender bool

	// OnCollapse receives every collapse change passed on to the caller.
	OnCollapse func(collapsed bool)
}

// NewSider returns a sider in its initial render.
func NewSider(collapsed, isMobile bool, onCollapse func(bool)) *Sider {
	return &Sider{
		Collapsed:     collapsed,
		IsMobile:      isMobile,
		InitialRender: true,
		OnCollapse:    onCollapse,
	}
}

// Mounted ends the initial render.
func (s *Sider) Mounted() {
	s.InitialRender = false
}

// Breakpoint handles a collapse triggered by the viewport crossing the
// sider breakpoint. It reports whether the change was applied.
func (s *Sider) Breakpoint(collapsed bool) bool {
	if !ShouldNotifyCollapse(s.InitialRender, s.IsMobile) {
		return false
	}
	s.Collapsed = collapsed
	if s.OnCollapse != nil {
		s.OnCollapse(collapsed)
	}
	return true
}

// Toggle flips the collapsed state from the collapse button.
func (s *Sider) Toggle() {
	s.Collapsed = !s.Collapsed
	if s.OnCollapse != nil {
		s.OnCollapse(s.Collapsed)
	}
}

// ViewOptions are the per-request inputs of View.
type ViewOptions struct {
	Collapsed bool
	Match     menu.Match

	// IsMobile marks a mobile viewport. Mounted is false on the initial
	// render of the shell.
	IsMobile bool
	Mounted  bool

	// Breakpoint, when non-nil, is the collapse state requested by the
	// viewport crossing the sider breakpoint.
	Breakpoint *bool

	// OpenKeys, when non-nil, is a user expand/collapse to apply on top of
	// the route-derived open keys.
	OpenKeys []string
}

// ViewModel is everything a renderer needs to draw the shell for one route.
type ViewModel struct {
	Settings            Settings
	Path                string
	Items               []menu.Item
	OpenKeys            []string
	SelectedKeys        []string
	Breadcrumbs         []menu.Breadcrumb
	SiderClass          string
	GridClass           string
	Collapsed           bool
	ShowSider           bool
	ShowHeaderMenu      bool
	ShowCollapsedButton bool
}

// View builds the view model of m for path under settings s.
func View(s Settings, m *menu.Menu, res *menu.Resolver, path string, opts ViewOptions) ViewModel {
	var rOpts []menu.ResolveOption
	if opts.Match == menu.MatchPrefix {
		rOpts = append(rOpts, menu.WithMatch(menu.MatchPrefix))
	}

	sider := NewSider(opts.Collapsed, opts.IsMobile, nil)
	if opts.Mounted {
		sider.Mounted()
	}
	if opts.Breakpoint != nil {
		sider.Breakpoint(*opts.Breakpoint)
	}

	vm := ViewModel{
		Settings:            s,
		Path:                path,
		Items:               menu.Visible(m.Items),
		OpenKeys:            []string{},
		SelectedKeys:        res.SelectedKeys(path, rOpts...),
		Breadcrumbs:         menu.Breadcrumbs(m.Items, path),
		SiderClass:          SiderClass(s),
		GridClass:           GridClass(s.ContentWidth, s.Layout),
		Collapsed:           sider.Collapsed,
		ShowSider:           s.Layout != ModeTopMenu,
		ShowHeaderMenu:      s.Layout == ModeTopMenu,
		ShowCollapsedButton: s.CollapsedButton && s.Layout == ModeBoth,
	}

	// A collapsed sider or a top menu does not control open keys.
	if vm.Collapsed || s.Layout == ModeTopMenu {
		return vm
	}

	state := menu.NewOpenState(res, rOpts...)
	state.Sync(path)
	if opts.OpenKeys != nil {
		state.Change(opts.OpenKeys)
	}
	vm.OpenKeys = state.Keys()

	return vm
}

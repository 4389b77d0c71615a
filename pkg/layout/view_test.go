package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/navshell/pkg/menu"
)

func TestGridClass(t *testing.T) {
	tests := []struct {
		width ContentWidth
		mode  Mode
		want  string
	}{
		{WidthFixed, ModeSideMenu, "grid-content wide"},
		{WidthFixed, ModeTopMenu, "grid-content"},
		{WidthFixed, ModeBoth, "grid-content"},
		{WidthFluid, ModeSideMenu, "grid-content"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GridClass(tt.width, tt.mode), "%s/%s", tt.width, tt.mode)
	}
}

func TestSiderClass(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "sider", SiderClass(s))

	s.FixSiderbar = true
	s.NavTheme = ThemeLight
	s.Layout = ModeBoth
	assert.Equal(t, "sider fix-sider-bar light with-header", SiderClass(s))
}

func TestShouldNotifyCollapse(t *testing.T) {
	assert.True(t, ShouldNotifyCollapse(true, true))
	assert.True(t, ShouldNotifyCollapse(true, false))
	assert.True(t, ShouldNotifyCollapse(false, false))
	assert.False(t, ShouldNotifyCollapse(false, true))
}

func TestSiderBreakpoint(t *testing.T) {
	t.Run("mobile", func(t *testing.T) {
		var calls []bool
		s := NewSider(false, true, func(c bool) { calls = append(calls, c) })

		assert.True(t, s.Breakpoint(true), "initial render always notifies")
		s.Mounted()
		assert.False(t, s.Breakpoint(false))

		assert.True(t, s.Collapsed)
		assert.Equal(t, []bool{true}, calls)
	})

	t.Run("desktop", func(t *testing.T) {
		var calls []bool
		s := NewSider(false, false, func(c bool) { calls = append(calls, c) })
		s.Mounted()

		assert.True(t, s.Breakpoint(true))
		assert.True(t, s.Breakpoint(false))
		assert.Equal(t, []bool{true, false}, calls)
	})

	t.Run("toggle", func(t *testing.T) {
		s := NewSider(false, true, nil)
		s.Toggle()
		assert.True(t, s.Collapsed)
		s.Toggle()
		assert.False(t, s.Collapsed)
	})
}

func viewMenu() *menu.Menu {
	return &menu.Menu{Items: []menu.Item{
		{Key: "A", Path: "/a", Name: "A", Children: []menu.Item{
			{Key: "A1", Path: "/a/1", Name: "A1"},
			{Key: "A2", Path: "/a/2", Name: "A2", HideInMenu: true},
		}},
		{Key: "B", Path: "/b", Name: "B", Children: []menu.Item{
			{Key: "B1", Path: "/b/1", Name: "B1"},
		}},
	}}
}

func newView(t *testing.T, s Settings, path string, opts ViewOptions) ViewModel {
	t.Helper()
	m := viewMenu()
	res, err := menu.NewResolver(m.Items)
	require.NoError(t, err)
	return View(s, m, res, path, opts)
}

func TestView(t *testing.T) {
	vm := newView(t, DefaultSettings(), "/a/1", ViewOptions{})

	assert.Equal(t, []string{"A"}, vm.OpenKeys)
	assert.Equal(t, []string{"A1"}, vm.SelectedKeys)
	assert.Equal(t, "/a/1", vm.Path)
	assert.True(t, vm.ShowSider)
	assert.False(t, vm.ShowHeaderMenu)
	assert.False(t, vm.ShowCollapsedButton)
	assert.Equal(t, "sider", vm.SiderClass)
	assert.Equal(t, "grid-content", vm.GridClass)
	assert.Equal(t, []string{"A", "A1", "B", "B1"}, menu.FlatKeys(vm.Items), "hidden items are not rendered")
	assert.Len(t, vm.Breadcrumbs, 3)
}

func TestViewHiddenItemStillResolves(t *testing.T) {
	vm := newView(t, DefaultSettings(), "/a/2", ViewOptions{})
	assert.Equal(t, []string{"A"}, vm.OpenKeys)
	assert.Equal(t, []string{"A2"}, vm.SelectedKeys)
}

func TestViewCollapsed(t *testing.T) {
	vm := newView(t, DefaultSettings(), "/a/1", ViewOptions{Collapsed: true})
	assert.True(t, vm.Collapsed)
	assert.Equal(t, []string{}, vm.OpenKeys)
	assert.Equal(t, []string{"A1"}, vm.SelectedKeys)
}

func TestViewTopMenu(t *testing.T) {
	s := DefaultSettings()
	s.Layout = ModeTopMenu

	vm := newView(t, s, "/a/1", ViewOptions{})
	assert.False(t, vm.ShowSider)
	assert.True(t, vm.ShowHeaderMenu)
	assert.Equal(t, []string{}, vm.OpenKeys)
}

func TestViewBoth(t *testing.T) {
	s := DefaultSettings()
	s.Layout = ModeBoth

	vm := newView(t, s, "/a/1", ViewOptions{})
	assert.True(t, vm.ShowCollapsedButton)
	assert.Equal(t, "sider with-header", vm.SiderClass)

	s.CollapsedButton = false
	vm = newView(t, s, "/a/1", ViewOptions{})
	assert.False(t, vm.ShowCollapsedButton)
}

func TestViewOpenChange(t *testing.T) {
	vm := newView(t, DefaultSettings(), "/a/1", ViewOptions{OpenKeys: []string{"A", "B"}})
	assert.Equal(t, []string{"B"}, vm.OpenKeys)

	vm = newView(t, DefaultSettings(), "/a/1", ViewOptions{OpenKeys: []string{}})
	assert.Equal(t, []string{}, vm.OpenKeys)
}

func TestViewPrefixMatch(t *testing.T) {
	vm := newView(t, DefaultSettings(), "/b/1/edit", ViewOptions{Match: menu.MatchPrefix})
	assert.Equal(t, []string{"B"}, vm.OpenKeys)
	assert.Equal(t, []string{"B1"}, vm.SelectedKeys)
}

func TestViewBreakpoint(t *testing.T) {
	collapse := true

	tests := []struct {
		name string
		opts ViewOptions
		want bool
	}{
		{name: "no breakpoint", opts: ViewOptions{}, want: false},
		{name: "initial render on mobile", opts: ViewOptions{IsMobile: true, Breakpoint: &collapse}, want: true},
		{name: "mounted on mobile", opts: ViewOptions{IsMobile: true, Mounted: true, Breakpoint: &collapse}, want: false},
		{name: "mounted on desktop", opts: ViewOptions{Mounted: true, Breakpoint: &collapse}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newView(t, DefaultSettings(), "/a/1", tt.opts)
			assert.Equal(t, tt.want, vm.Collapsed)
			if tt.want {
				assert.Equal(t, []string{}, vm.OpenKeys)
			} else {
				assert.Equal(t, []string{"A"}, vm.OpenKeys)
			}
		})
	}
}

// Package render draws the application shell as HTML with gomponents.
package render

import (
	"fmt"
	"io"
	"slices"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/mchmarny/navshell/pkg/layout"
	"github.com/mchmarny/navshell/pkg/menu"
)

// Write renders the full page for vm with content into w.
func Write(w io.Writer, vm layout.ViewModel, content g.Node) error {
	return Page(vm, content).Render(w)
}

// Page renders the full document: sider, header, breadcrumb and content grid.
func Page(vm layout.ViewModel, content g.Node) g.Node {
	bodyClass := "layout layout-" + string(vm.Settings.Layout)
	if vm.Settings.ColorWeak {
		bodyClass += " color-weak"
	}

	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(pageTitle(vm))),
			),
			html.Body(
				html.Class(bodyClass),
				g.Attr("data-theme", string(vm.Settings.NavTheme)),
				g.Attr("style", fmt.Sprintf("--primary-color: %s", vm.Settings.PrimaryColor)),
				g.If(vm.ShowSider, Sider(vm)),
				html.Div(
					html.Class("layout-main"),
					Header(vm),
					html.Main(
						html.Class(vm.GridClass),
						Breadcrumb(vm.Breadcrumbs),
						content,
					),
				),
			),
		),
	)
}

func pageTitle(vm layout.ViewModel) string {
	if n := len(vm.Breadcrumbs); n > 1 {
		return vm.Breadcrumbs[n-1].Name + " - " + vm.Settings.Title
	}
	return vm.Settings.Title
}

// Sider renders the side menu with its logo block and collapse button.
func Sider(vm layout.ViewModel) g.Node {
	class := vm.SiderClass
	if vm.Collapsed {
		class += " collapsed"
	}

	width := vm.Settings.SiderWidth
	if vm.Collapsed {
		width = 80
	}

	return html.Aside(
		html.Class(class),
		g.Attr("style", fmt.Sprintf("width: %dpx", width)),
		// With a header above, the logo lives in the header.
		g.If(vm.Settings.Layout != layout.ModeBoth, LogoAndTitle(vm.Settings)),
		g.If(vm.ShowCollapsedButton, collapsedButton(vm.Collapsed)),
		Menu(vm.Items, vm.OpenKeys, vm.SelectedKeys, "inline"),
	)
}

// LogoAndTitle renders the logo and title linking to "/", or nothing when
// the menu header is disabled.
func LogoAndTitle(s layout.Settings) g.Node {
	if !s.MenuHeader {
		return nil
	}

	return html.Div(
		html.Class("sider-logo"),
		html.ID("logo"),
		html.A(
			html.Href("/"),
			g.If(s.Logo != "", html.Img(html.Src(s.Logo), html.Alt("logo"))),
			html.H1(g.Text(s.Title)),
		),
	)
}

func collapsedButton(collapsed bool) g.Node {
	icon, label := "menu-fold", "Collapse menu"
	if collapsed {
		icon, label = "menu-unfold", "Expand menu"
	}

	return html.Div(
		html.Class("sider-collapsed"),
		html.Button(
			html.Type("button"),
			html.Class("sider-trigger "+icon),
			g.Attr("aria-label", label),
			g.Attr("aria-expanded", fmt.Sprintf("%t", !collapsed)),
		),
	)
}

// Header renders the global header. In the top menu layout it carries the menu.
func Header(vm layout.ViewModel) g.Node {
	class := "header"
	if vm.Settings.FixedHeader {
		class += " fixed-header"
	}
	if vm.Settings.AutoHideHeader {
		class += " auto-hide"
	}

	return html.Header(
		html.Class(class),
		g.If(vm.Settings.Layout != layout.ModeSideMenu, LogoAndTitle(vm.Settings)),
		g.If(vm.ShowHeaderMenu, Menu(vm.Items, nil, vm.SelectedKeys, "horizontal")),
	)
}

// Breadcrumb renders crumbs; a crumb without a path is the current page.
func Breadcrumb(crumbs []menu.Breadcrumb) g.Node {
	if len(crumbs) == 0 {
		return nil
	}

	return html.Nav(
		html.Class("breadcrumb"),
		g.Attr("aria-label", "breadcrumb"),
		html.Ol(
			g.Map(crumbs, func(c menu.Breadcrumb) g.Node {
				if c.Path == "" {
					return html.Li(g.Attr("aria-current", "page"), g.Text(c.Name))
				}
				return html.Li(html.A(html.Href(c.Path), g.Text(c.Name)))
			}),
		),
	)
}

// Menu renders items as a nested list. Sections whose key is in open are
// expanded; the item whose key is in selected is marked current.
func Menu(items []menu.Item, open, selected []string, mode string) g.Node {
	return html.Nav(
		html.Class("menu menu-"+mode),
		menuList(items, open, selected),
	)
}

func menuList(items []menu.Item, open, selected []string) g.Node {
	return html.Ul(
		g.Map(items, func(it menu.Item) g.Node {
			return menuItem(it, open, selected)
		}),
	)
}

func menuItem(it menu.Item, open, selected []string) g.Node {
	if it.HasChildren() {
		return html.Li(
			html.Class("submenu"),
			g.Attr("data-key", it.Key),
			html.Details(
				g.If(slices.Contains(open, it.Key), g.Attr("open")),
				html.Summary(itemTitle(it)),
				menuList(it.Children, open, selected),
			),
		)
	}

	class := "menu-item"
	isSelected := slices.Contains(selected, it.Key)
	if isSelected {
		class += " selected"
	}

	return html.Li(
		html.Class(class),
		g.Attr("data-key", it.Key),
		itemLink(it, isSelected),
	)
}

func itemLink(it menu.Item, current bool) g.Node {
	if it.IsURL {
		target := it.Target
		if target == "" {
			target = "_blank"
		}
		return html.A(
			html.Href(it.Path),
			html.Target(target),
			html.Rel("noopener noreferrer"),
			itemTitle(it),
		)
	}

	if it.Path == "" {
		return itemTitle(it)
	}

	return html.A(
		html.Href(it.Path),
		g.If(current, g.Attr("aria-current", "page")),
		itemTitle(it),
	)
}

func itemTitle(it menu.Item) g.Node {
	return html.Span(
		g.If(it.Icon != "", html.I(html.Class("icon icon-"+it.Icon))),
		html.Span(g.Text(it.Name)),
	)
}

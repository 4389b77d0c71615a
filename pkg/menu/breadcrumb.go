package menu

import "strings"

// HomeName is the label of the root crumb when the tree has no item for "/".
const HomeName = "Home"

// Breadcrumb is a single breadcrumb navigation entry.
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"` // empty = current page (no link)
}

// NameMap indexes internal items by path.
func NameMap(tree []Item) map[string]*Item {
	m := make(map[string]*Item)
	var walk func([]Item)
	walk = func(list []Item) {
		for i := range list {
			it := &list[i]
			if it.Path != "" && !it.IsURL {
				if _, ok := m[it.Path]; !ok {
					m[it.Path] = it
				}
			}
			walk(it.Children)
		}
	}
	walk(tree)
	return m
}

// Breadcrumbs builds the trail for currentPath: the root crumb, then one
// crumb per path prefix that names a menu item. The last crumb has no link.
func Breadcrumbs(tree []Item, currentPath string) []Breadcrumb {
	names := NameMap(tree)

	root := Breadcrumb{Name: HomeName, Path: "/"}
	if it, ok := names["/"]; ok {
		root.Name = it.Name
	}
	crumbs := []Breadcrumb{root}

	for _, p := range prefixes(currentPath) {
		if it, ok := names[p]; ok {
			crumbs = append(crumbs, Breadcrumb{Name: it.Name, Path: p})
		}
	}

	crumbs[len(crumbs)-1].Path = ""
	return crumbs
}

// prefixes splits "/a/b/c" into "/a", "/a/b", "/a/b/c".
func prefixes(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := make([]string, 0, len(parts))
	cur := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		cur += "/" + part
		out = append(out, cur)
	}
	return out
}

package menu

import "strings"

// Match selects how the current route is compared to an item path.
type Match int

const (
	// MatchExact matches only when the route equals the item path.
	MatchExact Match = iota

	// MatchPrefix also matches routes below the item path ("/a" matches "/a/b").
	MatchPrefix
)

// String returns the label used in logs and metrics.
func (m Match) String() string {
	if m == MatchPrefix {
		return "prefix"
	}
	return "exact"
}

type resolveOptions struct {
	match Match
	leaf  bool
}

// ResolveOption configures ResolveOpenKeys and SelectedKeys.
type ResolveOption func(*resolveOptions)

// WithMatch sets the matching policy. MatchExact is the default.
func WithMatch(m Match) ResolveOption {
	return func(o *resolveOptions) { o.match = m }
}

// WithLeaf appends the matched item's own key after its ancestors.
func WithLeaf() ResolveOption {
	return func(o *resolveOptions) { o.leaf = true }
}

func newResolveOptions(opts []ResolveOption) resolveOptions {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o resolveOptions) matches(itemPath, current string) bool {
	if itemPath == "" {
		return false
	}
	if itemPath == current {
		return true
	}
	if o.match != MatchPrefix {
		return false
	}
	if itemPath == "/" {
		return strings.HasPrefix(current, "/")
	}
	return strings.HasPrefix(current, strings.TrimSuffix(itemPath, "/")+"/")
}

// match is the deepest item matching a route together with its ancestor keys.
type match struct {
	key       string
	depth     int
	ancestors []string
}

// find walks the tree depth-first and returns the deepest match.
// Among matches of equal depth the first in traversal order wins.
// External sections are walked but never recorded as ancestors.
func find(tree []Item, current string, o resolveOptions) (match, bool) {
	var (
		best  match
		found bool
		stack []string
	)

	var walk func([]Item, int)
	walk = func(list []Item, depth int) {
		for i := range list {
			it := &list[i]
			if !it.IsURL && o.matches(it.Path, current) {
				if !found || depth > best.depth {
					best = match{key: it.Key, depth: depth, ancestors: append([]string{}, stack...)}
					found = true
				}
			}
			if len(it.Children) == 0 {
				continue
			}
			if it.IsURL {
				walk(it.Children, depth+1)
				continue
			}
			stack = append(stack, it.Key)
			walk(it.Children, depth+1)
			stack = stack[:len(stack)-1]
		}
	}
	walk(tree, 0)

	return best, found
}

// ResolveOpenKeys returns the keys of the sections that must be expanded
// so that the item matching currentPath is visible, ordered root to leaf.
// The matched item itself is excluded unless WithLeaf is given.
// It returns an empty slice when nothing matches.
func ResolveOpenKeys(tree []Item, currentPath string, opts ...ResolveOption) []string {
	o := newResolveOptions(opts)

	m, ok := find(tree, currentPath, o)
	if !ok {
		return []string{}
	}

	keys := m.ancestors
	if o.leaf {
		keys = append(keys, m.key)
	}
	return keys
}

// SelectedKeys returns the key of the item matching currentPath, or an empty slice.
func SelectedKeys(tree []Item, currentPath string, opts ...ResolveOption) []string {
	m, ok := find(tree, currentPath, newResolveOptions(opts))
	if !ok {
		return []string{}
	}
	return []string{m.key}
}

// IsMainMenu reports whether key names a top-level item, by key or by path.
func IsMainMenu(tree []Item, key string) bool {
	if key == "" {
		return false
	}
	for i := range tree {
		if tree[i].Key == key || tree[i].Path == key {
			return true
		}
	}
	return false
}

// SingleOpen keeps at most one top-level section open. When keys holds more
// than one main-menu key, only the last main-menu key and the keys of its
// descendants survive, in their original order. Otherwise a copy of keys is
// returned.
func SingleOpen(tree []Item, keys []string) []string {
	last, count := "", 0
	for _, k := range keys {
		if IsMainMenu(tree, k) {
			last = k
			count++
		}
	}

	if count <= 1 {
		return append([]string{}, keys...)
	}

	branch := make(map[string]struct{})
	for i := range tree {
		if tree[i].Key == last || tree[i].Path == last {
			for _, k := range FlatKeys(tree[i].Children) {
				branch[k] = struct{}{}
			}
			break
		}
	}

	out := []string{}
	for _, k := range keys {
		if _, ok := branch[k]; ok || k == last {
			out = append(out, k)
		}
	}
	return out
}

package menu

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
)

var (
	// ErrEmptyKey is returned when an item has neither a key nor a path to derive one from.
	ErrEmptyKey = errors.New("menu item has no key and no path")

	// ErrDuplicateKey is returned when two items in the same tree share a key.
	ErrDuplicateKey = errors.New("duplicate menu item key")

	// ErrDuplicatePath is returned when an item with a handler shares its
	// internal path with another item, so the route would be served twice.
	ErrDuplicatePath = errors.New("duplicate menu item path")
)

// Item represents an individual item in the menu, which may contain sub-items.
type Item struct {
	// Key identifies the item; unique within the tree.
	// When empty, Normalize derives it from Path.
	Key string `json:"key" yaml:"key"`

	// Path is the route the item points to. Relative paths are joined onto the parent path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Name is the label shown in the menu and in breadcrumbs.
	Name string `json:"name" yaml:"name"`

	// Icon is an optional icon name.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Target is the link target for external items (e.g. "_blank").
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// IsURL marks Path as an absolute external link rather than an internal route.
	IsURL bool `json:"isUrl,omitempty" yaml:"isUrl,omitempty"`

	// HideInMenu keeps the item routable but out of the rendered menu.
	HideInMenu bool `json:"hideInMenu,omitempty" yaml:"hideInMenu,omitempty"`

	// HideChildrenInMenu renders the item as a leaf even if it has children.
	HideChildrenInMenu bool `json:"hideChildrenInMenu,omitempty" yaml:"hideChildrenInMenu,omitempty"`

	// Handler is the HTTP handler associated with this menu item.
	// This field is not serialized.
	Handler http.Handler `json:"-" yaml:"-"`

	// Children are the sub-items of this menu item.
	Children []Item `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren reports whether the item renders as a section.
func (i *Item) HasChildren() bool {
	return len(i.Children) > 0 && !i.HideChildrenInMenu
}

// isExternal reports whether p is an absolute link that leaves the application.
func isExternal(p string) bool {
	lp := strings.ToLower(p)
	return strings.HasPrefix(lp, "http://") ||
		strings.HasPrefix(lp, "https://") ||
		strings.HasPrefix(lp, "mailto:") ||
		strings.HasPrefix(lp, "//")
}

// Normalize returns a copy of items with keys filled in from paths,
// relative child paths resolved against their parent and IsURL set on
// external links. The input is not modified.
func Normalize(items []Item) ([]Item, error) {
	n := &normalizer{
		keys:  make(map[string]struct{}),
		paths: make(map[string]bool),
	}
	return n.normalize(items, "/")
}

type normalizer struct {
	keys map[string]struct{}

	// paths records every internal path and whether any item on it has a handler.
	paths map[string]bool
}

func (n *normalizer) normalize(items []Item, parent string) ([]Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]Item, len(items))
	for i := range items {
		it := items[i]

		switch {
		case it.Path == "":
		case isExternal(it.Path):
			it.IsURL = true
		case !strings.HasPrefix(it.Path, "/"):
			it.Path = path.Join(parent, it.Path)
		}

		if it.Key == "" {
			if it.Path == "" {
				return nil, fmt.Errorf("item %q: %w", it.Name, ErrEmptyKey)
			}
			it.Key = it.Path
		}

		if it.Path != "" && !it.IsURL {
			handled, ok := n.paths[it.Path]
			if ok && (handled || it.Handler != nil) {
				return nil, fmt.Errorf("path %q: %w", it.Path, ErrDuplicatePath)
			}
			n.paths[it.Path] = handled || it.Handler != nil
		}

		if _, ok := n.keys[it.Key]; ok {
			return nil, fmt.Errorf("key %q: %w", it.Key, ErrDuplicateKey)
		}
		n.keys[it.Key] = struct{}{}

		base := parent
		if it.Path != "" && !it.IsURL {
			base = it.Path
		}

		children, err := n.normalize(it.Children, base)
		if err != nil {
			return nil, err
		}
		it.Children = children

		out[i] = it
	}

	return out, nil
}

// FlatKeys returns every key in the tree in pre-order.
func FlatKeys(items []Item) []string {
	keys := make([]string, 0, len(items))
	var walk func([]Item)
	walk = func(list []Item) {
		for i := range list {
			keys = append(keys, list[i].Key)
			walk(list[i].Children)
		}
	}
	walk(items)
	return keys
}

// Visible returns the items that render in a menu: hidden items are dropped
// and items with HideChildrenInMenu lose their children.
func Visible(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.HideInMenu {
			continue
		}
		if it.HideChildrenInMenu {
			it.Children = nil
		} else {
			it.Children = Visible(it.Children)
		}
		out = append(out, it)
	}
	return out
}

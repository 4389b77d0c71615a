package menu

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mchmarny/navshell/pkg/metric"
)

// DefaultCacheSize is the number of resolved routes kept by a Resolver.
const DefaultCacheSize = 512

type resultKind uint8

const (
	kindOpen resultKind = iota
	kindSelected
)

type cacheKey struct {
	tree  uint64
	path  string
	kind  resultKind
	match Match
	leaf  bool
}

// Resolver memoizes ResolveOpenKeys and SelectedKeys for one tree.
// It is safe for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	tree    []Item
	sum     uint64
	cache   *lru.Cache[cacheKey, []string]
	counter metric.IncrementalCounter
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	size    int
	counter metric.IncrementalCounter
}

// WithCacheSize sets the number of cached results.
func WithCacheSize(n int) ResolverOption {
	return func(c *resolverConfig) { c.size = n }
}

// WithCacheCounter counts cache lookups, labeled "hit" or "miss".
func WithCacheCounter(counter metric.IncrementalCounter) ResolverOption {
	return func(c *resolverConfig) { c.counter = counter }
}

// NewResolver creates a memoizing resolver over tree.
func NewResolver(tree []Item, opts ...ResolverOption) (*Resolver, error) {
	cfg := resolverConfig{size: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache, err := lru.New[cacheKey, []string](cfg.size)
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}

	return &Resolver{
		tree:    tree,
		sum:     Fingerprint(tree),
		cache:   cache,
		counter: cfg.counter,
	}, nil
}

// Tree returns the tree currently resolved against.
func (r *Resolver) Tree() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

// SetTree replaces the tree and drops every cached result.
func (r *Resolver) SetTree(tree []Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tree = tree
	r.sum = Fingerprint(tree)
	r.cache.Purge()
}

// Len returns the number of cached results.
func (r *Resolver) Len() int {
	return r.cache.Len()
}

// OpenKeys is the memoized form of ResolveOpenKeys.
func (r *Resolver) OpenKeys(path string, opts ...ResolveOption) []string {
	return r.lookup(kindOpen, path, opts)
}

// SelectedKeys is the memoized form of SelectedKeys.
func (r *Resolver) SelectedKeys(path string, opts ...ResolveOption) []string {
	return r.lookup(kindSelected, path, opts)
}

func (r *Resolver) lookup(kind resultKind, path string, opts []ResolveOption) []string {
	o := newResolveOptions(opts)

	r.mu.RLock()
	tree, sum := r.tree, r.sum
	r.mu.RUnlock()

	key := cacheKey{tree: sum, path: path, kind: kind, match: o.match, leaf: o.leaf}
	if keys, ok := r.cache.Get(key); ok {
		r.count("hit")
		return append([]string{}, keys...)
	}
	r.count("miss")

	var keys []string
	if kind == kindOpen {
		keys = ResolveOpenKeys(tree, path, opts...)
	} else {
		keys = SelectedKeys(tree, path, opts...)
	}

	r.cache.Add(key, keys)
	return append([]string{}, keys...)
}

func (r *Resolver) count(result string) {
	if r.counter != nil {
		r.counter.Increment(result)
	}
}

// Fingerprint hashes the shape of the tree: keys, paths and external flags.
// Trees with the same fingerprint resolve identically.
func Fingerprint(tree []Item) uint64 {
	d := xxhash.New()
	var walk func([]Item, int)
	walk = func(list []Item, depth int) {
		for i := range list {
			it := &list[i]
			_, _ = d.WriteString(strconv.Itoa(depth))
			_, _ = d.WriteString("\x00")
			_, _ = d.WriteString(it.Key)
			_, _ = d.WriteString("\x00")
			_, _ = d.WriteString(it.Path)
			_, _ = d.WriteString("\x00")
			_, _ = d.WriteString(strconv.FormatBool(it.IsURL))
			_, _ = d.WriteString("\x01")
			walk(it.Children, depth+1)
		}
	}
	walk(tree, 0)
	return d.Sum64()
}

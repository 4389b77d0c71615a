package menu

// OpenState tracks which sections of a sider menu are expanded.
// It is not safe for concurrent use; each view owns its own.
type OpenState struct {
	// Controlled means the caller owns the open keys and Change leaves them alone.
	Controlled bool

	// OnOpenChange, when set, receives every change instead of the state.
	OnOpenChange func(keys []string)

	res     *Resolver
	opts    []ResolveOption
	keys    []string
	path    string
	flatLen int
	synced  bool
}

// NewOpenState creates a state resolving against res with opts.
func NewOpenState(res *Resolver, opts ...ResolveOption) *OpenState {
	return &OpenState{res: res, opts: opts, keys: []string{}}
}

// Keys returns a copy of the open keys.
func (s *OpenState) Keys() []string {
	return append([]string{}, s.keys...)
}

// Sync recomputes the open keys when the route or the number of menu keys
// changed since the last sync. It reports whether a recomputation happened.
func (s *OpenState) Sync(path string) bool {
	flatLen := len(FlatKeys(s.res.Tree()))
	if s.synced && path == s.path && flatLen == s.flatLen {
		return false
	}

	s.path = path
	s.flatLen = flatLen
	s.synced = true
	s.keys = s.res.OpenKeys(path, s.opts...)
	return true
}

// Change applies a user expand/collapse. Only one main-menu section stays open.
func (s *OpenState) Change(keys []string) {
	if s.OnOpenChange != nil {
		s.OnOpenChange(keys)
		return
	}
	if s.Controlled {
		return
	}
	s.keys = SingleOpen(s.res.Tree(), keys)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments or tenants
// can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RenderKey generates a prefixed key for a rendered slide.
func (k *ScopedKeyer) RenderKey(backgroundHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(backgroundHash, opts)
}

// SuggestKey generates a prefixed key for a style suggestion.
func (k *ScopedKeyer) SuggestKey(backgroundHash, title, body string) string {
	return k.prefix + k.inner.SuggestKey(backgroundHash, title, body)
}

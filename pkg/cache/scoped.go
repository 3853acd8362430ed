package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several deployments
// sharing one Redis or MongoDB cache keep separate entries. It is built from
// the prefix setting of the cache config:
//
//	[cache]
//	backend = "redis"
//	prefix = "staging:"
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

// PositionsKey generates a prefixed positions key.
func (k *ScopedKeyer) PositionsKey(modelHash string, opts PositionsKeyOpts) string {
	return k.prefix + k.inner.PositionsKey(modelHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(modelHash, positionsHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(modelHash, positionsHash, opts)
}

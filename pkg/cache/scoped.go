package cache

// ScopedKeyer wraps a Keyer with a prefix. Registry clients pointed at a
// mirror use it so that mirror responses never shadow rubygems.org ones.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mirror:gems.internal:")
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

// HTTPKey generates a prefixed key for registry response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

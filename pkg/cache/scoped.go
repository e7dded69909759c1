package cache

// ScopedKeyer wraps a Keyer with a prefix so that several callers can share
// one store without colliding.
//
//	// The HTTP server keeps its entries apart from CLI runs on the same Redis
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(schemaHash, opts)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix so that several front ends can
// share one backend without their sessions colliding.
//
// Example usage:
//
//	// The HTTP server keeps its session apart from the CLI's
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
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

// SessionKey generates a prefixed session key.
func (k *ScopedKeyer) SessionKey(sessionID string) string {
	return k.prefix + k.inner.SessionKey(sessionID)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}

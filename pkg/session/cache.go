package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/cache"
)

// CacheStore keeps sessions in a cache backend. Expiry is delegated to the
// backend's TTL.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
}

// NewCacheStore creates a store over c. If keyer is nil, the default keyer
// is used.
func NewCacheStore(c cache.Cache, keyer cache.Keyer) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keyer: keyer}
}

func (s *CacheStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, hit, err := s.cache.Get(ctx, s.keyer.SessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !hit {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return s.Delete(ctx, sess.ID)
		}
	}
	if err := s.cache.Set(ctx, s.keyer.SessionKey(sess.ID), data, ttl); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, s.keyer.SessionKey(sessionID))
}

// Cleanup is a no-op: the backend expires entries itself.
func (s *CacheStore) Cleanup(ctx context.Context) error { return nil }

var _ Store = (*CacheStore)(nil)

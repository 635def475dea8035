package api

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/supabase/siws/internal/utilities/siws"
)

// NonceStore remembers the nonces handed out by the nonce endpoint until
// they are used or expire. It lives in memory only; a restart forgets every
// outstanding nonce.
type NonceStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewNonceStore(ttl time.Duration, now func() time.Time) *NonceStore {
	return &NonceStore{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
		now:   now,
	}
}

// Issue generates a fresh nonce and returns it with its expiry.
func (s *NonceStore) Issue() (string, time.Time, error) {
	for {
		nonce, err := siws.GenerateNonce()
		if err != nil {
			return "", time.Time{}, err
		}

		expiresAt := s.now().Add(s.ttl)

		// Add refuses to overwrite an outstanding nonce
		if err := s.cache.Add(nonce, expiresAt, s.ttl); err == nil {
			return nonce, expiresAt, nil
		}
	}
}

// Consume reports whether nonce is outstanding and removes it, so each
// nonce is accepted at most once.
func (s *NonceStore) Consume(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.cache.Get(nonce)
	if !ok {
		return false
	}
	s.cache.Delete(nonce)

	expiresAt, ok := value.(time.Time)
	return ok && s.now().Before(expiresAt)
}

// Outstanding returns the number of nonces not yet used or expired.
func (s *NonceStore) Outstanding() int {
	return s.cache.ItemCount()
}

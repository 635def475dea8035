package api

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNonceStore(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewNonceStore(time.Minute, func() time.Time {
		return now
	})

	nonce, expiresAt, err := store.Issue()
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Minute), expiresAt)
	require.Equal(t, 1, store.Outstanding())

	require.False(t, store.Consume("someothernonce"))
	require.True(t, store.Consume(nonce))
	require.False(t, store.Consume(nonce))
	require.Equal(t, 0, store.Outstanding())
}

func TestNonceStoreExpiry(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewNonceStore(time.Minute, func() time.Time {
		return now
	})

	nonce, _, err := store.Issue()
	require.NoError(t, err)

	now = now.Add(time.Minute)
	require.False(t, store.Consume(nonce))
	require.Equal(t, 0, store.Outstanding())
}

func TestNonceStoreConsumeOnce(t *testing.T) {
	store := NewNonceStore(time.Minute, time.Now)

	nonce, _, err := store.Issue()
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Consume(nonce) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, accepted)
}

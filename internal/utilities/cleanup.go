package utilities

import (
	"context"
	"sync"
)

// WaitForCleanup waits until wg is done or until ctx signals done, whichever
// comes first.
func WaitForCleanup(ctx context.Context, wg *sync.WaitGroup) {
	cleanupDone := make(chan struct{})

	go func() {
		defer close(cleanupDone)

		wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return

	case <-cleanupDone:
		return
	}
}

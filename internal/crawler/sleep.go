package crawler

import (
	"context"
	"time"
)

// Sleep pauses for d and reports whether ctx is still live afterwards. A
// canceled ctx cuts the pause short.
func Sleep(ctx context.Context, d time.Duration) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if d > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(d):
		}
	}
	return ctx.Err() == nil
}

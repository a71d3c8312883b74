package batch

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	jitterMu     sync.Mutex
	jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// withJitter spreads a base delay uniformly across [1-ratio, 1+ratio] so
// request cadence never looks machine-uniform to the marketplace.
func withJitter(base time.Duration, ratio float64) time.Duration {
	if base <= 0 {
		return 0
	}
	if ratio <= 0 {
		return base
	}
	jitterMu.Lock()
	factor := 1 - ratio + jitterSource.Float64()*2*ratio
	jitterMu.Unlock()
	return time.Duration(float64(base) * factor)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package order

import (
	"fmt"
	"math"
	"sync"
	"time"

	"dineflow/internal/cache"
)

const (
	waitSampleTTL  = 2 * time.Hour
	waitSampleSize = 20

	baseWaitMinutes    = 10.0
	perItemWaitMinutes = 3.0
)

// WaitTracker keeps a rolling per-merchant sample of recent order sizes in
// the TTL store and turns it into a rough preparation-time estimate: base
// minutes plus per-item minutes times the rolling mean item count. Samples
// age out with the store TTL so a quiet merchant falls back to the base
// estimate.
type WaitTracker struct {
	mu    sync.Mutex
	store *cache.Store
}

// NewWaitTracker creates a tracker on top of the given store.
func NewWaitTracker(store *cache.Store) *WaitTracker {
	return &WaitTracker{store: store}
}

// Record adds one committed order's total item count to the merchant's
// rolling sample.
func (t *WaitTracker) Record(merchantID int64, itemCount int) {
	if itemCount <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := waitKey(merchantID)
	var samples []int
	if v, ok := t.store.Get(key); ok {
		samples, _ = v.([]int)
	}
	samples = append(samples, itemCount)
	if len(samples) > waitSampleSize {
		samples = samples[len(samples)-waitSampleSize:]
	}
	t.store.Set(key, samples, waitSampleTTL)
}

// Estimate returns the estimated preparation minutes for a new order placed
// now, and how many samples back it. Without samples the mean defaults to a
// one-item order.
func (t *WaitTracker) Estimate(merchantID int64) (minutes, sampleCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mean := 1.0
	var samples []int
	if v, ok := t.store.Get(waitKey(merchantID)); ok {
		samples, _ = v.([]int)
	}
	if len(samples) > 0 {
		total := 0
		for _, n := range samples {
			total += n
		}
		mean = float64(total) / float64(len(samples))
	}

	estimate := baseWaitMinutes + perItemWaitMinutes*mean
	return int(math.Ceil(estimate)), len(samples)
}

func waitKey(merchantID int64) string {
	return fmt.Sprintf("wait:%d", merchantID)
}

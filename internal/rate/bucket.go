package rate

import (
	"context"
	"sync"
	"time"
)

// leakyBucket schedules submissions at a target rate by tracking when
// the next one should start, rather than how many tokens are available.
// Rate changes do not cause bursting, which makes it the pacing
// primitive for ramping strategies.
type leakyBucket struct {
	mu          sync.Mutex
	rate        float64   // submissions per second
	lastDrip    time.Time // last scheduling decision
	accumulated float64   // fractional submissions accrued
}

func newLeakyBucket(rate float64) *leakyBucket {
	if rate <= 0 {
		rate = 1.0
	}
	return &leakyBucket{rate: rate, lastDrip: time.Now()}
}

// next returns when the next submission should start. The returned time
// may be in the past when the caller is behind schedule.
func (lb *leakyBucket) next() time.Time {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(lb.lastDrip).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	lb.accumulated += elapsed * lb.rate
	if lb.accumulated > 1.0 {
		lb.accumulated = 1.0
	}

	if lb.accumulated >= 1.0 {
		lb.accumulated -= 1.0
		lb.lastDrip = now
		return now
	}

	deficit := 1.0 - lb.accumulated
	waitSeconds := deficit / lb.rate
	lb.accumulated = 0
	nextTime := now.Add(time.Duration(waitSeconds * float64(time.Second)))

	// Anchoring lastDrip at nextTime prevents double-counting the slept
	// interval on the following call.
	lb.lastDrip = nextTime

	return nextTime
}

// wait blocks until the next submission slot, honoring ctx.
func (lb *leakyBucket) wait(ctx context.Context) error {
	d := time.Until(lb.next())
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

// setRate retargets the bucket. Accumulated credit is dropped so a
// ramp-down cannot burst.
func (lb *leakyBucket) setRate(rate float64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if rate <= 0 {
		rate = 1.0
	}
	lb.rate = rate
	lb.accumulated = 0
	lb.lastDrip = time.Now()
}

// getRate returns the current target rate.
func (lb *leakyBucket) getRate() float64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.rate
}

// Package clock provides the per-worker pacer described in spec.md §4.2:
// an open-loop minimum inter-request interval, independent across workers.
package clock

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces a single worker to a maximum requests-per-second rate. A nil
// *Limiter, or one built from a non-positive rate, never waits.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter builds a per-worker pacer. ratePerSecond <= 0 means unlimited.
// Burst is fixed at 1 so pacing approximates the fixed "sleep 1/rate
// seconds before dispatch" rule spec.md describes, rather than allowing a
// worker to burst ahead of its own rate.
func NewLimiter(ratePerSecond float64) *Limiter {
	if ratePerSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1)}
}

// Wait blocks until the next request is allowed to dispatch, or returns the
// context's error if it is cancelled first.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

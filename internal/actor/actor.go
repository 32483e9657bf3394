package actor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/kherrera/stampede/internal/metrics"
)

// Actor simulates one concurrent user. It repeatedly invokes the
// operation until the deadline, recording every outcome into the
// shared accumulator. Operation failures are absorbed locally: they
// are counted but never terminate the actor or its siblings.
type Actor struct {
	op       Operation
	acc      *metrics.Accumulator
	pacing   time.Duration
	deadline time.Time
	limiter  *rate.Limiter
}

// run loops until the deadline or context cancellation. The deadline
// is checked only between iterations: an in-flight call is always
// allowed to complete.
func (a *Actor) run(ctx context.Context) {
	// Scheduling waits (pacing, rate cap) are bounded by the deadline;
	// the operation itself sees only the caller's context.
	waitCtx, cancel := context.WithDeadline(ctx, a.deadline)
	defer cancel()

	for {
		if !time.Now().Before(a.deadline) || ctx.Err() != nil {
			return
		}
		if a.limiter != nil {
			if err := a.limiter.Wait(waitCtx); err != nil {
				return
			}
		}

		start := time.Now()
		err := a.op.Do(ctx)
		elapsed := time.Since(start)

		if err != nil {
			a.acc.RecordFailure(err)
		} else {
			a.acc.RecordSuccess(elapsed)
		}

		if a.pacing > 0 && !a.pause(waitCtx) {
			return
		}
	}
}

// pause waits out the pacing delay, returning false if the deadline
// or cancellation arrives first.
func (a *Actor) pause(ctx context.Context) bool {
	timer := time.NewTimer(a.pacing)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/kherrera/stampede/internal/metrics"
)

// Options configure one scheduler invocation.
type Options struct {
	Actors        int           // number of concurrent virtual actors
	RampUp        time.Duration // window over which launches are staggered (0 = all at once)
	Pacing        time.Duration // think time between an actor's iterations (0 = none)
	RatePerSecond int           // cap on total call starts per second (0 = unlimited)
}

func (o *Options) normalize() {
	if o.Actors <= 0 {
		o.Actors = 1
	}
	if o.RampUp < 0 {
		o.RampUp = 0
	}
	if o.Pacing < 0 {
		o.Pacing = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
}

// Scheduler launches a target number of actors, optionally staggered
// over a ramp-up window, and joins them all before returning.
type Scheduler struct {
	opt    Options
	active atomic.Int32
}

func NewScheduler(opt Options) *Scheduler {
	opt.normalize()
	return &Scheduler{opt: opt}
}

// Active reports how many actors are currently running. Monitoring
// goroutines may call this while Run is in flight.
func (s *Scheduler) Active() int {
	return int(s.active.Load())
}

// Run launches the configured actors against the shared accumulator
// and blocks until every launched actor has reached the deadline and
// exited. Launches are spaced evenly across the ramp-up window so all
// actors are running once the window elapses.
//
// Operation failures never surface here; the only error is the run
// itself being interrupted through ctx before all actors launched.
func (s *Scheduler) Run(ctx context.Context, op Operation, acc *metrics.Accumulator, deadline time.Time) error {
	var limiter *rate.Limiter
	if s.opt.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opt.RatePerSecond), s.opt.RatePerSecond)
	}

	var stagger time.Duration
	if s.opt.RampUp > 0 && s.opt.Actors > 1 {
		stagger = s.opt.RampUp / time.Duration(s.opt.Actors)
	}

	var wg sync.WaitGroup
	var launchErr error

	for i := 0; i < s.opt.Actors; i++ {
		if i > 0 && stagger > 0 {
			if err := sleepCtx(ctx, stagger); err != nil {
				launchErr = fmt.Errorf("ramp-up interrupted after %d of %d actors: %w", i, s.opt.Actors, err)
				break
			}
		}
		if ctx.Err() != nil {
			launchErr = fmt.Errorf("ramp-up interrupted after %d of %d actors: %w", i, s.opt.Actors, ctx.Err())
			break
		}

		a := &Actor{
			op:       op,
			acc:      acc,
			pacing:   s.opt.Pacing,
			deadline: deadline,
			limiter:  limiter,
		}
		wg.Add(1)
		s.active.Add(1)
		go func() {
			defer wg.Done()
			defer s.active.Add(-1)
			a.run(ctx)
		}()
	}

	wg.Wait()
	return launchErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package actor_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// fakeOperation simulates a unit of work with fixed latency.
type fakeOperation struct {
	latency  time.Duration
	calls    int64
	failures int64 // fail every call while > 0 remaining
	inFlight int32
	maxSeen  int32
}

func (f *fakeOperation) Do(ctx context.Context) error {
	atomic.AddInt64(&f.calls, 1)
	cur := atomic.AddInt32(&f.inFlight, 1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, cur) {
			break
		}
	}
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	atomic.AddInt32(&f.inFlight, -1)
	if atomic.LoadInt64(&f.failures) > 0 {
		atomic.AddInt64(&f.failures, -1)
		return errors.New("simulated failure")
	}
	return nil
}

func TestSchedulerJoinsAllActors(t *testing.T) {
	op := &fakeOperation{latency: time.Millisecond}
	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{Actors: 8})

	err := sched.Run(context.Background(), op, acc, time.Now().Add(60*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if sched.Active() != 0 {
		t.Fatalf("scheduler returned with %d actors still active", sched.Active())
	}

	stats := acc.Snapshot()
	if stats.Total != atomic.LoadInt64(&op.calls) {
		t.Errorf("every invocation must record exactly one outcome: %d calls vs %d outcomes", op.calls, stats.Total)
	}
	if stats.Total == 0 {
		t.Error("expected some calls to execute")
	}
}

func TestActorHonorsDeadline(t *testing.T) {
	op := &fakeOperation{latency: 2 * time.Millisecond}
	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{Actors: 1})

	start := time.Now()
	if err := sched.Run(context.Background(), op, acc, start.Add(50*time.Millisecond)); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	elapsed := time.Since(start)
	// Allow scheduling fudge plus one in-flight call completing.
	if elapsed < 50*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Fatalf("deadline enforcement off: %s", elapsed)
	}
}

func TestActorAbsorbsFailures(t *testing.T) {
	op := &fakeOperation{failures: 1 << 30} // every call fails
	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{Actors: 3, Pacing: time.Millisecond})

	if err := sched.Run(context.Background(), op, acc, time.Now().Add(40*time.Millisecond)); err != nil {
		t.Fatalf("operation failures must not surface as run errors: %v", err)
	}

	stats := acc.Snapshot()
	if stats.Failures == 0 {
		t.Fatal("expected recorded failures")
	}
	if stats.Successes != 0 {
		t.Errorf("expected no successes, got %d", stats.Successes)
	}
	// Actors kept iterating despite every call failing.
	if stats.Failures < 3 {
		t.Errorf("actors should survive failures and keep calling, got %d failures", stats.Failures)
	}
}

func TestPacingReducesCallRate(t *testing.T) {
	unpaced := &fakeOperation{}
	paced := &fakeOperation{}
	deadline := 60 * time.Millisecond

	accA := metrics.NewAccumulator()
	if err := actor.NewScheduler(actor.Options{Actors: 1}).Run(context.Background(), unpaced, accA, time.Now().Add(deadline)); err != nil {
		t.Fatal(err)
	}
	accB := metrics.NewAccumulator()
	if err := actor.NewScheduler(actor.Options{Actors: 1, Pacing: 10 * time.Millisecond}).Run(context.Background(), paced, accB, time.Now().Add(deadline)); err != nil {
		t.Fatal(err)
	}

	if atomic.LoadInt64(&paced.calls) > 10 {
		t.Errorf("pacing 10ms over 60ms should cap iterations near 6, got %d", paced.calls)
	}
	if atomic.LoadInt64(&unpaced.calls) <= atomic.LoadInt64(&paced.calls) {
		t.Errorf("unpaced actor should out-call paced actor: %d vs %d", unpaced.calls, paced.calls)
	}
}

func TestRampUpStaggersLaunches(t *testing.T) {
	op := &fakeOperation{latency: 5 * time.Millisecond}
	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{Actors: 4, RampUp: 80 * time.Millisecond})

	start := time.Now()
	if err := sched.Run(context.Background(), op, acc, start.Add(100*time.Millisecond)); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	// With launches spread over 80ms and 5ms calls, the full set of 4
	// can only ever be concurrent near the end of the window.
	if op.maxSeen > 4 {
		t.Fatalf("launched more actors than configured: %d", op.maxSeen)
	}
	if op.maxSeen == 0 {
		t.Fatal("no actor ever ran")
	}
}

func TestRampUpInterruptedSurfacesRunError(t *testing.T) {
	op := &fakeOperation{}
	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{Actors: 10, RampUp: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := sched.Run(ctx, op, acc, time.Now().Add(2*time.Second))
	if err == nil {
		t.Fatal("interrupting the ramp must surface a run error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestRateCapLimitsThroughput(t *testing.T) {
	op := &fakeOperation{}
	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{Actors: 10, RatePerSecond: 100})

	duration := 100 * time.Millisecond
	if err := sched.Run(context.Background(), op, acc, time.Now().Add(duration)); err != nil {
		t.Fatal(err)
	}

	// Upper bound ~ rate * seconds plus the initial burst allowance.
	maxExpected := int64(float64(100)*duration.Seconds()*1.2) + 100
	if calls := atomic.LoadInt64(&op.calls); calls > maxExpected {
		t.Fatalf("rate cap exceeded: calls=%d max=%d", calls, maxExpected)
	}
}

func TestOperationFuncAdapter(t *testing.T) {
	var called bool
	op := actor.OperationFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	if err := op.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("adapter did not invoke the function")
	}
}

// Package actor provides the virtual-actor execution core of the load
// engine.
//
// A virtual actor models one simulated user: it repeatedly invokes an
// [Operation], measures each call's wall time, records the outcome
// into a shared metrics accumulator, and waits a pacing delay between
// iterations. Actors stop at an absolute deadline, checked only
// between iterations so an in-flight call always completes.
//
// The [Scheduler] launches a target number of actors, optionally
// staggered across a ramp-up window, and joins them all:
//
//	sched := actor.NewScheduler(actor.Options{
//		Actors: 50,
//		RampUp: 10 * time.Second,
//		Pacing: 500 * time.Millisecond,
//	})
//	err := sched.Run(ctx, op, acc, time.Now().Add(time.Minute))
//
// # Operation interface
//
// The [Operation] interface defines what an actor executes:
//
//	type Operation interface {
//		Do(ctx context.Context) error
//	}
//
// Implement it for any protocol; the engine treats normal completion
// as success and any returned error as failure.
//
// # Failure isolation
//
// Operation errors are counted and absorbed. One actor's failures
// never abort sibling actors or the run; only interrupting the run's
// context surfaces an error from [Scheduler.Run].
package actor

// Package profile implements the four load-profile controllers that
// orchestrate virtual actors into complete test runs.
//
//   - [Load]: steady concurrency for a fixed duration.
//   - [Stress]: progressive concurrency escalation with automatic
//     breaking-point detection.
//   - [Spike]: base, spike, and recovery phases in strict sequence.
//   - [Endurance]: long-duration soak with periodic monitoring
//     snapshots.
//
// Each controller validates its options up front, creates fresh
// accumulators per phase, drives phases through the actor scheduler
// (phase N+1 never starts before phase N's actors have all joined),
// and reduces the accumulated metrics into its profile-specific
// result. Operation failures only ever show up in aggregate error
// rates; a run errors out only on invalid options or interruption.
package profile

// Package metrics provides concurrency-safe metrics accumulation for
// load-test runs.
//
// The central [Accumulator] type collects per-call outcomes from all
// virtual actors in a run or phase:
//
//	acc := metrics.NewAccumulator()
//
//	// From any number of goroutines:
//	acc.RecordSuccess(latency)
//	acc.RecordFailure(err)
//
//	// Consistent aggregate view, safe while writers are active:
//	stats := acc.Snapshot()
//
// # Statistics
//
// The [Stats] type carries request counts, min/max/mean latency,
// HdrHistogram-backed P50/P90/P99 percentiles, the error rate as a
// percentage, and throughput in calls per second.
//
// # Lifecycle
//
// An Accumulator is owned by a single run or phase. Orchestrators
// call [Accumulator.MarkEnd] after all actors have joined, and
// [Accumulator.Reset] only between isolated phases, never while
// actors are still writing.
package metrics

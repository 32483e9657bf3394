package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Accumulator records per-call outcomes from many concurrent actors.
// Every operation invocation results in exactly one recorded outcome:
// either a success latency or a failure.
type Accumulator struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	errorsByType map[string]int64
	start        time.Time
	end          time.Time
}

// Stats is a consistent view of the accumulated metrics.
type Stats struct {
	Total       int64         `json:"total"`
	Successes   int64         `json:"successes"`
	Failures    int64         `json:"failures"`
	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`
	MeanLatency time.Duration `json:"-"`
	P50Latency  time.Duration `json:"-"`
	P90Latency  time.Duration `json:"-"`
	P99Latency  time.Duration `json:"-"`
	Elapsed     time.Duration `json:"-"`

	// ErrorRate is failures over total, as a percentage.
	ErrorRate float64 `json:"error_rate_percent"`
	// Throughput is total calls over elapsed seconds.
	Throughput float64 `json:"throughput_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64        `json:"min_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms"`
	MeanLatencyMs float64        `json:"mean_latency_ms"`
	P50LatencyMs  float64        `json:"p50_latency_ms"`
	P90LatencyMs  float64        `json:"p90_latency_ms"`
	P99LatencyMs  float64        `json:"p99_latency_ms"`
	ElapsedMs     float64        `json:"elapsed_ms"`
	Errors        map[string]int `json:"errors,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewAccumulator() *Accumulator {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Accumulator{
		hist:         h,
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// RecordSuccess records one successful call and its measured latency.
func (a *Accumulator) RecordSuccess(latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < a.hist.LowestTrackableValue() {
			us = a.hist.LowestTrackableValue()
		}
		if us > a.hist.HighestTrackableValue() {
			us = a.hist.HighestTrackableValue()
		}
		_ = a.hist.RecordValue(us)
	}
	a.sumLatency += latency

	if a.minLatency == 0 || latency < a.minLatency {
		a.minLatency = latency
	}
	if latency > a.maxLatency {
		a.maxLatency = latency
	}
	a.successes++
}

// RecordFailure records one failed call, bucketed by error type.
func (a *Accumulator) RecordFailure(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failures++
	errorType := "unknown"
	if err != nil {
		errorType = fmt.Sprintf("%T", err)
		if len(errorType) > 30 {
			errorType = errorType[len(errorType)-30:]
		}
	}
	a.errorsByType[errorType]++
}

// MarkEnd freezes the accumulator's end timestamp. Snapshots taken
// before MarkEnd measure elapsed time up to the moment of the call.
func (a *Accumulator) MarkEnd() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.end = time.Now()
}

// Reset discards all recorded data and restarts the clock. Callers
// must sequence Reset after all writers have joined; it is never safe
// to reset while actors are still recording.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.hist.Reset()
	a.successes = 0
	a.failures = 0
	a.minLatency = 0
	a.maxLatency = 0
	a.sumLatency = 0
	a.errorsByType = make(map[string]int64)
	a.start = time.Now()
	a.end = time.Time{}
}

// Snapshot computes and returns current aggregated statistics. It may
// be called while actors are still writing; the view is consistent
// but possibly momentarily stale.
func (a *Accumulator) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := a.successes + a.failures
	stats := Stats{
		Total:      total,
		Successes:  a.successes,
		Failures:   a.failures,
		MinLatency: a.minLatency,
		MaxLatency: a.maxLatency,
		Start:      a.start,
		End:        a.end,
	}

	if a.successes > 0 {
		stats.MeanLatency = time.Duration(int64(a.sumLatency) / a.successes)
	}
	if a.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(a.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(a.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(a.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	end := a.end
	if end.IsZero() {
		end = time.Now()
	}
	stats.Elapsed = end.Sub(a.start)

	if total > 0 {
		stats.ErrorRate = float64(a.failures) / float64(total) * 100
	}
	if stats.Elapsed > 0 && total > 0 {
		stats.Throughput = float64(total) / stats.Elapsed.Seconds()
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)
	stats.ElapsedMs = float64(stats.Elapsed) / float64(time.Millisecond)

	if len(a.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(a.errorsByType))
		for k, v := range a.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/kherrera/stampede/internal/metrics"
	"github.com/kherrera/stampede/internal/profile"
	"github.com/kherrera/stampede/internal/threshold"
)

// PrintLoadReport outputs a human-readable load-test summary.
func PrintLoadReport(w io.Writer, res profile.LoadResult) {
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", res.RunID)
	fmt.Fprintf(w, "Actors:            %d\n", res.Actors)
	writeStats(w, "", res.Stats)
}

// PrintStressReport outputs the escalation table and breaking point.
func PrintStressReport(w io.Writer, res profile.StressResult) {
	fmt.Fprintln(w, "\n--- Stress Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", res.RunID)
	fmt.Fprintf(w, "Steps Executed:    %d\n", len(res.Steps))
	fmt.Fprintf(w, "Total Duration:    %s\n", res.Elapsed)

	fmt.Fprintln(w, "\nEscalation:")
	for _, step := range res.Steps {
		fmt.Fprintf(
			w,
			"  %4d actors: total=%d, mean=%s, p99=%s, errors=%.1f%%\n",
			step.Concurrency,
			step.Total,
			step.MeanLatency,
			step.P99Latency,
			step.ErrorRate,
		)
	}

	if res.Broke {
		fmt.Fprintf(w, "\nBreaking Point:    %d actors\n", res.BreakingPoint)
	} else {
		fmt.Fprintf(w, "\nBreaking Point:    not reached (escalation ended at %d actors)\n", res.BreakingPoint)
	}
}

// PrintSpikeReport outputs the three labeled phase samples.
func PrintSpikeReport(w io.Writer, res profile.SpikeResult) {
	fmt.Fprintln(w, "\n--- Spike Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", res.RunID)

	for _, phase := range []profile.PhaseSample{res.Base, res.Spike, res.Recovery} {
		fmt.Fprintf(w, "\n%s (%d actors):\n", phase.Name, phase.Actors)
		writeStats(w, "  ", phase.Stats)
	}

	if res.Base.MeanLatency > 0 {
		ratio := float64(res.Recovery.MeanLatency) / float64(res.Base.MeanLatency)
		fmt.Fprintf(w, "\nRecovery/Base Latency Ratio: %.2f\n", ratio)
	}
}

// PrintEnduranceReport outputs the soak summary and monitor timeline.
func PrintEnduranceReport(w io.Writer, res profile.EnduranceResult) {
	fmt.Fprintln(w, "\n--- Endurance Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", res.RunID)
	fmt.Fprintf(w, "Total Calls:       %d\n", res.Total)
	fmt.Fprintf(w, "Avg Latency:       %s\n", res.AvgLatency)
	fmt.Fprintf(w, "Peak Avg Latency:  %s\n", res.PeakLatency)
	fmt.Fprintf(w, "Avg Error Rate:    %.2f%%\n", res.AvgErrorRate)

	if len(res.Snapshots) > 0 {
		fmt.Fprintln(w, "\nMonitoring Timeline:")
		for _, snap := range res.Snapshots {
			fmt.Fprintf(
				w,
				"  %s: mean=%s, errors=%.1f%%, actors=%d, total=%d\n",
				snap.Timestamp.Format("15:04:05"),
				snap.MeanLatency,
				snap.ErrorRate,
				snap.ActiveActors,
				snap.Total,
			)
		}
	}
}

// PrintThresholdResults outputs one line per evaluated assertion.
func PrintThresholdResults(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\nThresholds:")
	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
}

// PrintJSONReport outputs any profile result as indented JSON.
func PrintJSONReport(w io.Writer, result any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeStats(w io.Writer, indent string, stats metrics.Stats) {
	fmt.Fprintf(w, "%sTotal Calls:       %d\n", indent, stats.Total)
	fmt.Fprintf(w, "%sSuccessful:        %d\n", indent, stats.Successes)
	fmt.Fprintf(w, "%sFailed:            %d\n", indent, stats.Failures)
	fmt.Fprintf(w, "%sError Rate:        %.2f%%\n", indent, stats.ErrorRate)
	fmt.Fprintf(w, "%sDuration:          %s\n", indent, stats.Elapsed)
	fmt.Fprintf(w, "%sThroughput:        %.2f calls/s\n", indent, stats.Throughput)
	fmt.Fprintf(w, "%sLatency:           min=%s mean=%s max=%s\n", indent, stats.MinLatency, stats.MeanLatency, stats.MaxLatency)
	fmt.Fprintf(w, "%sPercentiles:       p50=%s p90=%s p99=%s\n", indent, stats.P50Latency, stats.P90Latency, stats.P99Latency)

	if len(stats.Errors) > 0 {
		fmt.Fprintf(w, "%sError Breakdown:\n", indent)
		types := make([]string, 0, len(stats.Errors))
		for name := range stats.Errors {
			types = append(types, name)
		}
		sort.Slice(types, func(i, j int) bool {
			if stats.Errors[types[i]] == stats.Errors[types[j]] {
				return types[i] < types[j]
			}
			return stats.Errors[types[i]] > stats.Errors[types[j]]
		})
		for _, name := range types {
			fmt.Fprintf(w, "%s  %s: %d\n", indent, name, stats.Errors[name])
		}
	}
}

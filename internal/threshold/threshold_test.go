package threshold_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kherrera/stampede/internal/metrics"
	"github.com/kherrera/stampede/internal/threshold"
)

func sampleStats() metrics.Stats {
	acc := metrics.NewAccumulator()
	for i := 1; i <= 99; i++ {
		acc.RecordSuccess(time.Duration(i) * time.Millisecond)
	}
	acc.RecordFailure(nil)
	acc.MarkEnd()
	return acc.Snapshot()
}

func TestParseValidThresholds(t *testing.T) {
	cases := []struct {
		raw       string
		metric    string
		aggregate string
		operator  string
		value     float64
	}{
		{"latency:p99 < 500", "latency", "p99", "<", 500},
		{"latency:avg<=200", "latency", "avg", "<=", 200},
		{"errors:rate < 0.01", "errors", "rate", "<", 0.01},
		{"errors:count == 0", "errors", "count", "==", 0},
		{"calls:rate > 100", "calls", "rate", ">", 100},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			parsed, err := threshold.Parse(tc.raw)
			if err != nil {
				t.Fatal(err)
			}
			if parsed.Metric != tc.metric || parsed.Aggregate != tc.aggregate ||
				parsed.Operator != tc.operator || parsed.Value != tc.value {
				t.Errorf("parsed %+v, want %+v", parsed, tc)
			}
		})
	}
}

func TestParseInvalidThresholds(t *testing.T) {
	cases := []string{
		"",
		"latency",
		"latency:p99",
		"latency:p99 <",
		"memory:avg < 10",
		"latency:p42 < 10",
		"latency:p99 ~ 10",
	}
	for _, raw := range cases {
		if _, err := threshold.Parse(raw); err == nil {
			t.Errorf("expected parse error for %q", raw)
		}
	}
}

func TestParseMultipleCollectsErrors(t *testing.T) {
	_, err := threshold.ParseMultiple([]string{
		"latency:p99 < 500",
		"bogus",
	})
	if err == nil {
		t.Fatal("expected aggregated parse error")
	}
	if !strings.Contains(err.Error(), "threshold[1]") {
		t.Errorf("error should index the failing entry: %v", err)
	}
}

func TestEvaluateAgainstStats(t *testing.T) {
	stats := sampleStats()
	parsed, err := threshold.ParseMultiple([]string{
		"latency:max < 500",
		"errors:rate < 0.05",
		"errors:count <= 1",
		"latency:min >= 1",
	})
	if err != nil {
		t.Fatal(err)
	}

	results := threshold.NewEvaluator(parsed).Evaluate(stats)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if !threshold.AllPassed(results) {
		for _, r := range results {
			t.Logf("%s", r.Message)
		}
		t.Fatal("all thresholds should pass against the sample stats")
	}
}

func TestEvaluateFailingThreshold(t *testing.T) {
	stats := sampleStats()
	parsed, _ := threshold.ParseMultiple([]string{"errors:count == 0"})

	results := threshold.NewEvaluator(parsed).Evaluate(stats)
	if threshold.AllPassed(results) {
		t.Fatal("one recorded failure must fail the zero-errors threshold")
	}
	if !strings.Contains(results[0].Message, "✗") {
		t.Errorf("failing result should be marked: %q", results[0].Message)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if res := threshold.NewEvaluator(nil).Evaluate(sampleStats()); res != nil {
		t.Errorf("no thresholds should produce no results, got %d", len(res))
	}
}

package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/kherrera/stampede/internal/metrics"
)

func TestFormatErrorRows(t *testing.T) {
	rows := formatErrorRows(nil)
	if len(rows) != 1 || !strings.Contains(rows[0], "No failures") {
		t.Fatalf("expected no-failures row, got %v", rows)
	}

	errs := map[string]int{
		"*url.Error":      5,
		"*net.OpError":    12,
		"context.timeout": 5,
	}
	rows = formatErrorRows(errs)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Sorted by count descending, then name.
	if !strings.Contains(rows[0], "*net.OpError") {
		t.Errorf("expected *net.OpError first, got %q", rows[0])
	}
	if !strings.Contains(rows[1], "*url.Error") {
		t.Errorf("expected *url.Error second (name tiebreak), got %q", rows[1])
	}
}

func TestFormatErrorRowsCapsAtTen(t *testing.T) {
	errs := make(map[string]int)
	for i := 0; i < 15; i++ {
		errs[strings.Repeat("e", i+1)] = i + 1
	}
	rows := formatErrorRows(errs)
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
}

func TestPhaseTransitionsSwapAccumulator(t *testing.T) {
	d := &Dashboard{latencyHistory: []float64{1, 2, 3}}

	acc := metrics.NewAccumulator()
	d.PhaseStarted("stress-10", acc, nil)
	if d.acc != acc {
		t.Fatal("expected accumulator to be attached")
	}
	if d.phase != "stress-10" {
		t.Fatalf("expected phase stress-10, got %q", d.phase)
	}
	if len(d.latencyHistory) != 0 {
		t.Fatal("expected latency history reset on phase start")
	}

	// Ending a different phase leaves the current one attached.
	d.PhaseEnded("stress-5", metrics.Stats{})
	if d.acc == nil {
		t.Fatal("accumulator detached by stale phase end")
	}

	d.PhaseEnded("stress-10", metrics.Stats{})
	if d.acc != nil {
		t.Fatal("expected accumulator detached")
	}
}

func TestFormatRunParams(t *testing.T) {
	d := &Dashboard{info: RunInfo{
		Profile:  "stress",
		Protocol: "grpc",
		Method:   "POST",
		Rate:     50,
		Timeout:  10 * time.Second,
	}}

	params := d.formatRunParams()
	for _, want := range []string{"Profile: stress", "Protocol: grpc", "Method: POST", "Rate: 50/s", "Timeout: 10s"} {
		if !strings.Contains(params, want) {
			t.Errorf("expected %q in %q", want, params)
		}
	}
}

func TestFormatRunParamsDefaultsHidden(t *testing.T) {
	d := &Dashboard{info: RunInfo{Profile: "load", Protocol: "http", Method: "GET"}}

	params := d.formatRunParams()
	if strings.Contains(params, "Protocol") || strings.Contains(params, "Method") {
		t.Errorf("default protocol/method should be hidden, got %q", params)
	}
	if !strings.Contains(params, "Rate: unlimited") {
		t.Errorf("expected unlimited rate, got %q", params)
	}
}

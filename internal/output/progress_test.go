package output_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kherrera/stampede/internal/metrics"
	"github.com/kherrera/stampede/internal/output"
)

// syncBuffer guards a bytes.Buffer against the reporter goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressReporterFollowsPhase(t *testing.T) {
	buf := &syncBuffer{}
	rep := output.NewProgressReporter(10*time.Millisecond, buf)

	acc := metrics.NewAccumulator()
	acc.RecordSuccess(5 * time.Millisecond)
	acc.RecordSuccess(7 * time.Millisecond)

	rep.PhaseStarted("load", acc, nil)
	rep.Start()
	time.Sleep(35 * time.Millisecond)
	rep.PhaseEnded("load", acc.Snapshot())
	rep.Stop()

	out := buf.String()
	if !strings.Contains(out, "[load]") {
		t.Errorf("missing live progress line:\n%q", out)
	}
	if !strings.Contains(out, "load done") {
		t.Errorf("missing phase closing line:\n%q", out)
	}
}

func TestProgressReporterIdleWithoutPhase(t *testing.T) {
	buf := &syncBuffer{}
	rep := output.NewProgressReporter(5*time.Millisecond, buf)
	rep.Start()
	time.Sleep(20 * time.Millisecond)
	rep.Stop()

	if buf.String() != "" {
		t.Errorf("reporter should stay silent with no active phase: %q", buf.String())
	}
}

func TestProgressReporterStopIsIdempotent(t *testing.T) {
	rep := output.NewProgressReporter(5*time.Millisecond, nil)
	rep.Start()
	rep.Stop()
	rep.Stop() // must not panic or deadlock
}

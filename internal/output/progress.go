package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// ProgressReporter displays real-time progress updates. It implements
// the profile controllers' observer contract, following the active
// phase's accumulator as phases come and go.
type ProgressReporter struct {
	mu     sync.Mutex
	acc    *metrics.Accumulator
	sched  *actor.Scheduler
	phase  string
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once

	finished chan struct{}
	writer   io.Writer
	active   int32
}

// NewProgressReporter creates a progress reporter that updates at the
// given interval.
func NewProgressReporter(interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
	}
}

// PhaseStarted points the reporter at the phase's live accumulator.
func (p *ProgressReporter) PhaseStarted(name string, acc *metrics.Accumulator, sched *actor.Scheduler) {
	p.mu.Lock()
	p.phase, p.acc, p.sched = name, acc, sched
	p.mu.Unlock()
}

// PhaseEnded prints the phase's closing line and detaches from it.
func (p *ProgressReporter) PhaseEnded(name string, stats metrics.Stats) {
	p.mu.Lock()
	p.acc, p.sched = nil, nil
	p.mu.Unlock()
	fmt.Fprintf(p.writer, "\r%s done: calls=%d errors=%.1f%% mean=%s\n",
		name, stats.Total, stats.ErrorRate, stats.MeanLatency)
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		p.once.Do(func() { close(p.done) })
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			p.mu.Lock()
			phase, acc, sched := p.phase, p.acc, p.sched
			p.mu.Unlock()
			if acc == nil {
				continue
			}
			stats := acc.Snapshot()
			line := fmt.Sprintf("\r[%s] calls=%d successes=%d failures=%d throughput=%.1f/s",
				phase, stats.Total, stats.Successes, stats.Failures, stats.Throughput)
			if sched != nil {
				line += fmt.Sprintf(" actors=%d", sched.Active())
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}

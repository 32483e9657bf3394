package profile

import (
	"context"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// DefaultEndurancePacing keeps long-running actors from saturating
// the system under test when no pacing is configured.
const DefaultEndurancePacing = time.Second

// EnduranceOptions configure a long-duration soak run.
type EnduranceOptions struct {
	Actors             int           // concurrent virtual actors (required)
	Duration           time.Duration // total run time, typically hours (required)
	MonitoringInterval time.Duration // spacing of monitoring snapshots (required)
	Pacing             time.Duration // think time between iterations (0 = DefaultEndurancePacing)
	RampUp             time.Duration // stagger window for actor launches (optional)
}

func (o EnduranceOptions) Validate() error {
	var issues []string
	if o.Actors < 1 {
		issues = append(issues, "actors must be >= 1")
	}
	if o.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if o.MonitoringInterval <= 0 {
		issues = append(issues, "monitoring-interval must be > 0")
	}
	if o.Pacing < 0 {
		issues = append(issues, "pacing must be >= 0")
	}
	if o.RampUp < 0 {
		issues = append(issues, "ramp-up must be >= 0")
	}
	return validationError(issues)
}

func (o EnduranceOptions) pacing() time.Duration {
	if o.Pacing > 0 {
		return o.Pacing
	}
	return DefaultEndurancePacing
}

// MonitorSnapshot is one timestamped observation of the shared
// accumulator during an endurance run.
type MonitorSnapshot struct {
	Timestamp     time.Time     `json:"timestamp"`
	MeanLatency   time.Duration `json:"-"`
	MeanLatencyMs float64       `json:"mean_latency_ms"`
	ErrorRate     float64       `json:"error_rate_percent"`
	ActiveActors  int           `json:"active_actors"`
	Total         int64         `json:"total"`
}

// EnduranceResult summarizes a soak run: the ordered monitoring
// snapshots plus overall and peak figures reduced from them.
type EnduranceResult struct {
	RunID         string            `json:"run_id"`
	Snapshots     []MonitorSnapshot `json:"snapshots"`
	AvgLatency    time.Duration     `json:"-"`
	PeakLatency   time.Duration     `json:"-"`
	AvgLatencyMs  float64           `json:"avg_latency_ms"`
	PeakLatencyMs float64           `json:"peak_latency_ms"`
	AvgErrorRate  float64           `json:"avg_error_rate_percent"`
	metrics.Stats
}

// Endurance drives a fixed concurrency for a long duration while a
// periodic monitor samples the shared accumulator.
type Endurance struct {
	opt EnduranceOptions
	obs Observer
}

func NewEndurance(opt EnduranceOptions) *Endurance {
	return &Endurance{opt: opt}
}

func (e *Endurance) SetObserver(obs Observer) { e.obs = obs }

func (e *Endurance) Run(ctx context.Context, op actor.Operation) (EnduranceResult, error) {
	if err := e.opt.Validate(); err != nil {
		return EnduranceResult{}, err
	}

	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{
		Actors: e.opt.Actors,
		RampUp: e.opt.RampUp,
		Pacing: e.opt.pacing(),
	})

	phaseStarted(e.obs, string(TypeEndurance), acc, sched)

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, op, acc, time.Now().Add(e.opt.Duration))
	}()

	// The monitor stops once every actor has exited, so no snapshot
	// is ever taken after the accumulator's final state.
	var snapshots []MonitorSnapshot
	ticker := time.NewTicker(e.opt.MonitoringInterval)
	var runErr error

monitoring:
	for {
		select {
		case runErr = <-done:
			break monitoring
		case <-ticker.C:
			s := acc.Snapshot()
			snapshots = append(snapshots, MonitorSnapshot{
				Timestamp:     time.Now(),
				MeanLatency:   s.MeanLatency,
				MeanLatencyMs: s.MeanLatencyMs,
				ErrorRate:     s.ErrorRate,
				ActiveActors:  sched.Active(),
				Total:         s.Total,
			})
		}
	}
	ticker.Stop()

	acc.MarkEnd()
	stats := acc.Snapshot()
	phaseEnded(e.obs, string(TypeEndurance), stats)

	if runErr != nil {
		return EnduranceResult{}, runErr
	}
	return reduceEndurance(snapshots, stats), nil
}

// reduceEndurance folds the snapshot sequence into overall averages
// and the peak running latency. With no snapshots (duration shorter
// than the monitoring interval) the final stats stand in.
func reduceEndurance(snapshots []MonitorSnapshot, stats metrics.Stats) EnduranceResult {
	res := EnduranceResult{
		RunID:     newRunID(),
		Snapshots: snapshots,
		Stats:     stats,
	}

	if len(snapshots) == 0 {
		res.AvgLatency = stats.MeanLatency
		res.PeakLatency = stats.MeanLatency
		res.AvgErrorRate = stats.ErrorRate
	} else {
		var sumLatency time.Duration
		var sumErrRate float64
		for _, snap := range snapshots {
			sumLatency += snap.MeanLatency
			sumErrRate += snap.ErrorRate
			if snap.MeanLatency > res.PeakLatency {
				res.PeakLatency = snap.MeanLatency
			}
		}
		res.AvgLatency = sumLatency / time.Duration(len(snapshots))
		res.AvgErrorRate = sumErrRate / float64(len(snapshots))
	}

	res.AvgLatencyMs = float64(res.AvgLatency) / float64(time.Millisecond)
	res.PeakLatencyMs = float64(res.PeakLatency) / float64(time.Millisecond)
	return res
}

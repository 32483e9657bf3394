package profile

import (
	"context"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// SpikeOptions configure a base/spike/recovery run.
type SpikeOptions struct {
	BaseActors       int           // concurrency during base and recovery (required)
	SpikeActors      int           // concurrency during the spike (required)
	BaseDuration     time.Duration // length of the base phase (required)
	SpikeDuration    time.Duration // length of the spike phase (required)
	RecoveryDuration time.Duration // length of the recovery phase (required)
	Pacing           time.Duration // think time between iterations (optional)
}

func (o SpikeOptions) Validate() error {
	var issues []string
	if o.BaseActors < 1 {
		issues = append(issues, "base-actors must be >= 1")
	}
	if o.SpikeActors < 1 {
		issues = append(issues, "spike-actors must be >= 1")
	}
	if o.SpikeActors <= o.BaseActors {
		issues = append(issues, "spike-actors must exceed base-actors")
	}
	if o.BaseDuration <= 0 {
		issues = append(issues, "base-duration must be > 0")
	}
	if o.SpikeDuration <= 0 {
		issues = append(issues, "spike-duration must be > 0")
	}
	if o.RecoveryDuration <= 0 {
		issues = append(issues, "recovery-duration must be > 0")
	}
	if o.Pacing < 0 {
		issues = append(issues, "pacing must be >= 0")
	}
	return validationError(issues)
}

// PhaseSample is one labeled phase's isolated metrics.
type PhaseSample struct {
	Name   string `json:"name"`
	Actors int    `json:"actors"`
	metrics.Stats
}

// SpikeResult carries the three labeled phase samples. Comparing
// Recovery latency against Base latency measures how well the system
// recovers from the spike.
type SpikeResult struct {
	RunID    string      `json:"run_id"`
	Base     PhaseSample `json:"base"`
	Spike    PhaseSample `json:"spike"`
	Recovery PhaseSample `json:"recovery"`
}

// Spike runs exactly three sequential phases: base load, a sudden
// spike, then recovery at base concurrency. Phases never overlap;
// each owns its accumulator.
type Spike struct {
	opt SpikeOptions
	obs Observer
}

func NewSpike(opt SpikeOptions) *Spike {
	return &Spike{opt: opt}
}

func (s *Spike) SetObserver(obs Observer) { s.obs = obs }

func (s *Spike) Run(ctx context.Context, op actor.Operation) (SpikeResult, error) {
	if err := s.opt.Validate(); err != nil {
		return SpikeResult{}, err
	}

	phases := []struct {
		name     string
		actors   int
		duration time.Duration
	}{
		{"base", s.opt.BaseActors, s.opt.BaseDuration},
		{"spike", s.opt.SpikeActors, s.opt.SpikeDuration},
		{"recovery", s.opt.BaseActors, s.opt.RecoveryDuration},
	}

	res := SpikeResult{RunID: newRunID()}
	samples := make([]PhaseSample, 0, len(phases))

	for _, p := range phases {
		acc := metrics.NewAccumulator()
		sched := actor.NewScheduler(actor.Options{
			Actors: p.actors,
			Pacing: s.opt.Pacing,
		})

		phaseStarted(s.obs, p.name, acc, sched)
		err := sched.Run(ctx, op, acc, time.Now().Add(p.duration))
		acc.MarkEnd()
		stats := acc.Snapshot()
		phaseEnded(s.obs, p.name, stats)

		if err != nil {
			return SpikeResult{}, err
		}
		samples = append(samples, PhaseSample{Name: p.name, Actors: p.actors, Stats: stats})
	}

	res.Base, res.Spike, res.Recovery = samples[0], samples[1], samples[2]
	return res, nil
}

package profile

import (
	"context"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// LoadOptions configure a steady-load run.
type LoadOptions struct {
	Duration      time.Duration // total run time (required)
	Actors        int           // concurrent virtual actors (required)
	RampUp        time.Duration // stagger window for actor launches (optional)
	Pacing        time.Duration // think time between iterations (optional)
	RatePerSecond int           // cap on total call starts per second (optional)
}

func (o LoadOptions) Validate() error {
	var issues []string
	if o.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if o.Actors < 1 {
		issues = append(issues, "actors must be >= 1")
	}
	if o.RampUp < 0 {
		issues = append(issues, "ramp-up must be >= 0")
	}
	if o.RampUp >= o.Duration && o.Duration > 0 && o.RampUp > 0 {
		issues = append(issues, "ramp-up must be shorter than duration")
	}
	if o.Pacing < 0 {
		issues = append(issues, "pacing must be >= 0")
	}
	if o.RatePerSecond < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	return validationError(issues)
}

// LoadResult summarizes a steady-load run.
type LoadResult struct {
	RunID  string `json:"run_id"`
	Actors int    `json:"actors"`
	metrics.Stats
}

// Load drives a fixed number of actors for a fixed duration.
type Load struct {
	opt LoadOptions
	obs Observer
}

func NewLoad(opt LoadOptions) *Load {
	return &Load{opt: opt}
}

func (l *Load) SetObserver(obs Observer) { l.obs = obs }

// Run executes the load profile and reduces the accumulated metrics.
// A completed run always yields a well-formed result, even when every
// call failed; only invalid options or an interrupted run error out.
func (l *Load) Run(ctx context.Context, op actor.Operation) (LoadResult, error) {
	if err := l.opt.Validate(); err != nil {
		return LoadResult{}, err
	}

	acc := metrics.NewAccumulator()
	sched := actor.NewScheduler(actor.Options{
		Actors:        l.opt.Actors,
		RampUp:        l.opt.RampUp,
		Pacing:        l.opt.Pacing,
		RatePerSecond: l.opt.RatePerSecond,
	})

	phaseStarted(l.obs, string(TypeLoad), acc, sched)
	err := sched.Run(ctx, op, acc, time.Now().Add(l.opt.Duration))
	acc.MarkEnd()
	stats := acc.Snapshot()
	phaseEnded(l.obs, string(TypeLoad), stats)

	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{
		RunID:  newRunID(),
		Actors: l.opt.Actors,
		Stats:  stats,
	}, nil
}

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// DefaultBreakThreshold is the error-rate percentage above which a
// stress step is classified as broken when the caller does not set
// BreakThreshold explicitly.
const DefaultBreakThreshold = 25.0

// StressOptions configure a progressive stress escalation.
//
// ErrorThreshold and BreakThreshold are deliberately independent:
// ErrorThreshold bounds how far the escalation runs (a step reaching
// it stops the search), while BreakThreshold classifies which step
// counts as the breaking point. A step can be classified as broken
// yet the escalation continue, when BreakThreshold < ErrorThreshold.
type StressOptions struct {
	MaxActors      int           // highest concurrency to attempt (required)
	StepSize       int           // concurrency increment per step (required)
	StepDuration   time.Duration // how long each step runs (required)
	MaxDuration    time.Duration // overall cap across all steps (required)
	ErrorThreshold float64       // error-rate %% that stops escalation (required)
	BreakThreshold float64       // error-rate %% classifying a step as broken (0 = DefaultBreakThreshold)
	Pacing         time.Duration // think time between iterations (optional)
}

func (o StressOptions) Validate() error {
	var issues []string
	if o.MaxActors < 1 {
		issues = append(issues, "max-actors must be >= 1")
	}
	if o.StepSize < 1 {
		issues = append(issues, "step-size must be >= 1")
	}
	if o.StepSize > o.MaxActors && o.MaxActors >= 1 {
		issues = append(issues, "step-size must not exceed max-actors")
	}
	if o.StepDuration <= 0 {
		issues = append(issues, "step-duration must be > 0")
	}
	if o.MaxDuration <= 0 {
		issues = append(issues, "max-duration must be > 0")
	}
	if o.ErrorThreshold <= 0 || o.ErrorThreshold > 100 {
		issues = append(issues, "error-threshold must be in (0, 100]")
	}
	if o.BreakThreshold < 0 || o.BreakThreshold > 100 {
		issues = append(issues, "break-threshold must be in [0, 100]")
	}
	if o.Pacing < 0 {
		issues = append(issues, "pacing must be >= 0")
	}
	return validationError(issues)
}

func (o StressOptions) breakThreshold() float64 {
	if o.BreakThreshold > 0 {
		return o.BreakThreshold
	}
	return DefaultBreakThreshold
}

// StressStep is one escalation sample at a fixed concurrency.
type StressStep struct {
	Concurrency int `json:"concurrency"`
	metrics.Stats
}

// StressResult summarizes a stress run: the ordered escalation
// samples and the detected breaking point.
type StressResult struct {
	RunID         string        `json:"run_id"`
	Steps         []StressStep  `json:"steps"`
	BreakingPoint int           `json:"breaking_point"`
	Broke         bool          `json:"broke"`
	Elapsed       time.Duration `json:"-"`
	ElapsedMs     float64       `json:"elapsed_ms"`
}

// Stress escalates concurrency step by step until the system under
// test starts failing or a configured bound is reached.
type Stress struct {
	opt StressOptions
	obs Observer
}

func NewStress(opt StressOptions) *Stress {
	return &Stress{opt: opt}
}

func (s *Stress) SetObserver(obs Observer) { s.obs = obs }

// Run executes stress steps at strictly increasing concurrency. Each
// step gets a fresh accumulator, so samples are never mixed across
// steps. Escalation stops at MaxActors, at MaxDuration, or at the
// first step whose error rate reaches ErrorThreshold.
func (s *Stress) Run(ctx context.Context, op actor.Operation) (StressResult, error) {
	if err := s.opt.Validate(); err != nil {
		return StressResult{}, err
	}

	res := StressResult{RunID: newRunID()}
	breakAt := s.opt.breakThreshold()
	start := time.Now()

	for concurrency := s.opt.StepSize; concurrency <= s.opt.MaxActors; concurrency += s.opt.StepSize {
		if time.Since(start) >= s.opt.MaxDuration {
			break
		}

		acc := metrics.NewAccumulator()
		sched := actor.NewScheduler(actor.Options{
			Actors: concurrency,
			Pacing: s.opt.Pacing,
		})

		name := fmt.Sprintf("stress-%d", concurrency)
		phaseStarted(s.obs, name, acc, sched)
		err := sched.Run(ctx, op, acc, time.Now().Add(s.opt.StepDuration))
		acc.MarkEnd()
		stats := acc.Snapshot()
		phaseEnded(s.obs, name, stats)

		if err != nil {
			return StressResult{}, err
		}

		res.Steps = append(res.Steps, StressStep{Concurrency: concurrency, Stats: stats})

		if !res.Broke && stats.ErrorRate >= breakAt {
			res.Broke = true
			res.BreakingPoint = concurrency
		}
		if stats.ErrorRate >= s.opt.ErrorThreshold {
			break
		}
	}

	if !res.Broke && len(res.Steps) > 0 {
		res.BreakingPoint = res.Steps[len(res.Steps)-1].Concurrency
	}
	res.Elapsed = time.Since(start)
	res.ElapsedMs = float64(res.Elapsed) / float64(time.Millisecond)
	return res, nil
}

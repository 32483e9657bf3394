package profile

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// Type identifies one of the four load profiles.
type Type string

const (
	TypeLoad      Type = "load"
	TypeStress    Type = "stress"
	TypeSpike     Type = "spike"
	TypeEndurance Type = "endurance"
)

// ValidationError reports invalid profile options. Controllers fail
// fast on misuse instead of producing a misleading zero-filled result.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func validationError(issues []string) error {
	if len(issues) == 0 {
		return nil
	}
	return ValidationError{issues: issues}
}

// Observer receives phase lifecycle notifications from a controller.
// PhaseStarted runs before actors launch; the accumulator and
// scheduler stay valid for live polling until PhaseEnded fires.
type Observer interface {
	PhaseStarted(name string, acc *metrics.Accumulator, sched *actor.Scheduler)
	PhaseEnded(name string, stats metrics.Stats)
}

func phaseStarted(obs Observer, name string, acc *metrics.Accumulator, sched *actor.Scheduler) {
	if obs != nil {
		obs.PhaseStarted(name, acc, sched)
	}
}

func phaseEnded(obs Observer, name string, stats metrics.Stats) {
	if obs != nil {
		obs.PhaseEnded(name, stats)
	}
}

// newRunID mints a unique, lexically sortable identifier for a run.
func newRunID() string {
	return ulid.Make().String()
}

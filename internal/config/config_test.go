package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kherrera/stampede/internal/config"
)

func validLoadConfig() config.Config {
	return config.Config{
		Profile:   "load",
		TargetURL: "http://localhost:8080/health",
		Protocol:  config.ProtocolHTTP,
		Load: config.LoadConfig{
			Duration: 30 * time.Second,
			Actors:   10,
		},
	}
}

func TestValidateAcceptsMinimalLoadConfig(t *testing.T) {
	cfg := validLoadConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingTarget(t *testing.T) {
	cfg := validLoadConfig()
	cfg.TargetURL = "  "
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !containsIssue(verr, "target is required") {
		t.Errorf("missing target issue, got %v", verr.Issues())
	}
}

func TestValidateRejectsUnknownProfile(t *testing.T) {
	cfg := validLoadConfig()
	cfg.Profile = "soak"
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !containsIssue(verr, "unknown profile") {
		t.Errorf("missing profile issue, got %v", verr.Issues())
	}
}

func TestValidateSurfacesProfileOptionIssues(t *testing.T) {
	cfg := validLoadConfig()
	cfg.Profile = "stress"
	// Stress section left empty: every required option is reported.
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, want := range []string{"max-actors", "step-duration", "error-threshold"} {
		if !containsIssue(verr, want) {
			t.Errorf("expected issue mentioning %q, got %v", want, verr.Issues())
		}
	}
}

func TestValidateRejectsThresholdsOutsideLoad(t *testing.T) {
	cfg := validLoadConfig()
	cfg.Profile = "spike"
	cfg.Spike = config.SpikeConfig{
		BaseActors:       2,
		SpikeActors:      10,
		BaseDuration:     time.Minute,
		SpikeDuration:    time.Minute,
		RecoveryDuration: time.Minute,
	}
	cfg.Thresholds = []string{"latency:p99 < 500"}
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !containsIssue(verr, "thresholds") {
		t.Errorf("missing thresholds issue, got %v", verr.Issues())
	}
}

func TestValidateRejectsExclusiveOutputs(t *testing.T) {
	cfg := validLoadConfig()
	cfg.Dashboard = true
	cfg.JSONOutput = true
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !containsIssue(verr, "mutually exclusive") {
		t.Errorf("missing exclusivity issue, got %v", verr.Issues())
	}
}

func TestValidateGRPCRequiresProto(t *testing.T) {
	cfg := validLoadConfig()
	cfg.Protocol = config.ProtocolGRPC
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !containsIssue(verr, "proto_file") {
		t.Errorf("missing grpc issue, got %v", verr.Issues())
	}
}

func TestOptionsMapping(t *testing.T) {
	cfg := config.Config{
		Stress: config.StressConfig{
			MaxActors:      100,
			StepSize:       10,
			StepDuration:   30 * time.Second,
			MaxDuration:    10 * time.Minute,
			ErrorThreshold: 50,
			BreakThreshold: 20,
		},
	}
	opt := cfg.StressOptions()
	if opt.MaxActors != 100 || opt.StepSize != 10 || opt.BreakThreshold != 20 {
		t.Errorf("stress options not mapped: %+v", opt)
	}
}

func containsIssue(verr config.ValidationError, substr string) bool {
	for _, issue := range verr.Issues() {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kherrera/stampede/internal/config"
)

func writeConfigFile(t *testing.T, doc map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "stampede.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadFromFlags(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--target", "http://localhost:9000/api",
		"--profile", "stress",
		"--max-actors", "40",
		"--step-size", "10",
		"--step-duration", "15s",
		"--max-duration", "5m",
		"--error-threshold", "50",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != "stress" {
		t.Errorf("expected stress profile, got %q", cfg.Profile)
	}
	if cfg.Stress.MaxActors != 40 || cfg.Stress.StepSize != 10 {
		t.Errorf("stress flags not applied: %+v", cfg.Stress)
	}
	if cfg.Stress.StepDuration != 15*time.Second {
		t.Errorf("expected 15s step duration, got %s", cfg.Stress.StepDuration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("flag-built config should validate: %v", err)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"target":   "http://localhost:9000/api",
		"profile":  "endurance",
		"protocol": "http",
		"endurance": map[string]any{
			"actors":              20,
			"duration":            "2h",
			"monitoring_interval": "1m",
			"pacing":              "500ms",
		},
	})

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != "endurance" {
		t.Errorf("expected endurance profile, got %q", cfg.Profile)
	}
	if cfg.Endurance.Actors != 20 {
		t.Errorf("expected 20 actors, got %d", cfg.Endurance.Actors)
	}
	if cfg.Endurance.Duration != 2*time.Hour {
		t.Errorf("expected 2h duration, got %s", cfg.Endurance.Duration)
	}
	if cfg.Endurance.Pacing != 500*time.Millisecond {
		t.Errorf("expected 500ms pacing, got %s", cfg.Endurance.Pacing)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"target":  "http://file-target/",
		"profile": "load",
		"load": map[string]any{
			"actors":   5,
			"duration": "10s",
		},
	})

	cfg, err := config.NewLoader().Load([]string{
		"--config", path,
		"--actors", "25",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Load.Actors != 25 {
		t.Errorf("flag should override file: got %d actors", cfg.Load.Actors)
	}
	if cfg.Load.Duration != 10*time.Second {
		t.Errorf("file value should survive for unset flags: got %s", cfg.Load.Duration)
	}
	if cfg.TargetURL != "http://file-target/" {
		t.Errorf("unexpected target %q", cfg.TargetURL)
	}
}

func TestDefaultsApplied(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{"--target", "http://localhost/"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != "load" {
		t.Errorf("expected default profile load, got %q", cfg.Profile)
	}
	if cfg.Method != "GET" {
		t.Errorf("expected default method GET, got %q", cfg.Method)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.Endurance.MonitoringInterval != time.Minute {
		t.Errorf("expected default monitoring interval 1m, got %s", cfg.Endurance.MonitoringInterval)
	}
}

func TestHeaderFlagsParsed(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--target", "http://localhost/",
		"--header", "authorization=Bearer abc",
		"--header", "x-test=1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("header not canonicalized/applied: %v", cfg.Headers)
	}
	if cfg.Headers["X-Test"] != "1" {
		t.Errorf("second header missing: %v", cfg.Headers)
	}
}

func TestMalformedHeaderRejected(t *testing.T) {
	_, err := config.NewLoader().Load([]string{
		"--target", "http://localhost/",
		"--header", "notakeyvalue",
	})
	if err == nil {
		t.Fatal("expected error for malformed header")
	}
}

func TestNoArgsShowsHelp(t *testing.T) {
	_, err := config.NewLoader().Load(nil)
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

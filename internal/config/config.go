// Package config provides configuration loading and validation for stampede.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kherrera/stampede/internal/profile"
)

type Protocol string

const (
	ProtocolHTTP      Protocol = "http"
	ProtocolWebSocket Protocol = "websocket"
	ProtocolGRPC      Protocol = "grpc"
)

// Config is the full configuration surface of a stampede run.
type Config struct {
	Profile   string            `mapstructure:"profile"`
	TargetURL string            `mapstructure:"target"`
	Method    string            `mapstructure:"method"`
	Headers   map[string]string `mapstructure:"headers"`
	Body      string            `mapstructure:"body"`
	BodyFile  string            `mapstructure:"body_file"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	Protocol  Protocol          `mapstructure:"protocol"`

	Load      LoadConfig      `mapstructure:"load"`
	Stress    StressConfig    `mapstructure:"stress"`
	Spike     SpikeConfig     `mapstructure:"spike"`
	Endurance EnduranceConfig `mapstructure:"endurance"`

	Check     CheckConfig     `mapstructure:"check"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Tracing   TracingConfig   `mapstructure:"tracing"`

	JSONOutput bool     `mapstructure:"json_output"`
	Dashboard  bool     `mapstructure:"dashboard"`
	LogErrors  bool     `mapstructure:"log_errors"`
	HTMLOutput string   `mapstructure:"html_output"`
	ArchiveDir string   `mapstructure:"archive_dir"`
	Thresholds []string `mapstructure:"thresholds"`

	ConfigFile string `mapstructure:"-"`
}

// LoadConfig configures the steady-load profile.
type LoadConfig struct {
	Duration time.Duration `mapstructure:"duration"`
	Actors   int           `mapstructure:"actors"`
	RampUp   time.Duration `mapstructure:"ramp_up"`
	Pacing   time.Duration `mapstructure:"pacing"`
	Rate     int           `mapstructure:"rate"`
}

// StressConfig configures the escalating-stress profile.
type StressConfig struct {
	MaxActors      int           `mapstructure:"max_actors"`
	StepSize       int           `mapstructure:"step_size"`
	StepDuration   time.Duration `mapstructure:"step_duration"`
	MaxDuration    time.Duration `mapstructure:"max_duration"`
	ErrorThreshold float64       `mapstructure:"error_threshold"`
	BreakThreshold float64       `mapstructure:"break_threshold"`
	Pacing         time.Duration `mapstructure:"pacing"`
}

// SpikeConfig configures the sudden-spike profile.
type SpikeConfig struct {
	BaseActors       int           `mapstructure:"base_actors"`
	SpikeActors      int           `mapstructure:"spike_actors"`
	BaseDuration     time.Duration `mapstructure:"base_duration"`
	SpikeDuration    time.Duration `mapstructure:"spike_duration"`
	RecoveryDuration time.Duration `mapstructure:"recovery_duration"`
	Pacing           time.Duration `mapstructure:"pacing"`
}

// EnduranceConfig configures the long-duration soak profile.
type EnduranceConfig struct {
	Actors             int           `mapstructure:"actors"`
	Duration           time.Duration `mapstructure:"duration"`
	MonitoringInterval time.Duration `mapstructure:"monitoring_interval"`
	Pacing             time.Duration `mapstructure:"pacing"`
	RampUp             time.Duration `mapstructure:"ramp_up"`
}

// CheckConfig asserts on HTTP response bodies: the value at the gjson
// path must equal the expected string for the call to count as a
// success.
type CheckConfig struct {
	JSONPath string `mapstructure:"json_path"`
	Equals   string `mapstructure:"equals"`
}

// WebSocketConfig tunes the websocket operation.
type WebSocketConfig struct {
	Messages         []string      `mapstructure:"messages"`
	MessageInterval  time.Duration `mapstructure:"message_interval"`
	ReceiveTimeout   time.Duration `mapstructure:"receive_timeout"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// GRPCConfig tunes the gRPC operation.
type GRPCConfig struct {
	ProtoFile string            `mapstructure:"proto_file"`
	Service   string            `mapstructure:"service"`
	Method    string            `mapstructure:"method"`
	Message   string            `mapstructure:"message"`
	Metadata  map[string]string `mapstructure:"metadata"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	TLS       bool              `mapstructure:"tls"`
	Insecure  bool              `mapstructure:"insecure"`
}

// TracingConfig configures the OpenTelemetry exporter. Tracing is
// enabled by setting an endpoint.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ValidationError aggregates configuration issues.
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

// LoadOptions maps the load section onto profile options.
func (c Config) LoadOptions() profile.LoadOptions {
	return profile.LoadOptions{
		Duration:      c.Load.Duration,
		Actors:        c.Load.Actors,
		RampUp:        c.Load.RampUp,
		Pacing:        c.Load.Pacing,
		RatePerSecond: c.Load.Rate,
	}
}

// StressOptions maps the stress section onto profile options.
func (c Config) StressOptions() profile.StressOptions {
	return profile.StressOptions{
		MaxActors:      c.Stress.MaxActors,
		StepSize:       c.Stress.StepSize,
		StepDuration:   c.Stress.StepDuration,
		MaxDuration:    c.Stress.MaxDuration,
		ErrorThreshold: c.Stress.ErrorThreshold,
		BreakThreshold: c.Stress.BreakThreshold,
		Pacing:         c.Stress.Pacing,
	}
}

// SpikeOptions maps the spike section onto profile options.
func (c Config) SpikeOptions() profile.SpikeOptions {
	return profile.SpikeOptions{
		BaseActors:       c.Spike.BaseActors,
		SpikeActors:      c.Spike.SpikeActors,
		BaseDuration:     c.Spike.BaseDuration,
		SpikeDuration:    c.Spike.SpikeDuration,
		RecoveryDuration: c.Spike.RecoveryDuration,
		Pacing:           c.Spike.Pacing,
	}
}

// EnduranceOptions maps the endurance section onto profile options.
func (c Config) EnduranceOptions() profile.EnduranceOptions {
	return profile.EnduranceOptions{
		Actors:             c.Endurance.Actors,
		Duration:           c.Endurance.Duration,
		MonitoringInterval: c.Endurance.MonitoringInterval,
		Pacing:             c.Endurance.Pacing,
		RampUp:             c.Endurance.RampUp,
	}
}

// Validate checks cross-cutting settings and the options of the
// selected profile, so misconfiguration fails before any actor runs.
func (c Config) Validate() error {
	var issues []string

	switch profile.Type(c.Profile) {
	case profile.TypeLoad:
		issues = appendOptionIssues(issues, c.LoadOptions().Validate())
	case profile.TypeStress:
		issues = appendOptionIssues(issues, c.StressOptions().Validate())
	case profile.TypeSpike:
		issues = appendOptionIssues(issues, c.SpikeOptions().Validate())
	case profile.TypeEndurance:
		issues = appendOptionIssues(issues, c.EnduranceOptions().Validate())
	default:
		issues = append(issues, fmt.Sprintf("unknown profile %q (use load, stress, spike or endurance)", c.Profile))
	}

	switch c.Protocol {
	case ProtocolHTTP, ProtocolWebSocket, ProtocolGRPC:
	default:
		issues = append(issues, fmt.Sprintf("unknown protocol %q (use http, websocket or grpc)", c.Protocol))
	}

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if strings.TrimSpace(c.Body) != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and body-file are mutually exclusive")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if len(c.Thresholds) > 0 && profile.Type(c.Profile) != profile.TypeLoad {
		issues = append(issues, "thresholds are only evaluated for the load profile")
	}
	if c.Protocol == ProtocolGRPC {
		if strings.TrimSpace(c.GRPC.ProtoFile) == "" {
			issues = append(issues, "grpc.proto_file is required for the grpc protocol")
		}
		if strings.TrimSpace(c.GRPC.Service) == "" || strings.TrimSpace(c.GRPC.Method) == "" {
			issues = append(issues, "grpc.service and grpc.method are required for the grpc protocol")
		}
	}
	if c.Tracing.Enabled() {
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			issues = append(issues, "tracing.sample_rate must be between 0.0 and 1.0")
		}
		switch c.Tracing.Protocol {
		case "", "grpc", "http":
		default:
			issues = append(issues, fmt.Sprintf("unknown tracing protocol %q (use grpc or http)", c.Tracing.Protocol))
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func appendOptionIssues(issues []string, err error) []string {
	if err == nil {
		return issues
	}
	var verr profile.ValidationError
	if ok := asValidation(err, &verr); ok {
		return append(issues, verr.Issues()...)
	}
	return append(issues, err.Error())
}

func asValidation(err error, target *profile.ValidationError) bool {
	v, ok := err.(profile.ValidationError)
	if ok {
		*target = v
	}
	return ok
}

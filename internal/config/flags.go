package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags on a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stampede",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target and request shape
	flags.String("target", "", "Target URL to load test")
	flags.String("method", "GET", "HTTP method to use")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.String("body", "", "Inline request body payload")
	flags.String("body-file", "", "Path to file containing the request body")
	flags.Duration("timeout", 30*time.Second, "Per-call timeout")
	flags.String("protocol", string(ProtocolHTTP), "Operation protocol: http, websocket or grpc")

	// Profile selection
	flags.StringP("profile", "p", "load", "Load profile to run: load, stress, spike or endurance")

	// Load profile
	flags.DurationP("duration", "d", 0, "Load: how long to run (e.g. 30s, 2m)")
	flags.IntP("actors", "a", 1, "Load: number of concurrent virtual actors")
	flags.Duration("ramp-up", 0, "Load: window over which actor launches are staggered")
	flags.Duration("pacing", 0, "Load: think time between an actor's iterations")
	flags.IntP("rate", "r", 0, "Load: cap on total call starts per second (0 = unlimited)")

	// Stress profile
	flags.Int("max-actors", 0, "Stress: highest concurrency to attempt")
	flags.Int("step-size", 0, "Stress: concurrency increment per step")
	flags.Duration("step-duration", 0, "Stress: how long each step runs")
	flags.Duration("max-duration", 0, "Stress: overall cap across all steps")
	flags.Float64("error-threshold", 0, "Stress: error-rate % that stops the escalation")
	flags.Float64("break-threshold", 0, "Stress: error-rate % classifying a step as broken (default 25)")

	// Spike profile
	flags.Int("base-actors", 0, "Spike: concurrency during base and recovery")
	flags.Int("spike-actors", 0, "Spike: concurrency during the spike")
	flags.Duration("base-duration", 0, "Spike: length of the base phase")
	flags.Duration("spike-duration", 0, "Spike: length of the spike phase")
	flags.Duration("recovery-duration", 0, "Spike: length of the recovery phase")

	// Endurance profile
	flags.Int("endurance-actors", 0, "Endurance: number of concurrent virtual actors")
	flags.Duration("endurance-duration", 0, "Endurance: total run time (e.g. 2h)")
	flags.Duration("monitoring-interval", time.Minute, "Endurance: spacing of monitoring snapshots")
	flags.Duration("endurance-pacing", 0, "Endurance: think time between iterations (default 1s)")

	// Output
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed call to stderr")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.String("archive-dir", "", "Directory to archive JSON results into")
	flags.StringSlice("threshold", nil, "Performance assertion, e.g. 'latency:p99 < 500' (load profile)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP endpoint to export spans to (empty = disabled)")
	flags.String("tracing-protocol", "grpc", "OTLP transport: grpc or http")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of runs to trace (0.0-1.0)")
}

// flagToKey maps flag names onto viper config keys.
var flagToKey = map[string]string{
	"target":    "target",
	"method":    "method",
	"body":      "body",
	"body-file": "body_file",
	"timeout":   "timeout",
	"protocol":  "protocol",
	"profile":   "profile",

	"duration": "load.duration",
	"actors":   "load.actors",
	"ramp-up":  "load.ramp_up",
	"pacing":   "load.pacing",
	"rate":     "load.rate",

	"max-actors":      "stress.max_actors",
	"step-size":       "stress.step_size",
	"step-duration":   "stress.step_duration",
	"max-duration":    "stress.max_duration",
	"error-threshold": "stress.error_threshold",
	"break-threshold": "stress.break_threshold",

	"base-actors":       "spike.base_actors",
	"spike-actors":      "spike.spike_actors",
	"base-duration":     "spike.base_duration",
	"spike-duration":    "spike.spike_duration",
	"recovery-duration": "spike.recovery_duration",

	"endurance-actors":    "endurance.actors",
	"endurance-duration":  "endurance.duration",
	"monitoring-interval": "endurance.monitoring_interval",
	"endurance-pacing":    "endurance.pacing",

	"json-output": "json_output",
	"dashboard":   "dashboard",
	"log-errors":  "log_errors",
	"html-output": "html_output",
	"archive-dir": "archive_dir",
	"threshold":   "thresholds",

	"tracing-endpoint":    "tracing.endpoint",
	"tracing-protocol":    "tracing.protocol",
	"tracing-sample-rate": "tracing.sample_rate",
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "stampede - profile-driven load testing engine")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  stampede --target URL --profile load --actors 10 --duration 30s")
	fmt.Fprintln(out, "  stampede --target URL --profile stress --max-actors 100 --step-size 10 \\")
	fmt.Fprintln(out, "           --step-duration 30s --max-duration 10m --error-threshold 50")
	fmt.Fprintln(out, "  stampede --target URL --profile spike --base-actors 10 --spike-actors 100 \\")
	fmt.Fprintln(out, "           --base-duration 1m --spike-duration 30s --recovery-duration 1m")
	fmt.Fprintln(out, "  stampede --target URL --profile endurance --endurance-actors 20 \\")
	fmt.Fprintln(out, "           --endurance-duration 2h --monitoring-interval 1m")
	fmt.Fprintln(out, "  stampede --config stampede.yaml")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprint(out, cmd.Flags().FlagUsages())
}

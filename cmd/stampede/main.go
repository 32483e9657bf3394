package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/config"
	"github.com/kherrera/stampede/internal/dashboard"
	"github.com/kherrera/stampede/internal/output"
	"github.com/kherrera/stampede/internal/profile"
	"github.com/kherrera/stampede/internal/threshold"
	"github.com/kherrera/stampede/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	op, closeOp, err := buildOperation(cfg)
	if err != nil {
		return err
	}
	defer closeOp()

	if cfg.Tracing.Enabled() {
		op = withTracing(op, provider.Tracer(), string(cfg.Protocol), cfg.TargetURL)
	}
	if cfg.LogErrors {
		op = actor.WithLogging(op, &actor.WriterFailureLogger{W: os.Stderr})
	}

	var obs profile.Observer
	if cfg.Dashboard {
		dash, err := dashboard.New(dashboard.RunInfo{
			Target:     cfg.TargetURL,
			Profile:    cfg.Profile,
			Protocol:   string(cfg.Protocol),
			Method:     cfg.Method,
			Rate:       cfg.Load.Rate,
			Timeout:    cfg.Timeout,
			ConfigFile: cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
		obs = dash
	} else if !cfg.JSONOutput {
		progress := output.NewProgressReporter(progressInterval, out)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(out)
		}()
		obs = progress
	}

	runProfile := func(ctx context.Context) error {
		switch profile.Type(cfg.Profile) {
		case profile.TypeLoad:
			return runLoad(ctx, cfg, op, obs, out)
		case profile.TypeStress:
			return runStress(ctx, cfg, op, obs, out)
		case profile.TypeSpike:
			return runSpike(ctx, cfg, op, obs, out)
		case profile.TypeEndurance:
			return runEndurance(ctx, cfg, op, obs, out)
		default:
			return fmt.Errorf("unknown profile %q", cfg.Profile)
		}
	}

	if cfg.Tracing.Enabled() {
		spanCtx, span := tracing.StartPhaseSpan(ctx, provider.Tracer(), cfg.Profile, profileActors(cfg))
		err := runProfile(spanCtx)
		tracing.EndSpan(span, err)
		return err
	}
	return runProfile(ctx)
}

// profileActors reports the peak concurrency the selected profile will
// reach, for span annotation.
func profileActors(cfg *config.Config) int {
	switch profile.Type(cfg.Profile) {
	case profile.TypeStress:
		return cfg.Stress.MaxActors
	case profile.TypeSpike:
		return cfg.Spike.SpikeActors
	case profile.TypeEndurance:
		return cfg.Endurance.Actors
	default:
		return cfg.Load.Actors
	}
}

func runLoad(ctx context.Context, cfg *config.Config, op actor.Operation, obs profile.Observer, out io.Writer) error {
	load := profile.NewLoad(cfg.LoadOptions())
	load.SetObserver(obs)

	res, err := load.Run(ctx, op)
	if err != nil {
		return err
	}

	var thresholdResults []threshold.Result
	if len(cfg.Thresholds) > 0 {
		parsed, err := threshold.ParseMultiple(cfg.Thresholds)
		if err != nil {
			return err
		}
		thresholdResults = threshold.NewEvaluator(parsed).Evaluate(res.Stats)
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(out, res); err != nil {
			return err
		}
	} else {
		output.PrintLoadReport(out, res)
		if len(thresholdResults) > 0 {
			output.PrintThresholdResults(out, thresholdResults)
		}
	}

	if cfg.HTMLOutput != "" {
		file, err := os.Create(cfg.HTMLOutput)
		if err != nil {
			return fmt.Errorf("creating html report: %w", err)
		}
		genErr := output.GenerateHTMLReport(file, cfg.TargetURL, res, thresholdResults)
		closeErr := file.Close()
		if genErr != nil {
			return genErr
		}
		if closeErr != nil {
			return closeErr
		}
	}

	if err := archiveResult(cfg, res.RunID, res); err != nil {
		return err
	}

	if !threshold.AllPassed(thresholdResults) {
		return errors.New("one or more thresholds failed")
	}
	return nil
}

func runStress(ctx context.Context, cfg *config.Config, op actor.Operation, obs profile.Observer, out io.Writer) error {
	stress := profile.NewStress(cfg.StressOptions())
	stress.SetObserver(obs)

	res, err := stress.Run(ctx, op)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(out, res); err != nil {
			return err
		}
	} else {
		output.PrintStressReport(out, res)
	}

	return archiveResult(cfg, res.RunID, res)
}

func runSpike(ctx context.Context, cfg *config.Config, op actor.Operation, obs profile.Observer, out io.Writer) error {
	spike := profile.NewSpike(cfg.SpikeOptions())
	spike.SetObserver(obs)

	res, err := spike.Run(ctx, op)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(out, res); err != nil {
			return err
		}
	} else {
		output.PrintSpikeReport(out, res)
	}

	return archiveResult(cfg, res.RunID, res)
}

func runEndurance(ctx context.Context, cfg *config.Config, op actor.Operation, obs profile.Observer, out io.Writer) error {
	endurance := profile.NewEndurance(cfg.EnduranceOptions())
	endurance.SetObserver(obs)

	res, err := endurance.Run(ctx, op)
	if err != nil {
		return err
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(out, res); err != nil {
			return err
		}
	} else {
		output.PrintEnduranceReport(out, res)
	}

	return archiveResult(cfg, res.RunID, res)
}

func archiveResult(cfg *config.Config, runID string, result any) error {
	if cfg.ArchiveDir == "" {
		return nil
	}
	archive := output.NewArchive(cfg.ArchiveDir)
	_, err := archive.Save(output.IndexEntry{
		RunID:    runID,
		Profile:  cfg.Profile,
		Target:   cfg.TargetURL,
		Protocol: string(cfg.Protocol),
	}, result)
	return err
}

// trident-support detects which performance-monitoring architecture this host
// supports and names the event-definition file a collector should load.
//
// The exit status is the detected architecture's index, so wrapper scripts can
// branch on it without parsing output.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/trident-support/internal/attributes"
	"github.com/mrzor/trident-support/internal/config"
	"github.com/mrzor/trident-support/internal/detect"
	"github.com/mrzor/trident-support/internal/hostpmu"
	"github.com/mrzor/trident-support/internal/kernelcaps"
	"github.com/mrzor/trident-support/internal/otel"
	"github.com/mrzor/trident-support/internal/output"
	"github.com/mrzor/trident-support/internal/pmu"
)

const progName = "trident-support"

// Exit statuses outside the architecture index range. 255 and 254 are what
// exit(-1) and exit(-2) look like to a shell.
const (
	exitNotFound = 255
	exitError    = 254

	maxArchIndex = exitError - 1
)

// Version information injected by GoReleaser at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// host is what the detection run needs from an initialized provider.
type host interface {
	pmu.Provider
	Architectures() []pmu.Info
}

type initFunc func(env *config.EnvConfig) (host, error)

func initHost(env *config.EnvConfig) (host, error) {
	h, err := hostpmu.Initialize(hostpmu.Options{SysfsRoot: env.SysfsRoot})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func main() {
	log.SetPrefix(progName + ": ")
	log.SetFlags(0)

	code, err := run(os.Args, os.Stdout, initHost)
	if err != nil {
		log.Print(err)
	}
	os.Exit(code)
}

// setupOTEL parses the OTEL environment and returns a tracer and cleanup function.
func setupOTEL() (trace.Tracer, func(), bool, error) {
	otelCfg, err := config.ParseOTELConfig()
	if err != nil {
		return nil, nil, false, err
	}

	tracer, shutdown, err := otel.Setup(otelCfg, fmt.Sprintf("%s (%s)", version, commit))
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down OTEL provider: %v", err)
		}
	}
	return tracer, cleanup, otelCfg.Enabled(), nil
}

// logDiagnostics prints host facts useful when detection gives a surprising answer.
func logDiagnostics(h host, caps kernelcaps.Report) {
	if hp, ok := h.(*hostpmu.Host); ok {
		log.Printf("cpu: %s", hp.CPU())
		log.Printf("perf_events PMUs: %v", hp.Devices())
	}
	for _, line := range caps.Lines() {
		log.Print(line)
	}
	for _, p := range pmu.Enumerate(h) {
		log.Printf("present: %s (index %d, %s)", p.Name, p.Index, p.Description)
	}
}

func run(args []string, stdout io.Writer, initProvider initFunc) (int, error) {
	cfg, err := config.ParseArgs(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			_, _ = fmt.Fprint(stdout, config.Usage(progName))
			return 0, nil
		}
		return exitError, err
	}

	if cfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s %s (commit: %s, built: %s)\n", progName, version, commit, date)
		return 0, nil
	}

	envCfg, err := config.ParseEnvConfig()
	if err != nil {
		return exitError, err
	}

	evaluator, err := attributes.NewEvaluator(cfg.CustomAttributes)
	if err != nil {
		return exitError, err
	}

	tracer, cleanupOTEL, tracing, err := setupOTEL()
	if err != nil {
		return exitError, err
	}
	defer cleanupOTEL()

	_, span := tracer.Start(context.Background(), "detect",
		trace.WithAttributes(otel.DirectoryAttribute(cfg.EventsDir)))
	defer span.End()

	h, err := initProvider(envCfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider initialization failed")
		return exitError, fmt.Errorf("cannot initialize PMU provider: %w", err)
	}

	if cfg.Verbose || tracing {
		caps := kernelcaps.Probe(envCfg.ProcRoot)
		span.SetAttributes(caps.Attributes()...)
		if cfg.Verbose {
			logDiagnostics(h, caps)
		}
	}

	if cfg.List {
		if err := output.WriteArchList(stdout, h.Architectures()); err != nil {
			return exitError, err
		}
		return 0, nil
	}

	if cfg.Format == config.FormatText {
		if err := output.WriteScanning(stdout, progName, cfg.EventsDir); err != nil {
			return exitError, err
		}
	}

	res, scanErr := detect.Detect(h, os.DirFS(cfg.EventsDir))
	if scanErr != nil {
		log.Printf("Warning: %v", scanErr)
	}
	for _, a := range res.Anomalies {
		log.Printf("Warning: %s", output.AnomalyMessage(a))
	}

	if res.Detected && (res.Arch.Index < 0 || res.Arch.Index > maxArchIndex) {
		err := fmt.Errorf("architecture %s has index %d, outside the exit status range 0..%d",
			res.Arch.Name, res.Arch.Index, maxArchIndex)
		span.RecordError(err)
		span.SetStatus(codes.Error, "architecture index out of range")
		return exitError, err
	}

	otel.RecordResult(span, res)
	span.SetAttributes(evaluator.Evaluate(attributes.Env(res, os.Environ()))...)

	switch cfg.Format {
	case config.FormatYAML:
		err = output.WriteYAML(stdout, output.NewReport(cfg.EventsDir, res))
	default:
		err = output.WriteText(stdout, progName, res)
	}
	if err != nil {
		return exitError, err
	}

	if err := res.Err(); err != nil {
		return exitNotFound, fmt.Errorf("%w in the current system", err)
	}
	return res.Arch.Index, nil
}

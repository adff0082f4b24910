// Package otel provides OpenTelemetry tracer setup for a detection run.
package otel

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mrzor/trident-support/internal/config"
	"github.com/mrzor/trident-support/internal/detect"
)

const tracerName = "trident-support"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Setup returns a tracer for the run. Without a configured endpoint it returns
// a no-op tracer and a no-op shutdown.
func Setup(cfg *config.OTELConfig, versionInfo string) (trace.Tracer, ShutdownFunc, error) {
	if !cfg.Enabled() {
		return noop.NewTracerProvider().Tracer(tracerName), func(context.Context) error { return nil }, nil
	}

	tp, err := InitProvider(cfg, versionInfo)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func(ctx context.Context) error {
		return ShutdownProvider(tp, ctx)
	}
	return tp.Tracer(tracerName), shutdown, nil
}

// InitProvider builds a tracer provider exporting over OTLP/HTTP.
//
// Note: The HTTP client honors HTTP_PROXY, HTTPS_PROXY, and NO_PROXY through
// Go's standard net/http transport.
func InitProvider(cfg *config.OTELConfig, versionInfo string) (*sdktrace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(ctx, exporterOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	resourceAttrs := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(versionInfo),
		),
		resource.WithHost(),
	}
	if customAttrs := cfg.ParseResourceAttributes(); len(customAttrs) > 0 {
		resourceAttrs = append(resourceAttrs, resource.WithAttributes(customAttrs...))
	}

	res, err := resource.New(ctx, resourceAttrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Synchronous export: the process exits right after one span.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)

	return tp, nil
}

// exporterOptions points the exporter at the configured endpoint. URL-form
// endpoints carry their own scheme and path; a bare host:port is plain HTTP.
func exporterOptions(cfg *config.OTELConfig) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithTimeout(5 * time.Second)}

	if url, ok := cfg.GetEndpointURL(); ok {
		log.Printf("OTEL: exporting spans for %s to %s", cfg.ServiceName, url)
		return append(opts, otlptracehttp.WithEndpointURL(url))
	}

	endpoint := cfg.GetEndpoint()
	log.Printf("OTEL: exporting spans for %s to %s", cfg.ServiceName, endpoint)
	return append(opts,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
}

// ShutdownProvider gracefully shuts down the tracer provider, flushing any remaining spans.
func ShutdownProvider(tp *sdktrace.TracerProvider, ctx context.Context) error {
	if tp == nil {
		return nil
	}

	if err := tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}

	return nil
}

// DirectoryAttribute names the scanned event directory.
func DirectoryAttribute(dir string) attribute.KeyValue {
	return attribute.String("trident.events_dir", dir)
}

// ResultAttributes describes a detection result as span attributes.
func ResultAttributes(res *detect.Result) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Bool("trident.detected", res.Detected),
		attribute.Int("trident.candidates", len(res.Candidates)),
		attribute.Int("trident.present", len(res.Present)),
		attribute.Int("trident.anomalies", len(res.Anomalies)),
	}
	if res.Detected {
		attrs = append(attrs,
			attribute.String("trident.arch.name", res.Arch.Name),
			attribute.Int("trident.arch.index", res.Arch.Index),
			attribute.String("trident.arch.description", res.Arch.Description),
			attribute.String("trident.event_file", res.EventFile()),
		)
	}
	return attrs
}

// RecordResult annotates span with the result. Anomalies become span events.
func RecordResult(span trace.Span, res *detect.Result) {
	span.SetAttributes(ResultAttributes(res)...)
	for _, a := range res.Anomalies {
		span.AddEvent("multiple architecture matches", trace.WithAttributes(
			attribute.String("trident.event_file", a.File.FileName()),
			attribute.String("trident.arch.name", a.Arch.Name),
			attribute.Int("trident.arch.index", a.Arch.Index),
		))
	}
	if err := res.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
}

package support

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"google.golang.org/grpc/credentials"
)

const (
	exportTimeout   = 10 * time.Second
	shutdownTimeout = 15 * time.Second

	defaultJaegerEndpoint = "http://localhost:14268/api/traces"
	defaultZipkinEndpoint = "http://localhost:9411/api/v2/spans"
)

func ConsoleExporter() (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func OTLPExporter(ctx context.Context, cfg TelemetryConfig) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithHeaders(cfg.HeaderMap()),
	}

	if cfg.Endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
	}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

func JaegerExporter(cfg TelemetryConfig) (*jaeger.Exporter, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultJaegerEndpoint
	}

	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}

func ZipkinExporter(cfg TelemetryConfig) (*zipkin.Exporter, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultZipkinEndpoint
	}

	return zipkin.New(endpoint)
}

func exporter(ctx context.Context, cfg TelemetryConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "console":
		return ConsoleExporter()
	case "otlp":
		return OTLPExporter(ctx, cfg)
	case "jaeger":
		return JaegerExporter(cfg)
	case "zipkin":
		return ZipkinExporter(cfg)
	default:
		return nil, errors.Errorf("unknown telemetry exporter %q", cfg.Exporter)
	}
}

// ConfigureTelemetry installs a global tracer provider for the configured
// exporter and returns its shutdown. With no exporter, tracing stays on the
// no-op provider.
func ConfigureTelemetry(ctx context.Context, cfg TelemetryConfig, service string, version string) (func(), error) {
	if cfg.Exporter == "" || cfg.Exporter == "none" {
		return func() {}, nil
	}

	exp, err := exporter(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trace exporter")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithExportTimeout(exportTimeout)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(service),
			attribute.String("version", version),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = provider.Shutdown(ctx)
	}, nil
}

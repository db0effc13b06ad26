// Package telemetry wires OpenTelemetry tracing for the risk service.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

const tracerName = "github.com/banking/withdrawal-risk-service"

// Init installs the global tracer provider.
// With no OTLP endpoint configured the global no-op provider is kept.
func Init(ctx context.Context, cfg config.TelemetryConfig, log *logger.Logger) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		log.Info("tracing disabled (no otlp endpoint configured)")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing enabled", logger.StringField("endpoint", cfg.OTLPEndpoint))
	return tp.Shutdown, nil
}

// StartSpan starts a span on the service tracer
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// UserID tags a span with the user being assessed
func UserID(id string) attribute.KeyValue {
	return attribute.String("user.id", id)
}

// ChainID tags a span with the withdrawal's chain
func ChainID(id int64) attribute.KeyValue {
	return attribute.Int64("chain.id", id)
}

// Assessor tags a span with the assessor that produced it
func Assessor(name string) attribute.KeyValue {
	return attribute.String("risk.assessor", name)
}

// RiskScore tags a span with the final clamped score
func RiskScore(score int) attribute.KeyValue {
	return attribute.Int("risk.score", score)
}

// RiskLevel tags a span with the risk tier name
func RiskLevel(level string) attribute.KeyValue {
	return attribute.String("risk.level", level)
}

package observability

import (
	"context"

	appconfig "github.com/Kolanot/transits-movements-trader-at-departure/pkg/core/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// newTracerProvider creates a new OpenTelemetry TracerProvider. With no
// collector endpoint configured it samples locally and exports nothing.
func newTracerProvider(ctx context.Context, log *zap.Logger, cfg Config, appCfg appconfig.AppConfig) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(appCfg.ServiceName),
			semconv.ServiceVersion(appCfg.ServiceVersion),
			attribute.String("deployment.environment", appCfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	if cfg.OtelCollectorEndpoint == "" {
		log.Info("tracing: no collector endpoint, running in local mode")
		return sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
			sdktrace.WithResource(res),
		), nil
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelCollectorEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

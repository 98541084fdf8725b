// Package telemetry — трассы веб-фронта: входящие запросы (otelhttp в main) и вызовы API.
// traceparent уходит в API, так что запрос браузера и запрос к API видны одной трассой.
package telemetry

import (
	"context"

	"github.com/fueltrackr/internal/config"
	"github.com/fueltrackr/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown сбрасывает буфер экспортёра; вызывается после остановки HTTP-сервера.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// sampler — доля корневых трасс; 0 (не задано) и 1 — все. Решение родителя соблюдается.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Setup ставит propagator всегда, а TracerProvider — только при заданном Endpoint.
// Ошибка экспортёра не мешает запуску: фронт работает без трасс.
func Setup(ctx context.Context, cfg config.TracingConfig, service string) Shutdown {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	if cfg.Endpoint == "" {
		logger.Debugf("otel: tracing disabled")
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		logger.Errorf("otel: exporter %s: %v", cfg.Endpoint, err)
		return noop
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(service),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithHost(),
	)
	if err != nil {
		logger.Errorf("otel: resource: %v", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	logger.Infof("otel: %s -> %s (env=%s, ratio=%v)", service, cfg.Endpoint, cfg.Environment, cfg.SampleRatio)
	return tp.Shutdown
}

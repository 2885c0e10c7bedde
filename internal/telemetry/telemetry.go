// Package telemetry поднимает OpenTelemetry-провайдеры метрик и трассировок.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"google.golang.org/grpc"
)

type ShutdownFn func(context.Context) error

// Setup инициализирует метрики (Prometheus) и, если задан otlpEndpoint, трассировки.
// Возвращённая функция останавливает все поднятые провайдеры.
func Setup(ctx context.Context, serviceName, otlpEndpoint string) (ShutdownFn, error) {
	res, err := telemetryResource(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("init prometheus exporter: %w", err)
	}
	shutdowns := []ShutdownFn{InitMeterProvider(res, exporter)}

	if otlpEndpoint != "" {
		spanExporter, err := NewOTLPTraceExporter(ctx, otlpEndpoint)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, InitTraceProvider(res, spanExporter))
	}

	return func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}, nil
}

func InitMeterProvider(res *resource.Resource, reader metric.Reader) ShutdownFn {
	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader))
	otel.SetMeterProvider(meterProvider)
	return meterProvider.Shutdown
}

func InitTraceProvider(res *resource.Resource, spanExporter trace.SpanExporter) ShutdownFn {
	bsp := trace.NewBatchSpanProcessor(spanExporter)
	tracerProvider := trace.NewTracerProvider(
		trace.WithSampler(trace.TraceIDRatioBased(1)),
		trace.WithResource(res),
		trace.WithSpanProcessor(bsp),
	)
	otel.SetTracerProvider(tracerProvider)
	return tracerProvider.Shutdown
}

func telemetryResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			// the service name used to display traces in backend
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("init telemetry resource: %w", err)
	}
	return res, nil
}

func NewOTLPTraceExporter(ctx context.Context, otlpEndpoint string) (*otlptrace.Exporter, error) {
	traceClient := otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(otlpEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithBlock()))
	traceExp, err := otlptrace.New(ctx, traceClient)
	if err != nil {
		return nil, fmt.Errorf("init otlp trace exporter: %w", err)
	}
	return traceExp, nil
}

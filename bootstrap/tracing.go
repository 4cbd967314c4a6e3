package bootstrap

import (
	"context"

	"whiteknight/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

// logSpanExporter writes finished spans to the debug log
type logSpanExporter struct {
	logger *zap.SugaredLogger
}

func (e *logSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		e.logger.Debugw("span",
			"name", span.Name(),
			"trace_id", span.SpanContext().TraceID().String(),
			"span_id", span.SpanContext().SpanID().String(),
			"duration_ms", span.EndTime().Sub(span.StartTime()).Milliseconds(),
			"status", span.Status().Code.String())
	}
	return nil
}

func (e *logSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// InitTracing installs a global tracer provider when tracing is enabled.
// It returns nil when tracing is disabled, leaving the no-op provider in place.
func InitTracing(cfg *config.Config, sugar *zap.SugaredLogger) (*sdktrace.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.Tracing.ServiceName),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(&logSpanExporter{logger: sugar}),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	sugar.Infow("Tracing enabled", "service_name", cfg.Tracing.ServiceName)
	return tp, nil
}

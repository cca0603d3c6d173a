package instrument

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wrapgate/postgres-fdw/version"
)

const tracerName = "fdw"

// InitTracing installs an OpenTelemetry TracerProvider exporting over OTLP
// gRPC (endpoint from the standard OTEL_EXPORTER_OTLP_* env vars), with a
// Resource describing this wrapper. Hosts that never call it get the
// default no-op provider, so span creation in the wrapper stays safe.
func InitTracing(serviceName string) error {
	exporter, err := otlptracegrpc.New(context.Background())
	if err != nil {
		return err
	}
	tp := tracesdk.NewTracerProvider(
		// Always be sure to batch in production.
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.VersionString),
		)),
	)
	otel.SetTracerProvider(tp)
	return nil
}

func ShutdownTracing() {
	defer func() {
		// artificially prevent a panic in this fn
		recover()
	}()
	tp, ok := otel.GetTracerProvider().(*tracesdk.TracerProvider)
	if !ok {
		return
	}
	tp.ForceFlush(context.Background())
	tp.Shutdown(context.Background())
}

func FlushTraces() {
	defer func() {
		// artificially prevent a panic in this fn
		recover()
	}()
	if tp, ok := otel.GetTracerProvider().(*tracesdk.TracerProvider); ok {
		tp.ForceFlush(context.Background())
	}
}

func GetTracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}

func StartSpan(baseCtx context.Context, name string) (context.Context, trace.Span) {
	tr := GetTracer()
	return tr.Start(baseCtx, name)
}

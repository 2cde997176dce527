package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "meusensia.com.br/sensia-web/"

// Tracer returns the named tracer from the global provider. Without an
// installed SDK the spans are no-ops.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(namespace + name)
}

// Meter returns the named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.GetMeterProvider().Meter(namespace + name)
}

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNilProviderShutdown(t *testing.T) {
	var p *Provider
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewTracerProvider_Resource(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider(sdktrace.WithSyncer(exporter), Config{ServiceVersion: "v1.0.0"})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "notify")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spans[0].Resource.Attributes()
	assert.Contains(t, attrs, attribute.String("service.name", "notifier"))
	assert.Contains(t, attrs, attribute.String("service.version", "v1.0.0"))
}

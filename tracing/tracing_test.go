package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("smalltalk", "test", exporter))

	ctx, parent := StartSpan(context.Background(), "execution.run", "SERVER")
	_, child := StartSpan(ctx, "branch.run", "INTERNAL")
	child.WithAttributes(map[string]string{"branch": "weather"})
	EndSpan(child, errors.New("boom"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "branch.run", spans[0].Name)
	assert.Equal(t, "execution.run", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestEndSpan_Nil(t *testing.T) {
	assert.NotPanics(t, func() { EndSpan(nil, nil) })
}

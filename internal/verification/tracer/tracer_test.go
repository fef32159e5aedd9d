package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()

	newCtx, span := NewNoop().Start(ctx, SpanVerify, String(AttrCertificateID, "c-1"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(Bool(AttrCacheHit, true))
	span.AddEvent(EventAuditEmitted, String(AttrOutcome, "granted"))
	span.End(errors.New("boom"))
}

func TestOTelTracer(t *testing.T) {
	tr := NewOTel(WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), SpanVerify, String(AttrRequesterID, "o-1"))
	require.NotNil(t, ctx)
	span.SetAttributes(Int64("attempts", 2))
	span.AddEvent(EventCacheStored)
	span.End(nil)
}

func TestNewOTelDefaultsToGlobalProvider(t *testing.T) {
	tr := NewOTel()
	assert.NotNil(t, tr.tracer)
}

func TestToOTelAttributes(t *testing.T) {
	assert.Nil(t, toOTelAttributes(nil))

	got := toOTelAttributes([]Attribute{
		String("s", "v"),
		Bool("b", true),
		Int64("i64", 7),
		{Key: "i", Value: 3},
		{Key: "dropped", Value: struct{}{}},
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "v"),
		attribute.Bool("b", true),
		attribute.Int64("i64", 7),
		attribute.Int64("i", 3),
	}, got)
}

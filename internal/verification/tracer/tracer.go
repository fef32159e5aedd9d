// Package tracer provides a small tracing abstraction for verification.
//
// Verification code depends on the Tracer interface only. OTelTracer adapts
// OpenTelemetry for production and NoopTracer is used in tests.
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanVerify,
	//       tracer.String(tracer.AttrCertificateID, certID.String()),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

const (
	SpanVerify      = "verification.verify"
	SpanLoadCert    = "verification.certificate"
	SpanGrantLookup = "verification.grant"
)

const (
	AttrCertificateID = "certificate_id"
	AttrRequesterID   = "requester_id"
	AttrOutcome       = "outcome"
	AttrStatus        = "certificate.status"
	AttrCacheHit      = "cache.hit"
)

const (
	EventAuditEmitted  = "audit.emitted"
	EventCacheStored   = "cache.stored"
	EventCacheBypassed = "cache.bypassed"
)

// Package tracer is a small tracing abstraction so sync runs can emit spans
// without the engine packages importing OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer: tests and local runs
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
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

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names emitted by the sync engine.
const (
	SpanDirectoryScan = "identity.directory.scan"
	SpanRegistryLoad  = "identity.registry.load"
	SpanReconcileRun  = "identity.reconcile.run"
	SpanMigrateRun    = "identity.migrate.run"
	SpanResendRun     = "identity.resend.run"
	SpanDispatch      = "identity.mail.dispatch"
)

// Attribute keys emitted by the sync engine.
const (
	AttrDryRun    = "dry_run"
	AttrPageSize  = "page_size"
	AttrPages     = "pages"
	AttrAccounts  = "accounts"
	AttrMembers   = "members"
	AttrErrors    = "errors"
	AttrTruncated = "truncated"
	AttrEmailKind = "email.kind"
)

package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopTracerReturnsSameContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "v")
	got, span := NewNoop().Start(ctx, SpanReconcileRun, Bool(AttrDryRun, true))
	assert.Equal(t, ctx, got)
	span.SetAttributes(Int(AttrAccounts, 3))
	span.AddEvent("noop")
	span.End(errors.New("ignored"))
}

func TestOTelTracerWithGlobalProvider(t *testing.T) {
	tr := NewOTel()
	_, span := tr.Start(context.Background(), SpanDirectoryScan, Int(AttrPageSize, 1000))
	span.SetAttributes(Duration("elapsed", 1500*time.Millisecond), String("k", "v"))
	span.End(nil)
}

func TestToOTelAttributesSkipsUnknownTypes(t *testing.T) {
	got := toOTelAttributes([]Attribute{String("a", "b"), {Key: "x", Value: 1.5}, Int("n", 2)})
	assert.Len(t, got, 2)
	assert.Nil(t, toOTelAttributes(nil))
}

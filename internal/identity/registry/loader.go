package registry

import (
	"context"
	"fmt"

	"memberlink/internal/identity/models"
	"memberlink/internal/platform/tracer"
	dErrors "memberlink/pkg/domain-errors"
)

// Loader reads the full registry snapshot for a run.
type Loader struct {
	store  Store
	tracer tracer.Tracer
}

func NewLoader(store Store, t tracer.Tracer) *Loader {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Loader{store: store, tracer: t}
}

// LoadAll is a single read; any failure is fatal to the run.
func (l *Loader) LoadAll(ctx context.Context) (records []models.MemberRecord, err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanRegistryLoad)
	defer func() { span.End(err) }()

	records, err = l.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to load member registry: %v", err))
	}
	span.SetAttributes(tracer.Int(tracer.AttrMembers, len(records)))
	return records, nil
}

package audit

import (
	"context"
)

type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read back events.
type Lister interface {
	ListByEmail(ctx context.Context, email string) ([]Event, error)
	ListByRun(ctx context.Context, runID string) ([]Event, error)
}

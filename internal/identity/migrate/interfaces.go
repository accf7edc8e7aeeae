package migrate

import (
	"context"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/mailer"
	"memberlink/internal/identity/models"
)

// AccountScanner returns every directory account.
type AccountScanner interface {
	ScanAll(ctx context.Context) ([]models.AuthAccount, error)
}

// AccountWriter is the part of the directory a migration writes to.
type AccountWriter interface {
	CreateAccount(ctx context.Context, params directory.CreateAccountParams) (*models.AuthAccount, error)
	UpdateUserMetadata(ctx context.Context, accountID string, meta map[string]any) (*models.AuthAccount, error)
	GenerateLink(ctx context.Context, params directory.GenerateLinkParams) (*directory.ActionLink, error)
}

// MailService hands out a run-scoped sender.
type MailService interface {
	Ready() error
	NewRun(runID string) mailer.Sender
}

// RosterSource supplies the default legacy roster.
type RosterSource interface {
	Load() ([]models.RosterEntry, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

package reconcile

import (
	"context"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/mailer"
	"memberlink/internal/identity/models"
)

// AccountScanner returns every directory account. directory.Scanner implements it.
type AccountScanner interface {
	ScanAll(ctx context.Context) ([]models.AuthAccount, error)
}

// MemberLoader returns the registry snapshot. registry.Loader implements it.
type MemberLoader interface {
	LoadAll(ctx context.Context) ([]models.MemberRecord, error)
}

// MemberWriter is the write side of the registry used by a run.
type MemberWriter interface {
	Create(ctx context.Context, record *models.MemberRecord) error
	LinkAccount(ctx context.Context, memberID, accountID string) error
}

// LinkGenerator creates invite links (and the accounts behind them).
type LinkGenerator interface {
	GenerateLink(ctx context.Context, params directory.GenerateLinkParams) (*directory.ActionLink, error)
}

// MailService hands out a run-scoped sender. mailer.Service implements it.
type MailService interface {
	Ready() error
	NewRun(runID string) mailer.Sender
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

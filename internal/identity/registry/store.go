// Package registry persists member records and loads the registry snapshot
// used by reconciliation runs.
package registry

import (
	"context"

	"memberlink/internal/identity/models"
)

// Store is the member registry. Email uniqueness is case-insensitive and
// enforced by every implementation; a duplicate Create fails with
// sentinel.ErrAlreadyUsed.
type Store interface {
	// ListAll returns every record ordered by creation.
	ListAll(ctx context.Context) ([]models.MemberRecord, error)
	FindByEmail(ctx context.Context, email string) (*models.MemberRecord, error)
	Create(ctx context.Context, record *models.MemberRecord) error
	LinkAccount(ctx context.Context, memberID, accountID string) error
	UpdateStatus(ctx context.Context, memberID string, status models.MemberStatus) error
}

package migrate

import (
	"context"
	"time"

	"memberlink/internal/identity/models"
	dErrors "memberlink/pkg/domain-errors"
)

// Backup is a read-only export of the directory.
type Backup struct {
	Timestamp time.Time
	Accounts  []models.AuthAccount
}

func (b *Backup) Count() int {
	return len(b.Accounts)
}

// Backup exports every directory account. It never writes.
func (s *Service) Backup(ctx context.Context) (_ *Backup, err error) {
	start := s.clock()
	defer func() {
		s.metrics.ObserveRun(ActionBackup, true, runResult(err), s.clock().Sub(start).Seconds())
	}()

	accounts, err := s.accounts.ScanAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "backup scan failed", "error", err)
		return nil, err
	}
	if accounts == nil {
		accounts = []models.AuthAccount{}
	}
	s.logger.InfoContext(ctx, "backup exported", "count", len(accounts))
	return &Backup{Timestamp: s.clock().UTC(), Accounts: accounts}, nil
}

// Status reports whether an account exists for an email and still carries
// the migration markers.
type Status struct {
	Exists     bool
	IsMigrated bool
}

// MigrationStatus looks an email up in the directory.
func (s *Service) MigrationStatus(ctx context.Context, email string) (*Status, error) {
	key := models.NormalizeEmail(email)
	if key == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email required")
	}
	accounts, err := s.accounts.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].NormalizedEmail() == key {
			return &Status{Exists: true, IsMigrated: accounts[i].IsMigrated()}, nil
		}
	}
	return &Status{}, nil
}

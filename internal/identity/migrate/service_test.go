package migrate_test

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/mailer"
	mailmocks "memberlink/internal/identity/mailer/mocks"
	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/migrate/mocks"
	"memberlink/internal/identity/models"
	dErrors "memberlink/pkg/domain-errors"
	"memberlink/pkg/testutil"
)

type MigrateSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	dir     *directory.InMemory
	mail    *mocks.MockMailService
	sender  *mailmocks.MockSender
	events  *audit.InMemoryStore
	service *migrate.Service
}

func TestMigrateSuite(t *testing.T) {
	suite.Run(t, new(MigrateSuite))
}

func (s *MigrateSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.dir = directory.NewInMemory()
	s.mail = mocks.NewMockMailService(s.ctrl)
	s.sender = mailmocks.NewMockSender(s.ctrl)
	s.events = audit.NewInMemoryStore()
	s.service = s.newService()
}

func (s *MigrateSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MigrateSuite) newService(opts ...migrate.Option) *migrate.Service {
	cfg := migrate.DefaultConfig()
	cfg.RedirectURL = "https://members.example.com/auth/callback"
	opts = append([]migrate.Option{
		migrate.WithConfig(cfg),
		migrate.WithAuditPublisher(audit.NewPublisher(s.events)),
	}, opts...)
	svc, err := migrate.New(directory.NewScanner(s.dir), s.dir, s.mail, opts...)
	s.Require().NoError(err)
	return svc
}

func (s *MigrateSuite) seedAlice() {
	alice := testutil.Account("acc-alice", "alice@example.com", true)
	alice.UserMetadata = map[string]any{"full_name": "Alice Smith", "phone": "555-0100"}
	s.dir.Seed(alice)
}

func roster() []models.RosterEntry {
	return []models.RosterEntry{
		{Name: "Alice Smith", Email: "Alice@Example.com"},
		{Name: "Bob Jones", Email: "bob@example.com", Role: models.RoleExecutive},
	}
}

func (s *MigrateSuite) find(email string) *models.AuthAccount {
	for _, a := range s.dir.Snapshot() {
		if a.Email == email {
			return &a
		}
	}
	return nil
}

func (s *MigrateSuite) TestDryRunClassifiesWithoutWriting() {
	s.seedAlice()
	before := s.dir.Snapshot()

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{DryRun: true, SendEmails: true, Members: roster()})
	s.Require().NoError(err)

	s.Equal(2, res.Total)
	s.Equal(1, res.AlreadyPresent)
	s.Equal(1, res.NeedsMigration)
	s.Zero(res.Migrated)
	s.Zero(res.FlaggedForPasswordChange)
	s.Zero(res.EmailsSent)
	s.Empty(res.Errors)
	s.Equal(before, s.dir.Snapshot())
}

func (s *MigrateSuite) TestLiveRunCreatesAndFlags() {
	s.seedAlice()

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{Members: roster(), Actor: "migration-secret"})
	s.Require().NoError(err)

	s.Equal(1, res.Migrated)
	s.Equal(1, res.FlaggedForPasswordChange)
	s.Empty(res.Errors)

	alice := s.find("alice@example.com")
	s.Require().NotNil(alice)
	s.Equal("555-0100", alice.UserMetadata["phone"], "existing metadata is kept")
	s.True(alice.IsMigrated())

	bob := s.find("bob@example.com")
	s.Require().NotNil(bob)
	s.True(bob.IsConfirmed())
	s.True(bob.IsMigrated())
	s.Equal("Bob Jones", bob.UserMetadata[models.MetaFullName])
	s.Equal(models.RoleExecutive, bob.Role())

	actions := map[audit.AuditEvent]int{}
	for _, e := range s.events.All() {
		actions[e.Action]++
	}
	s.Equal(1, actions[audit.EventAccountMigrated])
	s.Equal(1, actions[audit.EventAccountFlagged])
	s.Equal(1, actions[audit.EventSyncRunCompleted])
}

func (s *MigrateSuite) TestDefaultRoleApplied() {
	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{
		Members: []models.RosterEntry{{Name: "Carol", Email: "carol@example.com"}},
	})
	s.Require().NoError(err)
	s.Equal(1, res.Migrated)
	s.Equal(models.RoleOfficial, s.find("carol@example.com").Role())
}

func (s *MigrateSuite) TestSendsResetLinksToNewAccountsOnly() {
	s.seedAlice()
	s.mail.EXPECT().Ready().Return(nil)
	s.mail.EXPECT().NewRun(gomock.Any()).Return(s.sender)
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, inv mailer.Invitation) error {
		s.Equal(mailer.KindPasswordReset, inv.Kind)
		s.Equal("bob@example.com", inv.Email)
		s.Equal("Bob Jones", inv.DisplayName)
		s.Contains(inv.ActionLink, "type=recovery")
		return nil
	})

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{SendEmails: true, Members: roster()})
	s.Require().NoError(err)
	s.Equal(1, res.EmailsSent)
	s.Empty(res.Errors)
}

func (s *MigrateSuite) TestSendFailureKeepsAccount() {
	s.mail.EXPECT().Ready().Return(nil)
	s.mail.EXPECT().NewRun(gomock.Any()).Return(s.sender)
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(&mailer.SendError{Email: "bob@example.com", Err: errors.New("relay returned 503")})

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{SendEmails: true, Members: roster()[1:]})
	s.Require().NoError(err)

	s.Equal(1, res.Migrated)
	s.Zero(res.EmailsSent)
	s.Equal([]string{"Failed to send email to bob@example.com: relay returned 503"}, res.Errors)
	s.NotNil(s.find("bob@example.com"))
}

func (s *MigrateSuite) TestCreateFailureIsIsolated() {
	s.dir = directory.NewInMemory(directory.WithFault(func(op, email string) error {
		if op == "create" && email == "alice@example.com" {
			return errors.New("quota exceeded")
		}
		return nil
	}))
	s.service = s.newService()

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{Members: roster()})
	s.Require().NoError(err)

	s.Equal(2, res.NeedsMigration)
	s.Equal(1, res.Migrated)
	s.Equal([]string{"Failed to create alice@example.com: quota exceeded"}, res.Errors)
}

func (s *MigrateSuite) TestDuplicateRosterEntriesAreSkipped() {
	members := append(roster(), models.RosterEntry{Name: "Bob Again", Email: " BOB@example.com"})

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{Members: members})
	s.Require().NoError(err)

	s.Equal(3, res.Total)
	s.Equal(2, res.Migrated)
	s.Equal([]string{"bob@example.com: duplicate roster entry"}, res.Skipped)
	s.Equal(2, s.dir.Len())
}

func (s *MigrateSuite) TestSecondRunFlagsInsteadOfCreating() {
	_, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{Members: roster()})
	s.Require().NoError(err)

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{Members: roster()})
	s.Require().NoError(err)

	s.Equal(2, res.AlreadyPresent)
	s.Zero(res.Migrated)
	s.Equal(2, s.dir.Len())
}

func (s *MigrateSuite) TestEmptyRosterIsValidationError() {
	_, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(migrate.ErrEmptyRosterMessage, err.Error())
}

func (s *MigrateSuite) TestBlankEmailIsValidationError() {
	_, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{
		Members: []models.RosterEntry{{Name: "Nobody", Email: "  "}},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Zero(s.dir.Len())
}

func (s *MigrateSuite) TestDefaultRosterUsedWhenRequestIsEmpty() {
	s.service = s.newService(migrate.WithRoster(migrate.StaticRoster(roster())))

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{DryRun: true})
	s.Require().NoError(err)
	s.Equal(2, res.Total)
	s.Equal(2, res.NeedsMigration)
}

func (s *MigrateSuite) TestRosterLoadFailureIsInternal() {
	roster := mocks.NewMockRosterSource(s.ctrl)
	roster.EXPECT().Load().Return(nil, errors.New("permission denied"))
	s.service = s.newService(migrate.WithRoster(roster))

	_, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *MigrateSuite) TestRelayRequiredOnlyForLiveEmails() {
	s.mail.EXPECT().Ready().Return(mailer.ErrRelayNotConfigured)

	_, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{SendEmails: true, Members: roster()})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Zero(s.dir.Len())
}

func (s *MigrateSuite) TestDeadlineTruncates() {
	cfg := migrate.DefaultConfig()
	cfg.RunTimeout = 50 * time.Millisecond
	s.service = s.newService(migrate.WithConfig(cfg))
	s.mail.EXPECT().Ready().Return(nil)
	s.mail.EXPECT().NewRun(gomock.Any()).Return(s.sender)
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, inv mailer.Invitation) error {
		<-ctx.Done()
		return &mailer.SendError{Email: inv.Email, Err: ctx.Err()}
	})

	res, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{SendEmails: true, Members: roster()})
	s.Require().NoError(err)
	s.True(res.Truncated)
	s.Equal([]string{"bob@example.com: run deadline exceeded"}, res.Skipped)
	s.Equal(1, res.Migrated)
}

func (s *MigrateSuite) TestBackupExportsEveryAccount() {
	for i := range 5 {
		s.dir.Seed(testutil.Account("", "user"+string(rune('a'+i))+"@example.com", i%2 == 0))
	}
	before := s.dir.Snapshot()

	b, err := s.service.Backup(context.Background())
	s.Require().NoError(err)
	s.Equal(5, b.Count())
	s.False(b.Timestamp.IsZero())
	s.Equal(before, s.dir.Snapshot())
}

func (s *MigrateSuite) TestMigrationStatus() {
	s.seedAlice()
	_, err := s.service.Migrate(context.Background(), migrate.MigrateOptions{Members: roster()[1:]})
	s.Require().NoError(err)

	st, err := s.service.MigrationStatus(context.Background(), "BOB@example.com")
	s.Require().NoError(err)
	s.Equal(migrate.Status{Exists: true, IsMigrated: true}, *st)

	st, err = s.service.MigrationStatus(context.Background(), "alice@example.com")
	s.Require().NoError(err)
	s.Equal(migrate.Status{Exists: true, IsMigrated: false}, *st)

	st, err = s.service.MigrationStatus(context.Background(), "nobody@example.com")
	s.Require().NoError(err)
	s.Equal(migrate.Status{}, *st)

	_, err = s.service.MigrationStatus(context.Background(), " ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *MigrateSuite) TestScanFailureIsFatal() {
	scanner := mocks.NewMockAccountScanner(s.ctrl)
	writer := mocks.NewMockAccountWriter(s.ctrl)
	scanner.EXPECT().ScanAll(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeInternal, "failed to list directory accounts: 503"))

	svc, err := migrate.New(scanner, writer, s.mail)
	s.Require().NoError(err)
	_, err = svc.Migrate(context.Background(), migrate.MigrateOptions{Members: roster()})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

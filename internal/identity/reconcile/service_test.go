package reconcile_test

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/reconcile"
	"memberlink/internal/identity/reconcile/mocks"
	"memberlink/internal/identity/registry"
	"memberlink/internal/identity/report"
	dErrors "memberlink/pkg/domain-errors"
	"memberlink/pkg/testutil"
)

type ReconcileSuite struct {
	suite.Suite
	dir     *directory.InMemory
	reg     *registry.InMemory
	mail    *fakeMail
	events  *audit.InMemoryStore
	service *reconcile.Service
}

func TestReconcileSuite(t *testing.T) {
	suite.Run(t, new(ReconcileSuite))
}

func (s *ReconcileSuite) SetupTest() {
	s.dir = directory.NewInMemory()
	s.reg = registry.NewInMemory()
	s.mail = newFakeMail()
	s.events = audit.NewInMemoryStore()
	s.service = s.newService(reconcile.DefaultConfig())
}

func (s *ReconcileSuite) newService(cfg reconcile.Config) *reconcile.Service {
	cfg.RedirectURL = "https://members.example.com/auth/callback"
	svc, err := reconcile.New(
		directory.NewScanner(s.dir, directory.WithPageSize(2)),
		registry.NewLoader(s.reg, nil),
		s.reg,
		s.dir,
		s.mail,
		reconcile.WithConfig(cfg),
		reconcile.WithAuditPublisher(audit.NewPublisher(s.events)),
	)
	s.Require().NoError(err)
	return svc
}

func (s *ReconcileSuite) live() *report.Report {
	r, err := s.service.Reconcile(context.Background(), reconcile.RunOptions{Actor: "admin-1"})
	s.Require().NoError(err)
	return r
}

func (s *ReconcileSuite) dry() *report.Report {
	r, err := s.service.Reconcile(context.Background(), reconcile.RunOptions{DryRun: true, Actor: "admin-1"})
	s.Require().NoError(err)
	return r
}

// seedMixed builds one email per outcome.
func (s *ReconcileSuite) seedMixed() {
	s.dir.Seed(
		testutil.Account("acc-bob", "bob@example.com", true),
		testutil.Account("acc-carol", "Carol@Example.com", true),
		testutil.Account("acc-dave", "dave@example.com", true),
	)
	dave := testutil.Member("mem-dave", "dave@example.com", "Dave", models.RoleOfficial)
	dave.AccountID = "acc-dave"
	s.reg.Seed(
		testutil.Member("mem-alice", "alice@example.com", "Alice Smith", models.RoleOfficial),
		testutil.Member("mem-carol", "carol@example.com", "Carol", models.RoleExecutive),
		dave,
	)
}

func (s *ReconcileSuite) TestAliceIsInvitedAndLinked() {
	s.reg.Seed(testutil.Member("mem-alice", "alice@example.com", "Alice Smith", models.RoleOfficial))

	r := s.live()

	accounts := s.dir.Snapshot()
	s.Require().Len(accounts, 1)
	s.Equal("alice@example.com", accounts[0].Email)
	s.Equal("Alice Smith", accounts[0].UserMetadata[models.MetaFullName])
	s.Equal(models.RoleOfficial, accounts[0].UserMetadata[models.MetaRole])

	members := s.reg.Snapshot()
	s.Require().Len(members, 1)
	s.Equal(accounts[0].ID, members[0].AccountID)

	sent := s.mail.Sent()
	s.Require().Len(sent, 1)
	s.Equal("alice@example.com", sent[0].Email)
	s.Equal("Alice Smith", sent[0].DisplayName)
	s.Contains(sent[0].ActionLink, "redirect_to=https://members.example.com/auth/callback")

	s.Equal([]string{"alice@example.com"}, r.Applied[models.OutcomeAccountInvited])
	s.Equal(1, r.Counts[models.OutcomeAccountInvited])
	s.Empty(r.Errors)
}

func (s *ReconcileSuite) TestBobGetsInactiveLinkedRecord() {
	s.dir.Seed(testutil.Account("acc-bob", "bob@example.com", true))

	r := s.live()

	members := s.reg.Snapshot()
	s.Require().Len(members, 1)
	s.Equal("bob@example.com", members[0].Email)
	s.Equal(models.MemberStatusInactive, members[0].Status)
	s.Equal("acc-bob", members[0].AccountID)
	s.Equal(models.RoleOfficial, members[0].Role)
	s.Equal("bob", members[0].Name)
	s.Empty(s.mail.Sent())
	s.Equal(1, r.AppliedCount(models.OutcomeRegistryCreated))
}

func (s *ReconcileSuite) TestEveryOutcome() {
	s.seedMixed()

	r := s.live()

	s.Equal(map[models.Outcome]int{
		models.OutcomeRegistryCreated:   1,
		models.OutcomeAccountInvited:    1,
		models.OutcomeLinked:            1,
		models.OutcomeAlreadyConsistent: 1,
	}, r.Counts)
	s.Equal([]string{"bob@example.com"}, r.Applied[models.OutcomeRegistryCreated])
	s.Equal([]string{"alice@example.com"}, r.Applied[models.OutcomeAccountInvited])
	s.Equal([]string{"carol@example.com"}, r.Applied[models.OutcomeLinked])
	s.Equal(3, r.TotalMembers)
	s.Equal(3, r.TotalAccounts)

	carol, err := s.reg.FindByEmail(context.Background(), "carol@example.com")
	s.Require().NoError(err)
	s.Equal("acc-carol", carol.AccountID)

	actions := map[audit.AuditEvent]int{}
	for _, e := range s.events.All() {
		actions[e.Action]++
		s.Equal("admin-1", e.Actor)
		s.Equal(r.RunID, e.RunID)
	}
	s.Equal(map[audit.AuditEvent]int{
		audit.EventMemberCreated:    1,
		audit.EventAccountInvited:   1,
		audit.EventMemberLinked:     1,
		audit.EventSyncRunCompleted: 1,
	}, actions)
}

func (s *ReconcileSuite) TestSecondRunIsIdempotent() {
	s.seedMixed()
	s.live()
	accountsAfterFirst := s.dir.Len()
	membersAfterFirst := len(s.reg.Snapshot())
	sentAfterFirst := len(s.mail.Sent())

	r := s.live()

	s.Equal(accountsAfterFirst, s.dir.Len())
	s.Equal(membersAfterFirst, len(s.reg.Snapshot()))
	s.Equal(sentAfterFirst, len(s.mail.Sent()))
	s.Equal(0, r.Counts[models.OutcomeRegistryCreated])
	s.Equal(0, r.Counts[models.OutcomeAccountInvited])
	s.Equal(0, r.Counts[models.OutcomeLinked])
	s.Equal(4, r.Counts[models.OutcomeAlreadyConsistent])
	s.Empty(r.Errors)
}

func (s *ReconcileSuite) TestDryRunMatchesLiveAndChangesNothing() {
	s.seedMixed()
	accountsBefore := s.dir.Snapshot()
	membersBefore := s.reg.Snapshot()

	dry := s.dry()

	s.Equal(accountsBefore, s.dir.Snapshot())
	s.Equal(membersBefore, s.reg.Snapshot())
	s.Empty(s.mail.Sent())
	s.Empty(s.mail.runs, "dry run must not open a mail run")

	live := s.live()
	s.Equal(live.Counts, dry.Counts)
	s.Equal(live.Applied, dry.Applied)
	s.True(dry.DryRun)
	s.False(live.DryRun)

	var dryEvents []audit.AuditEvent
	for _, e := range s.events.All() {
		if e.RunID == dry.RunID {
			dryEvents = append(dryEvents, e.Action)
		}
	}
	s.Equal([]audit.AuditEvent{audit.EventSyncRunCompleted}, dryEvents)
}

func (s *ReconcileSuite) TestDryRunNeedsNoRelay() {
	s.reg.Seed(testutil.Member("mem-alice", "alice@example.com", "Alice", ""))
	s.mail.readyErr = errors.New("relay not configured")

	r := s.dry()
	s.Equal(1, r.Counts[models.OutcomeAccountInvited])
}

func (s *ReconcileSuite) TestNeverCreatesDuplicates() {
	s.dir.Seed(testutil.Account("acc-bob", "BOB@example.com ", true))
	s.reg.Seed(testutil.Member("mem-bob", " bob@EXAMPLE.com", "Bob", models.RoleOfficial))

	for range 3 {
		s.live()
	}
	s.Equal(1, s.dir.Len())
	s.Len(s.reg.Snapshot(), 1)
	s.Empty(s.mail.Sent())
}

func (s *ReconcileSuite) TestSendFailureIsIsolated() {
	s.reg.Seed(
		testutil.Member("mem-a", "a@example.com", "A", models.RoleOfficial),
		testutil.Member("mem-b", "b@example.com", "B", models.RoleOfficial),
	)
	s.mail.failFor["a@example.com"] = errors.New("relay returned 503")

	r := s.live()

	s.Require().Len(r.Errors, 1)
	s.Equal("a@example.com", r.Errors[0].Email)
	s.Equal("Auth created but email failed: relay returned 503", r.Errors[0].Message)
	s.Equal([]string{"b@example.com"}, r.Applied[models.OutcomeAccountInvited])
	s.Equal(2, r.Counts[models.OutcomeAccountInvited])

	a, err := s.reg.FindByEmail(context.Background(), "a@example.com")
	s.Require().NoError(err)
	s.Empty(a.AccountID, "record stays unlinked when the invite was not delivered")
	b, err := s.reg.FindByEmail(context.Background(), "b@example.com")
	s.Require().NoError(err)
	s.NotEmpty(b.AccountID)

	// The next run repairs the orphaned account without re-inviting.
	delete(s.mail.failFor, "a@example.com")
	r = s.live()
	s.Equal([]string{"a@example.com"}, r.Applied[models.OutcomeLinked])
	s.Equal(2, s.dir.Len())
	s.Len(s.mail.Sent(), 1)
}

func (s *ReconcileSuite) TestDirectoryWriteFailureIsIsolated() {
	s.dir = directory.NewInMemory(directory.WithFault(func(op, email string) error {
		if op == "generate_link" && email == "a@example.com" {
			return errors.New("directory rejected invite")
		}
		return nil
	}))
	s.service = s.newService(reconcile.DefaultConfig())
	s.reg.Seed(
		testutil.Member("mem-a", "a@example.com", "A", models.RoleOfficial),
		testutil.Member("mem-b", "b@example.com", "B", models.RoleOfficial),
	)

	r := s.live()

	s.Require().Len(r.Errors, 1)
	s.Equal("directory rejected invite", r.Errors[0].Message)
	s.Equal([]string{"b@example.com"}, r.Applied[models.OutcomeAccountInvited])
}

func (s *ReconcileSuite) TestRegistryDuplicatesAreSkipped() {
	s.dir.Seed(testutil.Account("acc-x", "x@example.com", true))
	s.reg.Seed(
		testutil.Member("mem-x1", "x@example.com", "X", models.RoleOfficial),
		testutil.Member("mem-x2", "X@example.com", "X", models.RoleOfficial),
	)

	r := s.live()

	s.Equal([]string{"x@example.com: duplicate registry records"}, r.Skipped)
	for _, o := range models.Outcomes {
		s.Zero(r.Counts[o])
	}
	for _, m := range s.reg.Snapshot() {
		s.Empty(m.AccountID)
	}
}

func (s *ReconcileSuite) TestRelayMissingFailsBeforeAnyWrite() {
	s.seedMixed()
	s.mail.readyErr = errors.New("relay not configured")
	before := s.reg.Snapshot()

	_, err := s.service.Reconcile(context.Background(), reconcile.RunOptions{})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(before, s.reg.Snapshot())
	s.Equal(3, s.dir.Len())
}

func (s *ReconcileSuite) TestDeadlineTruncatesRun() {
	s.reg.Seed(
		testutil.Member("mem-a", "a@example.com", "A", models.RoleOfficial),
		testutil.Member("mem-b", "b@example.com", "B", models.RoleOfficial),
		testutil.Member("mem-c", "c@example.com", "C", models.RoleOfficial),
	)
	s.mail.block = true
	cfg := reconcile.DefaultConfig()
	cfg.RunTimeout = 50 * time.Millisecond
	s.service = s.newService(cfg)

	r := s.live()

	s.True(r.Truncated)
	s.Require().Len(r.Errors, 1)
	s.Equal("a@example.com", r.Errors[0].Email)
	s.Equal([]string{
		"b@example.com: " + report.DeadlineExceeded,
		"c@example.com: " + report.DeadlineExceeded,
	}, r.Skipped)
	s.Equal(1, r.Counts[models.OutcomeAccountInvited])
}

func TestSnapshotFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	scanner := mocks.NewMockAccountScanner(ctrl)
	loader := mocks.NewMockMemberLoader(ctrl)
	writer := mocks.NewMockMemberWriter(ctrl)
	links := mocks.NewMockLinkGenerator(ctrl)
	mail := mocks.NewMockMailService(ctrl)

	scanner.EXPECT().ScanAll(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "failed to list directory accounts: connection refused"))
	loader.EXPECT().LoadAll(gomock.Any()).Return([]models.MemberRecord{}, nil).AnyTimes()

	svc, err := reconcile.New(scanner, loader, writer, links, mail)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Reconcile(context.Background(), reconcile.RunOptions{})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected underlying message, got %q", err.Error())
	}
}

func TestRegistryWriteFailureIsRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	scanner := mocks.NewMockAccountScanner(ctrl)
	loader := mocks.NewMockMemberLoader(ctrl)
	writer := mocks.NewMockMemberWriter(ctrl)
	links := mocks.NewMockLinkGenerator(ctrl)
	publisher := mocks.NewMockAuditPublisher(ctrl)

	scanner.EXPECT().ScanAll(gomock.Any()).Return([]models.AuthAccount{
		testutil.Account("acc-1", "one@example.com", true),
		testutil.Account("acc-2", "two@example.com", true),
	}, nil)
	loader.EXPECT().LoadAll(gomock.Any()).Return(nil, nil)
	gomock.InOrder(
		writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed")),
		writer.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *models.MemberRecord) error {
				rec.ID = "mem-2"
				return nil
			}),
	)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down")).Times(2)

	svc, err := reconcile.New(scanner, loader, writer, links, nil,
		reconcile.WithAuditPublisher(publisher),
		reconcile.WithRunIDs(func() string { return "run-fixed" }),
	)
	if err != nil {
		t.Fatal(err)
	}
	r, err := svc.Reconcile(context.Background(), reconcile.RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Errors) != 1 || r.Errors[0].Email != "one@example.com" || r.Errors[0].Message != "insert failed" {
		t.Fatalf("unexpected errors: %+v", r.Errors)
	}
	if got := r.Applied[models.OutcomeRegistryCreated]; len(got) != 1 || got[0] != "two@example.com" {
		t.Fatalf("unexpected applied: %v", got)
	}
	if r.RunID != "run-fixed" {
		t.Fatalf("unexpected run id %q", r.RunID)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := reconcile.New(nil, mocks.NewMockMemberLoader(ctrl), mocks.NewMockMemberWriter(ctrl), mocks.NewMockLinkGenerator(ctrl), nil)
	if err == nil {
		t.Fatal("expected error for missing scanner")
	}
}

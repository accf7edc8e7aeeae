// Package reconcile executes reconciliation plans against the directory and
// the registry, and re-sends pending invites.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/linker"
	"memberlink/internal/identity/mailer"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/report"
	"memberlink/internal/platform/metrics"
	"memberlink/internal/platform/tracer"
	dErrors "memberlink/pkg/domain-errors"
)

const (
	ActionReconcile = "reconcile"
	ActionResend    = "resend"
)

// DefaultRunTimeout bounds a run so a response is returned before the
// caller's own request timeout.
const DefaultRunTimeout = 25 * time.Second

// Config holds run-wide settings.
type Config struct {
	// DefaultRole is given to records synthesized from directory accounts
	// and to invites of records without a role.
	DefaultRole string
	// RedirectURL is where invite links land after acceptance.
	RedirectURL string
	RunTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{DefaultRole: models.RoleOfficial, RunTimeout: DefaultRunTimeout}
}

// RunOptions are the caller-controlled switches of one run.
type RunOptions struct {
	DryRun bool
	// Actor is recorded on audit events.
	Actor string
}

type Service struct {
	accounts AccountScanner
	members  MemberLoader
	registry MemberWriter
	links    LinkGenerator
	mail     MailService
	audit    AuditPublisher
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	clock    func() time.Time
	newRunID func() string
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithRunIDs overrides run id generation (tests).
func WithRunIDs(fn func() string) Option {
	return func(s *Service) {
		s.newRunID = fn
	}
}

func New(
	accounts AccountScanner,
	members MemberLoader,
	registry MemberWriter,
	links LinkGenerator,
	mail MailService,
	opts ...Option,
) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account scanner is required")
	}
	if members == nil {
		return nil, fmt.Errorf("member loader is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("member writer is required")
	}
	if links == nil {
		return nil, fmt.Errorf("link generator is required")
	}

	s := &Service{
		accounts: accounts,
		members:  members,
		registry: registry,
		links:    links,
		mail:     mail,
		cfg:      DefaultConfig(),
		logger:   slog.Default(),
		tracer:   tracer.NewNoop(),
		clock:    time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.DefaultRole == "" {
		s.cfg.DefaultRole = models.RoleOfficial
	}
	return s, nil
}

// Reconcile brings the directory and the registry into agreement.
//
// Both snapshots are read in parallel and classified by linker.Plan, then
// every decision is applied in plan order. A failing item is recorded and the
// loop moves on. When the run deadline passes, the remaining emails are
// skipped and the report is marked truncated. Only a failed snapshot read or
// a missing mail relay fails the run as a whole.
func (s *Service) Reconcile(ctx context.Context, opts RunOptions) (_ *report.Report, err error) {
	runID := s.newRunID()
	ctx, span := s.tracer.Start(ctx, tracer.SpanReconcileRun, tracer.Bool(tracer.AttrDryRun, opts.DryRun))
	defer func() { span.End(err) }()

	ctx, cancel := s.withRunTimeout(ctx)
	defer cancel()

	start := s.clock()
	defer func() {
		s.metrics.ObserveRun(ActionReconcile, opts.DryRun, runResult(err), s.clock().Sub(start).Seconds())
	}()

	accounts, records, err := s.snapshot(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "reconcile snapshot failed", "run_id", runID, "error", err)
		return nil, err
	}

	plan := linker.Plan(accounts, records, linker.Defaults{Role: s.cfg.DefaultRole})

	var sender mailer.Sender
	if !opts.DryRun && plan.Counts[models.OutcomeAccountInvited] > 0 {
		if sender, err = s.runSender(runID); err != nil {
			return nil, err
		}
	}

	b := report.NewBuilder(runID, opts.DryRun, s.clock)
	b.Totals(len(records), len(accounts))
	b.Skip(plan.Skipped...)

	for i, d := range plan.Decisions {
		if ctx.Err() != nil {
			b.Truncate(remainingEmails(plan.Decisions[i:]))
			s.logger.WarnContext(ctx, "reconcile run truncated",
				"run_id", runID,
				"remaining", len(plan.Decisions)-i,
			)
			break
		}
		b.Classified(d.Outcome)
		s.metrics.IncrementOutcome(string(d.Outcome), opts.DryRun)
		if itemErr := s.apply(ctx, runID, opts, sender, d, b); itemErr != nil {
			s.metrics.IncrementItemError(ActionReconcile)
			s.logger.WarnContext(ctx, "reconcile item failed",
				"run_id", runID,
				"email", d.Email,
				"outcome", d.Outcome,
				"error", itemErr,
			)
		}
	}

	r := b.Build()
	span.SetAttributes(
		tracer.Int(tracer.AttrAccounts, r.TotalAccounts),
		tracer.Int(tracer.AttrMembers, r.TotalMembers),
		tracer.Int(tracer.AttrErrors, len(r.Errors)),
		tracer.Bool(tracer.AttrTruncated, r.Truncated),
	)
	s.logger.InfoContext(ctx, "reconcile run completed",
		"run_id", runID,
		"dry_run", opts.DryRun,
		"total_members", r.TotalMembers,
		"total_accounts", r.TotalAccounts,
		"registry_created", r.Counts[models.OutcomeRegistryCreated],
		"account_invited", r.Counts[models.OutcomeAccountInvited],
		"linked", r.Counts[models.OutcomeLinked],
		"already_consistent", r.Counts[models.OutcomeAlreadyConsistent],
		"errors", len(r.Errors),
		"truncated", r.Truncated,
	)
	s.emit(ctx, audit.Event{
		Action: audit.EventSyncRunCompleted,
		RunID:  runID,
		Actor:  opts.Actor,
		DryRun: opts.DryRun,
		Detail: map[string]any{
			"action":             ActionReconcile,
			"registry_created":   r.Counts[models.OutcomeRegistryCreated],
			"account_invited":    r.Counts[models.OutcomeAccountInvited],
			"linked":             r.Counts[models.OutcomeLinked],
			"already_consistent": r.Counts[models.OutcomeAlreadyConsistent],
			"errors":             len(r.Errors),
			"truncated":          r.Truncated,
		},
	})
	return r, nil
}

// apply carries out one decision. The returned error has already been
// recorded in the report.
func (s *Service) apply(ctx context.Context, runID string, opts RunOptions, sender mailer.Sender, d linker.Decision, b *report.Builder) error {
	if opts.DryRun {
		b.Applied(d.Outcome, d.Email)
		return nil
	}

	switch d.Outcome {
	case models.OutcomeRegistryCreated:
		record := *d.Member
		if err := s.registry.Create(ctx, &record); err != nil {
			b.Fail(d.Email, err)
			return err
		}
		b.Applied(d.Outcome, d.Email)
		s.emit(ctx, audit.Event{
			Action:    audit.EventMemberCreated,
			RunID:     runID,
			Actor:     opts.Actor,
			Email:     d.Email,
			AccountID: record.AccountID,
			MemberID:  record.ID,
		})

	case models.OutcomeAccountInvited:
		return s.invite(ctx, runID, opts, sender, d, b)

	case models.OutcomeLinked:
		if err := s.registry.LinkAccount(ctx, d.Member.ID, d.Account.ID); err != nil {
			b.Fail(d.Email, err)
			return err
		}
		b.Applied(d.Outcome, d.Email)
		s.emit(ctx, audit.Event{
			Action:    audit.EventMemberLinked,
			RunID:     runID,
			Actor:     opts.Actor,
			Email:     d.Email,
			AccountID: d.Account.ID,
			MemberID:  d.Member.ID,
			Detail:    map[string]any{"previous_account_id": d.Member.AccountID},
		})

	case models.OutcomeAlreadyConsistent:
		b.Applied(d.Outcome, d.Email)
	}
	return nil
}

// invite creates the account through an invite link, mails the link, and
// links the record only once the mail went out. A record whose mail failed
// stays unlinked so the next run repairs it through the linked branch.
func (s *Service) invite(ctx context.Context, runID string, opts RunOptions, sender mailer.Sender, d linker.Decision, b *report.Builder) error {
	m := d.Member
	role := strings.TrimSpace(m.Role)
	if role == "" {
		role = s.cfg.DefaultRole
	}

	link, err := s.links.GenerateLink(ctx, directory.GenerateLinkParams{
		Kind:  models.LinkInvite,
		Email: d.Email,
		Data: map[string]any{
			models.MetaFullName: m.Name,
			models.MetaName:     m.Name,
			models.MetaRole:     role,
		},
		RedirectTo: s.cfg.RedirectURL,
	})
	if err != nil {
		b.Fail(d.Email, err)
		return err
	}

	err = sender.Send(ctx, mailer.Invitation{
		Kind:        mailer.KindInvite,
		Email:       d.Email,
		ActionLink:  link.URL,
		DisplayName: m.Name,
	})
	if err != nil {
		b.Failf(d.Email, "Auth created but email failed: %v", sendCause(err))
		return err
	}

	if err := s.registry.LinkAccount(ctx, m.ID, link.Account.ID); err != nil {
		b.Failf(d.Email, "Invite sent but member link failed: %v", err)
		return err
	}
	b.Applied(d.Outcome, d.Email)
	s.emit(ctx, audit.Event{
		Action:    audit.EventAccountInvited,
		RunID:     runID,
		Actor:     opts.Actor,
		Email:     d.Email,
		AccountID: link.Account.ID,
		MemberID:  m.ID,
		Detail:    map[string]any{"role": role},
	})
	return nil
}

// snapshot reads both stores in parallel. Either failure is fatal.
func (s *Service) snapshot(ctx context.Context) ([]models.AuthAccount, []models.MemberRecord, error) {
	var (
		accounts []models.AuthAccount
		records  []models.MemberRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.ScanAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.members.LoadAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, err.Error())
	}
	return accounts, records, nil
}

// runSender returns the run's mail sender, failing the run when no relay is
// configured so that no account is created without its invite.
func (s *Service) runSender(runID string) (mailer.Sender, error) {
	if s.mail == nil {
		return nil, dErrors.Wrap(mailer.ErrRelayNotConfigured, dErrors.CodeInternal, "mail relay is not configured")
	}
	if err := s.mail.Ready(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mail relay is not configured")
	}
	return s.mail.NewRun(runID), nil
}

func (s *Service) withRunTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RunTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RunTimeout)
}

// emit is best effort; audit failures never change a run outcome.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "email", event.Email, "error", err)
	}
}

func remainingEmails(decisions []linker.Decision) []string {
	emails := make([]string, len(decisions))
	for i, d := range decisions {
		emails[i] = d.Email
	}
	return emails
}

// sendCause strips the SendError envelope, whose text repeats the email.
func sendCause(err error) error {
	var sendErr *mailer.SendError
	if errors.As(err, &sendErr) && sendErr.Err != nil {
		return sendErr.Err
	}
	return err
}

func runResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

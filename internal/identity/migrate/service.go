// Package migrate moves a legacy roster into the directory and exports
// directory backups.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

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
	ActionMigrate = "migrate"
	ActionBackup  = "backup"
)

// ErrEmptyRosterMessage is returned, as a validation error, when neither the
// request nor the default roster lists anyone.
const ErrEmptyRosterMessage = "No members to migrate. Provide members array in request body."

type Config struct {
	DefaultRole string
	// RedirectURL is where password reset links land.
	RedirectURL string
	RunTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{DefaultRole: models.RoleOfficial, RunTimeout: 25 * time.Second}
}

type MigrateOptions struct {
	DryRun     bool
	SendEmails bool
	// Members overrides the default roster when non-empty.
	Members []models.RosterEntry
	Actor   string
}

// Result tallies one migration run.
type Result struct {
	RunID      string
	DryRun     bool
	SendEmails bool
	Truncated  bool

	Total                    int
	AlreadyPresent           int
	NeedsMigration           int
	Migrated                 int
	FlaggedForPasswordChange int
	EmailsSent               int
	Errors                   []string
	Skipped                  []string
}

type Service struct {
	accounts AccountScanner
	writer   AccountWriter
	mail     MailService
	roster   RosterSource
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

func WithRoster(r RosterSource) Option {
	return func(s *Service) {
		s.roster = r
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

func New(accounts AccountScanner, writer AccountWriter, mail MailService, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account scanner is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("account writer is required")
	}
	s := &Service{
		accounts: accounts,
		writer:   writer,
		mail:     mail,
		roster:   StaticRoster(nil),
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

// Migrate creates a directory account for every roster entry that has none
// and flags existing accounts for a credential reset. The registry is never
// touched; the next reconcile run picks the new accounts up.
func (s *Service) Migrate(ctx context.Context, opts MigrateOptions) (_ *Result, err error) {
	runID := s.newRunID()
	ctx, span := s.tracer.Start(ctx, tracer.SpanMigrateRun, tracer.Bool(tracer.AttrDryRun, opts.DryRun))
	defer func() { span.End(err) }()

	entries, err := s.rosterFor(opts)
	if err != nil {
		return nil, err
	}

	var cancel context.CancelFunc
	if s.cfg.RunTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := s.clock()
	defer func() {
		s.metrics.ObserveRun(ActionMigrate, opts.DryRun, runResult(err), s.clock().Sub(start).Seconds())
	}()

	accounts, err := s.accounts.ScanAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "migration scan failed", "run_id", runID, "error", err)
		return nil, err
	}

	plan := linker.PlanRoster(entries, accounts, linker.Defaults{Role: s.cfg.DefaultRole})

	var sender mailer.Sender
	if !opts.DryRun && opts.SendEmails && hasAbsent(plan) {
		if s.mail == nil {
			return nil, dErrors.Wrap(mailer.ErrRelayNotConfigured, dErrors.CodeInternal, "mail relay is not configured")
		}
		if err := s.mail.Ready(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mail relay is not configured")
		}
		sender = s.mail.NewRun(runID)
	}

	res := &Result{
		RunID:      runID,
		DryRun:     opts.DryRun,
		SendEmails: opts.SendEmails,
		Total:      len(entries),
		Errors:     []string{},
		Skipped:    append([]string{}, plan.Skipped...),
	}

	for i, d := range plan.Decisions {
		if ctx.Err() != nil {
			res.Truncated = true
			for _, rest := range plan.Decisions[i:] {
				res.Skipped = append(res.Skipped, fmt.Sprintf("%s: %s", rest.Entry.Email, report.DeadlineExceeded))
			}
			s.logger.WarnContext(ctx, "migration run truncated", "run_id", runID, "remaining", len(plan.Decisions)-i)
			break
		}
		errsBefore := len(res.Errors)
		if d.Present() {
			res.AlreadyPresent++
			s.metrics.IncrementOutcome("already_present", opts.DryRun)
			if !opts.DryRun {
				s.flag(ctx, runID, opts, d, res)
			}
		} else {
			res.NeedsMigration++
			s.metrics.IncrementOutcome("needs_migration", opts.DryRun)
			if !opts.DryRun {
				s.create(ctx, runID, opts, sender, d, res)
			}
		}
		if len(res.Errors) > errsBefore {
			s.metrics.IncrementItemError(ActionMigrate)
			s.logger.WarnContext(ctx, "migration item failed", "run_id", runID, "email", d.Entry.Email, "error", res.Errors[len(res.Errors)-1])
		}
	}

	s.logger.InfoContext(ctx, "migration run completed",
		"run_id", runID,
		"dry_run", opts.DryRun,
		"send_emails", opts.SendEmails,
		"total", res.Total,
		"already_present", res.AlreadyPresent,
		"needs_migration", res.NeedsMigration,
		"migrated", res.Migrated,
		"flagged", res.FlaggedForPasswordChange,
		"emails_sent", res.EmailsSent,
		"errors", len(res.Errors),
		"truncated", res.Truncated,
	)
	s.emit(ctx, audit.Event{
		Action: audit.EventSyncRunCompleted,
		RunID:  runID,
		Actor:  opts.Actor,
		DryRun: opts.DryRun,
		Detail: map[string]any{
			"action":          ActionMigrate,
			"total":           res.Total,
			"already_present": res.AlreadyPresent,
			"needs_migration": res.NeedsMigration,
			"migrated":        res.Migrated,
			"flagged":         res.FlaggedForPasswordChange,
			"emails_sent":     res.EmailsSent,
			"errors":          len(res.Errors),
			"truncated":       res.Truncated,
		},
	})
	return res, nil
}

// flag merges the credential reset markers into the existing user metadata.
func (s *Service) flag(ctx context.Context, runID string, opts MigrateOptions, d linker.RosterDecision, res *Result) {
	meta := maps.Clone(d.Account.UserMetadata)
	if meta == nil {
		meta = map[string]any{}
	}
	meta[models.MetaNeedsCredentialReset] = true
	meta[models.MetaMigrated] = true

	if _, err := s.writer.UpdateUserMetadata(ctx, d.Account.ID, meta); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to flag %s: %v", d.Entry.Email, err))
		return
	}
	res.FlaggedForPasswordChange++
	s.emit(ctx, audit.Event{
		Action:    audit.EventAccountFlagged,
		RunID:     runID,
		Actor:     opts.Actor,
		Email:     d.Entry.Email,
		AccountID: d.Account.ID,
	})
}

func (s *Service) create(ctx context.Context, runID string, opts MigrateOptions, sender mailer.Sender, d linker.RosterDecision, res *Result) {
	e := d.Entry
	acc, err := s.writer.CreateAccount(ctx, directory.CreateAccountParams{
		Email:        e.Email,
		EmailConfirm: true,
		UserMetadata: map[string]any{
			models.MetaFullName:             e.Name,
			models.MetaName:                 e.Name,
			models.MetaNeedsCredentialReset: true,
			models.MetaMigrated:             true,
		},
		AppMetadata: map[string]any{models.MetaRole: e.Role},
	})
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to create %s: %v", e.Email, err))
		return
	}
	res.Migrated++
	s.emit(ctx, audit.Event{
		Action:    audit.EventAccountMigrated,
		RunID:     runID,
		Actor:     opts.Actor,
		Email:     e.Email,
		AccountID: acc.ID,
		Detail:    map[string]any{"role": e.Role},
	})

	if sender == nil {
		return
	}
	link, err := s.writer.GenerateLink(ctx, directory.GenerateLinkParams{
		Kind:       models.LinkRecovery,
		Email:      e.Email,
		RedirectTo: s.cfg.RedirectURL,
	})
	if err == nil {
		err = sender.Send(ctx, mailer.Invitation{
			Kind:        mailer.KindPasswordReset,
			Email:       e.Email,
			ActionLink:  link.URL,
			DisplayName: e.Name,
		})
	}
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to send email to %s: %v", e.Email, sendCause(err)))
		return
	}
	res.EmailsSent++
}

// rosterFor validates the roster of a run: the request's members, else the
// default roster.
func (s *Service) rosterFor(opts MigrateOptions) ([]models.RosterEntry, error) {
	entries := opts.Members
	if len(entries) == 0 {
		var err error
		if entries, err = s.roster.Load(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load default roster")
		}
	}
	if len(entries) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, ErrEmptyRosterMessage)
	}
	for i, e := range entries {
		if models.NormalizeEmail(e.Email) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("members[%d].email is required", i))
		}
	}
	return entries, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "email", event.Email, "error", err)
	}
}

func hasAbsent(plan *linker.RosterPlan) bool {
	for _, d := range plan.Decisions {
		if !d.Present() {
			return true
		}
	}
	return false
}

func runResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// sendCause strips the SendError envelope, whose text repeats the email.
func sendCause(err error) error {
	var sendErr *mailer.SendError
	if errors.As(err, &sendErr) && sendErr.Err != nil {
		return sendErr.Err
	}
	return err
}

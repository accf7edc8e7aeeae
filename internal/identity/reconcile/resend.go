package reconcile

import (
	"context"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/mailer"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/report"
	"memberlink/internal/platform/tracer"
)

// ResendReport is the result of a resend run.
type ResendReport struct {
	RunID     string
	DryRun    bool
	Truncated bool
	// TotalAccounts is the size of the directory snapshot.
	TotalAccounts int
	// Pending lists every account that has not accepted its invite.
	Pending []models.AuthAccount
	Resent  []string
	Errors  []models.ItemError
	Skipped []string
}

// Resend issues a fresh invite to every unconfirmed directory account.
// Accounts are never deleted; the directory re-invites an unconfirmed
// account in place. A dry run only lists the pending accounts.
func (s *Service) Resend(ctx context.Context, opts RunOptions) (_ *ResendReport, err error) {
	runID := s.newRunID()
	ctx, span := s.tracer.Start(ctx, tracer.SpanResendRun, tracer.Bool(tracer.AttrDryRun, opts.DryRun))
	defer func() { span.End(err) }()

	ctx, cancel := s.withRunTimeout(ctx)
	defer cancel()

	start := s.clock()
	defer func() {
		s.metrics.ObserveRun(ActionResend, opts.DryRun, runResult(err), s.clock().Sub(start).Seconds())
	}()

	accounts, err := s.accounts.ScanAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "resend scan failed", "run_id", runID, "error", err)
		return nil, err
	}

	out := &ResendReport{
		RunID:         runID,
		DryRun:        opts.DryRun,
		TotalAccounts: len(accounts),
		Pending:       []models.AuthAccount{},
		Resent:        []string{},
		Errors:        []models.ItemError{},
		Skipped:       []string{},
	}
	for _, acc := range accounts {
		if !acc.IsConfirmed() && acc.NormalizedEmail() != "" {
			out.Pending = append(out.Pending, acc)
		}
	}

	if !opts.DryRun && len(out.Pending) > 0 {
		sender, err := s.runSender(runID)
		if err != nil {
			return nil, err
		}
		s.resendAll(ctx, runID, opts, sender, out)
	}

	s.logger.InfoContext(ctx, "resend run completed",
		"run_id", runID,
		"dry_run", opts.DryRun,
		"total_accounts", out.TotalAccounts,
		"pending", len(out.Pending),
		"resent", len(out.Resent),
		"errors", len(out.Errors),
		"truncated", out.Truncated,
	)
	s.emit(ctx, audit.Event{
		Action: audit.EventSyncRunCompleted,
		RunID:  runID,
		Actor:  opts.Actor,
		DryRun: opts.DryRun,
		Detail: map[string]any{
			"action":    ActionResend,
			"pending":   len(out.Pending),
			"resent":    len(out.Resent),
			"errors":    len(out.Errors),
			"truncated": out.Truncated,
		},
	})
	return out, nil
}

func (s *Service) resendAll(ctx context.Context, runID string, opts RunOptions, sender mailer.Sender, out *ResendReport) {
	for i, acc := range out.Pending {
		email := acc.NormalizedEmail()
		if ctx.Err() != nil {
			out.Truncated = true
			for _, rest := range out.Pending[i:] {
				out.Skipped = append(out.Skipped, rest.NormalizedEmail()+": "+report.DeadlineExceeded)
			}
			break
		}

		if err := s.resendOne(ctx, sender, acc); err != nil {
			out.Errors = append(out.Errors, models.ItemError{Email: email, Message: sendCause(err).Error()})
			s.metrics.IncrementItemError(ActionResend)
			s.logger.WarnContext(ctx, "resend item failed", "run_id", runID, "email", email, "error", err)
			continue
		}
		out.Resent = append(out.Resent, email)
		s.emit(ctx, audit.Event{
			Action:    audit.EventInviteResent,
			RunID:     runID,
			Actor:     opts.Actor,
			Email:     email,
			AccountID: acc.ID,
		})
	}
}

func (s *Service) resendOne(ctx context.Context, sender mailer.Sender, acc models.AuthAccount) error {
	link, err := s.links.GenerateLink(ctx, directory.GenerateLinkParams{
		Kind:       models.LinkInvite,
		Email:      acc.NormalizedEmail(),
		Data:       acc.UserMetadata,
		RedirectTo: s.cfg.RedirectURL,
	})
	if err != nil {
		return err
	}
	return sender.Send(ctx, mailer.Invitation{
		Kind:        mailer.KindInvite,
		Email:       acc.NormalizedEmail(),
		ActionLink:  link.URL,
		DisplayName: acc.DisplayName(),
	})
}

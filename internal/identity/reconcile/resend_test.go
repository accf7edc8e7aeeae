package reconcile_test

import (
	"context"
	"errors"

	"memberlink/internal/audit"
	"memberlink/internal/identity/reconcile"
	dErrors "memberlink/pkg/domain-errors"
	"memberlink/pkg/testutil"
)

func (s *ReconcileSuite) seedPending() {
	pending := testutil.Account("acc-p1", "p1@example.com", false)
	pending.UserMetadata = map[string]any{"full_name": "Pat One"}
	s.dir.Seed(
		pending,
		testutil.Account("acc-p2", "p2@example.com", false),
		testutil.Account("acc-ok", "ok@example.com", true),
	)
}

func (s *ReconcileSuite) TestResendDryRunListsPending() {
	s.seedPending()
	before := s.dir.Snapshot()

	r, err := s.service.Resend(context.Background(), reconcile.RunOptions{DryRun: true})
	s.Require().NoError(err)

	s.Equal(3, r.TotalAccounts)
	s.Require().Len(r.Pending, 2)
	s.Equal("p1@example.com", r.Pending[0].Email)
	s.Equal("p2@example.com", r.Pending[1].Email)
	s.Empty(r.Resent)
	s.Empty(s.mail.Sent())
	s.Equal(before, s.dir.Snapshot())
}

func (s *ReconcileSuite) TestResendInvitesPendingOnly() {
	s.seedPending()

	r, err := s.service.Resend(context.Background(), reconcile.RunOptions{Actor: "admin-1"})
	s.Require().NoError(err)

	s.Equal([]string{"p1@example.com", "p2@example.com"}, r.Resent)
	s.Empty(r.Errors)
	s.Equal(3, s.dir.Len(), "resend never deletes or recreates accounts")

	sent := s.mail.Sent()
	s.Require().Len(sent, 2)
	s.Equal("Pat One", sent[0].DisplayName)
	s.Equal("p2", sent[1].DisplayName)

	for _, acc := range s.dir.Snapshot() {
		if acc.Email == "ok@example.com" {
			s.Nil(acc.InvitedAt)
			continue
		}
		s.NotNil(acc.InvitedAt)
	}

	resent := 0
	for _, e := range s.events.All() {
		if e.Action == audit.EventInviteResent {
			resent++
		}
	}
	s.Equal(2, resent)
}

func (s *ReconcileSuite) TestResendFailureIsIsolated() {
	s.seedPending()
	s.mail.failFor["p1@example.com"] = errors.New("mailbox unavailable")

	r, err := s.service.Resend(context.Background(), reconcile.RunOptions{})
	s.Require().NoError(err)

	s.Equal([]string{"p2@example.com"}, r.Resent)
	s.Require().Len(r.Errors, 1)
	s.Equal("p1@example.com", r.Errors[0].Email)
	s.Equal("mailbox unavailable", r.Errors[0].Message)
}

func (s *ReconcileSuite) TestResendWithoutRelayFails() {
	s.seedPending()
	s.mail.readyErr = errors.New("no relay")

	_, err := s.service.Resend(context.Background(), reconcile.RunOptions{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ReconcileSuite) TestResendNothingPendingNeedsNoRelay() {
	s.dir.Seed(testutil.Account("acc-ok", "ok@example.com", true))
	s.mail.readyErr = errors.New("no relay")

	r, err := s.service.Resend(context.Background(), reconcile.RunOptions{})
	s.Require().NoError(err)
	s.Empty(r.Pending)
}

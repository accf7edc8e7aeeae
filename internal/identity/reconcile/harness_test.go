package reconcile_test

import (
	"context"
	"sync"

	"memberlink/internal/identity/mailer"
)

// fakeMail records every invitation of every run.
type fakeMail struct {
	mu      sync.Mutex
	readyErr error
	sent    []mailer.Invitation
	runs    []string
	failFor map[string]error
	// block makes Send wait for the context to end.
	block bool
}

func newFakeMail() *fakeMail {
	return &fakeMail{failFor: map[string]error{}}
}

func (m *fakeMail) Ready() error { return m.readyErr }

func (m *fakeMail) NewRun(runID string) mailer.Sender {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, runID)
	return &fakeSender{mail: m}
}

func (m *fakeMail) Sent() []mailer.Invitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Invitation(nil), m.sent...)
}

type fakeSender struct {
	mail *fakeMail
}

func (s *fakeSender) Send(ctx context.Context, inv mailer.Invitation) error {
	m := s.mail
	if m.block {
		<-ctx.Done()
		return &mailer.SendError{Email: inv.Email, Err: ctx.Err()}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[inv.Email]; ok {
		return &mailer.SendError{Email: inv.Email, Err: err}
	}
	m.sent = append(m.sent, inv)
	return nil
}

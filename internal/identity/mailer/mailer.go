// Package mailer renders invitation and credential-reset emails and sends
// them through the mail relay, one run-scoped Dispatcher at a time.
package mailer

import (
	"context"
	"fmt"
)

// Kind selects the email template and the history type.
type Kind string

const (
	KindInvite        Kind = "invite"
	KindPasswordReset Kind = "password_reset"
)

// Invitation is one email to send.
type Invitation struct {
	Kind        Kind
	Email       string
	ActionLink  string
	DisplayName string
}

// Message is a rendered email ready for the relay.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Relay delivers a rendered message.
type Relay interface {
	Send(ctx context.Context, msg Message) error
}

// RelayFactory creates a relay for one run. Relay credentials are acquired
// lazily by the relay and reused for the run.
type RelayFactory interface {
	NewRelay(ctx context.Context) Relay
}

// Sender sends invitations for one run.
type Sender interface {
	Send(ctx context.Context, inv Invitation) error
}

// SendError ties a delivery failure to its recipient.
type SendError struct {
	Email string
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send email to %s: %v", e.Email, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

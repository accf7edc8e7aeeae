package mailer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"memberlink/internal/platform/metrics"
	"memberlink/internal/platform/tracer"
)

// DefaultSendDelay spaces successive sends to stay under relay throughput limits.
const DefaultSendDelay = 200 * time.Millisecond

var ErrRelayNotConfigured = errors.New("mail relay is not configured")

// Service hands out run-scoped dispatchers.
type Service struct {
	factory   RelayFactory
	templates *Templates
	history   HistoryRecorder
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

type Option func(*Service)

func WithHistory(h HistoryRecorder) Option {
	return func(s *Service) {
		s.history = h
	}
}

func WithSendDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithSleep replaces the context-aware sleep, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) {
		s.sleep = fn
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
		s.tracer = t
	}
}

// NewService builds the dispatcher source. A nil factory leaves the relay
// unconfigured: Ready reports it and every send fails.
func NewService(factory RelayFactory, templates *Templates, opts ...Option) *Service {
	s := &Service{
		factory:   factory,
		templates: templates,
		delay:     DefaultSendDelay,
		sleep:     sleepContext,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether emails can be sent at all.
func (s *Service) Ready() error {
	if s == nil || s.factory == nil {
		return ErrRelayNotConfigured
	}
	return nil
}

// NewRun returns a dispatcher for one run. Its relay, and so its relay
// token, is created on the first send and reused afterwards.
func (s *Service) NewRun(runID string) Sender {
	return &Dispatcher{svc: s, runID: runID}
}

// Dispatcher sends the invitations of one run sequentially.
type Dispatcher struct {
	svc      *Service
	runID    string
	relay    Relay
	attempts int
}

// Send renders and delivers inv. Every failure is a *SendError.
func (d *Dispatcher) Send(ctx context.Context, inv Invitation) (err error) {
	s := d.svc
	ctx, span := s.tracer.Start(ctx, tracer.SpanDispatch, tracer.String(tracer.AttrEmailKind, string(inv.Kind)))
	defer func() { span.End(err) }()

	if d.attempts > 0 && s.delay > 0 {
		if err := s.sleep(ctx, s.delay); err != nil {
			return &SendError{Email: inv.Email, Err: err}
		}
	}
	d.attempts++

	msg, err := s.templates.Render(inv)
	if err != nil {
		return &SendError{Email: inv.Email, Err: err}
	}

	sendErr := d.deliver(ctx, msg)
	d.record(ctx, inv, msg, sendErr)
	if sendErr != nil {
		s.metrics.IncrementEmailFailed(string(inv.Kind))
		return &SendError{Email: inv.Email, Err: sendErr}
	}
	s.metrics.IncrementEmailSent(string(inv.Kind))
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	if d.svc.factory == nil {
		return ErrRelayNotConfigured
	}
	if d.relay == nil {
		d.relay = d.svc.factory.NewRelay(context.WithoutCancel(ctx))
	}
	return d.relay.Send(ctx, msg)
}

func (d *Dispatcher) record(ctx context.Context, inv Invitation, msg Message, sendErr error) {
	s := d.svc
	if s.history == nil {
		return
	}
	entry := HistoryEntry{
		Kind:      inv.Kind,
		Recipient: inv.Email,
		Subject:   msg.Subject,
		Status:    HistorySent,
		RunID:     d.runID,
		SentAt:    time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = HistoryFailed
		entry.Error = sendErr.Error()
	}
	if err := s.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record email history", "recipient", inv.Email, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Sender = (*Dispatcher)(nil)

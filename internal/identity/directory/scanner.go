package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"memberlink/internal/identity/models"
	"memberlink/internal/platform/metrics"
	"memberlink/internal/platform/tracer"
	dErrors "memberlink/pkg/domain-errors"
)

const (
	DefaultPageSize = 1000
	DefaultMaxPages = 100
)

// ErrPageLimitExceeded is returned when every page up to the limit came back full.
var ErrPageLimitExceeded = errors.New("directory page limit exceeded")

// Pager fetches one page of accounts.
type Pager interface {
	ListAccounts(ctx context.Context, page, perPage int) ([]models.AuthAccount, error)
}

// Scanner enumerates every directory account.
//
// It stops at the first page holding fewer than pageSize accounts (an empty
// page included). At most maxPages pages are fetched; a full last page yields
// ErrPageLimitExceeded rather than a silently partial result.
type Scanner struct {
	pager    Pager
	pageSize int
	maxPages int
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
}

type ScannerOption func(*Scanner)

func WithPageSize(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithMaxPages(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ScannerOption {
	return func(s *Scanner) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) ScannerOption {
	return func(s *Scanner) {
		s.tracer = t
	}
}

func NewScanner(pager Pager, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		pager:    pager,
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
		tracer:   tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanAll returns every account exactly once, in directory order.
// Any page failure aborts the scan.
func (s *Scanner) ScanAll(ctx context.Context) (accounts []models.AuthAccount, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDirectoryScan, tracer.Int(tracer.AttrPageSize, s.pageSize))
	defer func() { span.End(err) }()

	seen := make(map[string]struct{})
	for page := 1; page <= s.maxPages; page++ {
		batch, err := s.pager.ListAccounts(ctx, page, s.pageSize)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to list directory accounts: %v", err))
		}
		s.metrics.IncrementDirectoryPages()

		for _, a := range batch {
			if _, dup := seen[a.ID]; dup {
				s.logger.WarnContext(ctx, "duplicate directory account across pages", "account_id", a.ID, "page", page)
				continue
			}
			seen[a.ID] = struct{}{}
			accounts = append(accounts, a)
		}

		if len(batch) < s.pageSize {
			span.SetAttributes(tracer.Int(tracer.AttrPages, page), tracer.Int(tracer.AttrAccounts, len(accounts)))
			return accounts, nil
		}
	}

	limitErr := fmt.Errorf("%w: %d full pages of %d accounts", ErrPageLimitExceeded, s.maxPages, s.pageSize)
	return nil, dErrors.Wrap(limitErr, dErrors.CodeInternal, limitErr.Error())
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/principal"
	"memberlink/internal/identity/reconcile"
	"memberlink/internal/identity/report"
	"memberlink/internal/identity/runlock"
	"memberlink/internal/platform/metrics"
	"memberlink/internal/platform/privacy"
	dErrors "memberlink/pkg/domain-errors"
	"memberlink/pkg/platform/httputil"
	"memberlink/pkg/platform/validation"
	"memberlink/pkg/requestcontext"
)

// Reconciler runs reconciliation and invite re-sends.
type Reconciler interface {
	Reconcile(ctx context.Context, opts reconcile.RunOptions) (*report.Report, error)
	Resend(ctx context.Context, opts reconcile.RunOptions) (*reconcile.ResendReport, error)
}

// Migrator runs legacy migrations and directory exports.
type Migrator interface {
	Migrate(ctx context.Context, opts migrate.MigrateOptions) (*migrate.Result, error)
	Backup(ctx context.Context) (*migrate.Backup, error)
	MigrationStatus(ctx context.Context, email string) (*migrate.Status, error)
}

// PrincipalResolver authenticates the Authorization header.
type PrincipalResolver interface {
	Resolve(ctx context.Context, authHeader string) (*models.Principal, error)
}

// lockSlack keeps the lock alive a little past the run deadline so the
// release, not the expiry, ends it.
const lockSlack = 5 * time.Second

type Handler struct {
	reconciler Reconciler
	migrator   Migrator
	resolver   PrincipalResolver
	locker     runlock.Locker
	logger     *slog.Logger
	metrics    *metrics.Metrics
	lockTTL    time.Duration
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithLockTTL sets how long a live run may hold the sync lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(h *Handler) {
		if ttl > 0 {
			h.lockTTL = ttl
		}
	}
}

func New(reconciler Reconciler, migrator Migrator, resolver PrincipalResolver, locker runlock.Locker, opts ...Option) *Handler {
	h := &Handler{
		reconciler: reconciler,
		migrator:   migrator,
		resolver:   resolver,
		locker:     locker,
		logger:     slog.Default(),
		lockTTL:    reconcile.DefaultRunTimeout + lockSlack,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/sync", h.HandleSync)
	r.Get("/identity/migration-status", h.HandleMigrationStatus)
}

// HandleSync authenticates the caller, authorizes the action, and runs it.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	p, err := h.resolver.Resolve(ctx, r.Header.Get("Authorization"))
	if err != nil {
		h.logger.WarnContext(ctx, "sync request unauthenticated", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxBodySize)
	req, ok := httputil.DecodeJSON[SyncRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req.Normalize()
	action, err := req.ResolveAction()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if !principal.HasRequiredRole(p, allowedRoles[action]...) {
		h.logger.WarnContext(ctx, "sync request forbidden",
			"action", action,
			"role", p.Role,
			"subject", p.Subject,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role for "+action))
		return
	}

	if err := req.Validate(); err != nil {
		httputil.WritePrepareError(w, err)
		return
	}

	dryRun := req.IsDryRun()
	if action != ActionBackup && !dryRun {
		release, err := h.acquire(ctx, requestID, action)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				h.logger.WarnContext(ctx, "failed to release sync lock", "error", err, "request_id", requestID)
			}
		}()
	}

	actor := p.Email
	if actor == "" {
		actor = p.Subject
	}

	var resp any
	switch action {
	case ActionBackup:
		backup, runErr := h.migrator.Backup(ctx)
		if err = runErr; err == nil {
			resp = toBackupResponse(backup)
		}
	case ActionMigrate:
		result, runErr := h.migrator.Migrate(ctx, migrate.MigrateOptions{
			DryRun:     dryRun,
			SendEmails: req.SendEmails,
			Members:    req.Roster(),
			Actor:      actor,
		})
		if err = runErr; err == nil {
			resp = toMigrateResponse(result)
		}
	case ActionResend:
		rep, runErr := h.reconciler.Resend(ctx, reconcile.RunOptions{DryRun: dryRun, Actor: actor})
		if err = runErr; err == nil {
			resp = toResendResponse(rep)
		}
	default:
		rep, runErr := h.reconciler.Reconcile(ctx, reconcile.RunOptions{DryRun: dryRun, Actor: actor})
		if err = runErr; err == nil {
			resp = toReconcileResponse(rep)
		}
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "sync run failed",
			"action", action,
			"dry_run", dryRun,
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "sync run served",
		"action", action,
		"dry_run", dryRun,
		"subject", p.Subject,
		"actor", privacy.MaskEmail(p.Email),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) acquire(ctx context.Context, requestID, action string) (runlock.Release, error) {
	release, err := h.locker.Acquire(ctx, runlock.Key, h.lockTTL)
	if errors.Is(err, runlock.ErrHeld) {
		h.metrics.IncrementLockContention()
		h.logger.WarnContext(ctx, "sync run already in progress", "action", action, "request_id", requestID)
		return nil, dErrors.New(dErrors.CodeConflict, "another sync run is in progress")
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to acquire sync lock", "error", err, "request_id", requestID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire sync lock")
	}
	return release, nil
}

// HandleMigrationStatus reports whether an email was migrated and still has
// to set a password. It needs no credentials.
func (h *Handler) HandleMigrationStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	email := r.URL.Query().Get("email")
	if err := validation.CheckStringLength("email", email, validation.MaxEmailLength); err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := h.migrator.MigrationStatus(ctx, email)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "migration status lookup failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MigrationStatusResponse{Exists: status.Exists, IsMigrated: status.IsMigrated})
}

package principal

import (
	"context"
	"log/slog"
	"strings"

	dErrors "memberlink/pkg/domain-errors"

	"memberlink/internal/identity/models"
)

// MigrationSubject identifies callers authenticated by the migration secret.
const MigrationSubject = "migration-secret"

// Resolver turns an Authorization header into a Principal.
type Resolver struct {
	verifier *TokenVerifier
	secret   *MigrationSecret
	logger   *slog.Logger
}

type ResolverOption func(*Resolver)

func WithMigrationSecret(s *MigrationSecret) ResolverOption {
	return func(r *Resolver) {
		r.secret = s
	}
}

func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(verifier *TokenVerifier, opts ...ResolverOption) *Resolver {
	r := &Resolver{verifier: verifier}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve verifies the bearer token. The session token is tried first; the
// migration secret is checked only when the token is not a valid session.
// Every failure is CodeUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, authHeader string) (*models.Principal, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token")
	}

	var verifyErr error
	if r.verifier != nil {
		p, err := r.verifier.Verify(token)
		if err == nil {
			return p, nil
		}
		verifyErr = err
	}

	if r.secret.Matches(token) {
		return &models.Principal{Subject: MigrationSubject, Role: models.RoleMigration}, nil
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "bearer token rejected", "error", verifyErr)
	}
	if verifyErr != nil {
		return nil, verifyErr
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HasRequiredRole is the single role predicate used by every entry point.
// Role names compare case-insensitively.
func HasRequiredRole(p *models.Principal, allowed ...string) bool {
	if p == nil {
		return false
	}
	role := strings.TrimSpace(p.Role)
	if role == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(role, a) {
			return true
		}
	}
	return false
}

// Package principal resolves the caller of a sync run from its bearer token.
package principal

import (
	"errors"
	"fmt"
	"time"

	dErrors "memberlink/pkg/domain-errors"

	"memberlink/internal/identity/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of a directory session token the endpoint relies on.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Role follows the directory convention: app metadata first, then user metadata.
// The top-level "role" claim is the database role of the session and is ignored.
func (c *Claims) Role() string {
	acct := models.AuthAccount{AppMetadata: c.AppMetadata, UserMetadata: c.UserMetadata}
	return acct.Role()
}

// TokenVerifier checks HS256 session tokens signed with the directory secret.
type TokenVerifier struct {
	signingKey []byte
	audience   string
	leeway     time.Duration
}

// VerifierOption configures a TokenVerifier.
type VerifierOption func(*TokenVerifier)

// WithAudience requires the given "aud" claim.
func WithAudience(aud string) VerifierOption {
	return func(v *TokenVerifier) {
		v.audience = aud
	}
}

// WithLeeway tolerates clock skew when checking exp/nbf.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *TokenVerifier) {
		v.leeway = d
	}
}

func NewTokenVerifier(signingKey string, opts ...VerifierOption) *TokenVerifier {
	v := &TokenVerifier{signingKey: []byte(signingKey)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates signature and expiry and returns the caller.
func (v *TokenVerifier) Verify(tokenString string) (*models.Principal, error) {
	if len(v.signingKey) == 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token verification is not configured")
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}

	return &models.Principal{
		Subject: claims.Subject,
		Email:   models.NormalizeEmail(claims.Email),
		Role:    claims.Role(),
	}, nil
}

// IssueParams describes a token minted by Issue.
type IssueParams struct {
	Subject  string
	Email    string
	Role     string
	Audience string
	TTL      time.Duration
}

// Issue signs a session token in the directory's format. Used by local
// tooling and tests; production tokens come from the directory itself.
func Issue(signingKey string, p IssueParams, now time.Time) (string, error) {
	if signingKey == "" {
		return "", fmt.Errorf("signing key is required")
	}
	claims := Claims{
		Email:       p.Email,
		AppMetadata: map[string]any{models.MetaRole: p.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
		},
	}
	if p.Audience != "" {
		claims.Audience = jwt.ClaimStrings{p.Audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

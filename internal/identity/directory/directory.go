// Package directory talks to the external authentication directory: listing,
// creating, and updating accounts and generating one-time action links.
package directory

import (
	"context"

	"memberlink/internal/identity/models"
)

// Directory is the admin surface of the authentication directory.
// Implementations return sentinel errors (ErrNotFound, ErrAlreadyUsed,
// ErrUnauthorized, ErrRateLimited, ErrUnavailable), optionally wrapped.
type Directory interface {
	// ListAccounts returns one page of accounts. Pages are 1-based.
	ListAccounts(ctx context.Context, page, perPage int) ([]models.AuthAccount, error)
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.AuthAccount, error)
	// UpdateUserMetadata replaces the account's user metadata with meta.
	UpdateUserMetadata(ctx context.Context, accountID string, meta map[string]any) (*models.AuthAccount, error)
	// GenerateLink returns a one-time action link. An invite link creates the
	// account when it does not exist yet.
	GenerateLink(ctx context.Context, params GenerateLinkParams) (*ActionLink, error)
}

type CreateAccountParams struct {
	Email        string
	EmailConfirm bool
	UserMetadata map[string]any
	AppMetadata  map[string]any
}

type GenerateLinkParams struct {
	Kind       models.LinkKind
	Email      string
	Data       map[string]any
	RedirectTo string
}

// ActionLink is a one-time URL together with the account it acts on.
type ActionLink struct {
	URL     string
	Account models.AuthAccount
}

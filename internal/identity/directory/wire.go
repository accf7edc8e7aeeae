package directory

import (
	"time"

	"memberlink/internal/identity/models"
)

// Wire types of the directory admin API. They are shared with directorytest so
// the fake server speaks exactly what the client expects.

type WireAccount struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud,omitempty"`
	Email            string         `json:"email"`
	ConfirmedAt      *time.Time     `json:"confirmed_at,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	InvitedAt        *time.Time     `json:"invited_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	AppMetadata      map[string]any `json:"app_metadata"`
}

type ListResponse struct {
	Users []WireAccount `json:"users"`
	Aud   string        `json:"aud,omitempty"`
}

type CreateAccountRequest struct {
	Email        string         `json:"email"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
}

type UpdateAccountRequest struct {
	UserMetadata map[string]any `json:"user_metadata"`
}

type GenerateLinkRequest struct {
	Type       string         `json:"type"`
	Email      string         `json:"email"`
	Data       map[string]any `json:"data,omitempty"`
	RedirectTo string         `json:"redirect_to,omitempty"`
}

// GenerateLinkResponse is the account object with the link properties inlined.
type GenerateLinkResponse struct {
	WireAccount
	ActionLink       string `json:"action_link"`
	EmailOTP         string `json:"email_otp,omitempty"`
	HashedToken      string `json:"hashed_token,omitempty"`
	VerificationType string `json:"verification_type,omitempty"`
	RedirectTo       string `json:"redirect_to,omitempty"`
}

// WireError covers the error shapes the directory has used across versions.
type WireError struct {
	Code             int    `json:"code,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	Msg              string `json:"msg,omitempty"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (e WireError) Text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ToAccount converts a wire account into the domain type.
func (w WireAccount) ToAccount() models.AuthAccount {
	confirmed := w.ConfirmedAt
	if confirmed == nil {
		confirmed = w.EmailConfirmedAt
	}
	return models.AuthAccount{
		ID:           w.ID,
		Email:        models.NormalizeEmail(w.Email),
		ConfirmedAt:  confirmed,
		InvitedAt:    w.InvitedAt,
		CreatedAt:    w.CreatedAt,
		UserMetadata: w.UserMetadata,
		AppMetadata:  w.AppMetadata,
	}
}

// FromAccount converts a domain account into its wire form.
func FromAccount(a models.AuthAccount) WireAccount {
	return WireAccount{
		ID:               a.ID,
		Aud:              "authenticated",
		Email:            a.Email,
		ConfirmedAt:      a.ConfirmedAt,
		EmailConfirmedAt: a.ConfirmedAt,
		InvitedAt:        a.InvitedAt,
		CreatedAt:        a.CreatedAt,
		UserMetadata:     a.UserMetadata,
		AppMetadata:      a.AppMetadata,
	}
}

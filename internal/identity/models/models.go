// Package models holds the entities shared by the directory, registry, and
// the reconciliation engine.
package models

import (
	"strings"
	"time"
)

// Metadata keys written to and read from directory accounts.
const (
	MetaFullName             = "full_name"
	MetaName                 = "name"
	MetaRole                 = "role"
	MetaNeedsCredentialReset = "needs_credential_reset"
	MetaMigrated             = "migrated"
)

// NormalizeEmail is the cross-store natural key: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LocalPart returns the part of an email before the "@".
func LocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// AuthAccount is an account in the external authentication directory.
// The directory owns it; the engine never deletes one or invents its ID.
type AuthAccount struct {
	ID           string
	Email        string
	ConfirmedAt  *time.Time
	InvitedAt    *time.Time
	CreatedAt    time.Time
	UserMetadata map[string]any
	AppMetadata  map[string]any
}

// NormalizedEmail returns the account email as a registry key.
func (a *AuthAccount) NormalizedEmail() string {
	return NormalizeEmail(a.Email)
}

// IsConfirmed reports whether the account holder has accepted an invite or confirmed their email.
func (a *AuthAccount) IsConfirmed() bool {
	return a.ConfirmedAt != nil && !a.ConfirmedAt.IsZero()
}

// Role prefers the server-controlled app metadata over user metadata.
func (a *AuthAccount) Role() string {
	if role := metaString(a.AppMetadata, MetaRole); role != "" {
		return role
	}
	return metaString(a.UserMetadata, MetaRole)
}

// DisplayName falls back from full_name to name to the email local part.
func (a *AuthAccount) DisplayName() string {
	if name := metaString(a.UserMetadata, MetaFullName); name != "" {
		return name
	}
	if name := metaString(a.UserMetadata, MetaName); name != "" {
		return name
	}
	return LocalPart(a.NormalizedEmail())
}

// IsMigrated reports whether the account was created or flagged by a legacy migration
// and still has to set a new password.
func (a *AuthAccount) IsMigrated() bool {
	return metaBool(a.UserMetadata, MetaMigrated) && metaBool(a.UserMetadata, MetaNeedsCredentialReset)
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func metaBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

// MemberStatus is the staff-controlled participation state of a member.
type MemberStatus string

const (
	// MemberStatusActive marks members confirmed as active participants by staff.
	MemberStatusActive MemberStatus = "active"
	// MemberStatusInactive marks members who have credentials but have never been confirmed by staff.
	MemberStatusInactive MemberStatus = "inactive"
)

// MemberRecord is a row of the internal member registry.
type MemberRecord struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Status    MemberStatus
	AccountID string
	CreatedAt time.Time
}

// NormalizedEmail returns the member email as a directory key.
func (m *MemberRecord) NormalizedEmail() string {
	return NormalizeEmail(m.Email)
}

// IsLinked reports whether the record references an account.
func (m *MemberRecord) IsLinked() bool {
	return m.AccountID != ""
}

// RosterEntry is one legacy user supplied to a migration run.
type RosterEntry struct {
	Name  string `json:"name" toml:"name"`
	Email string `json:"email" toml:"email"`
	Role  string `json:"role,omitempty" toml:"role"`
}

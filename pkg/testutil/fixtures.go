package testutil

import (
	"time"

	"memberlink/internal/identity/models"
)

// FixedTime is a stable timestamp for fixtures.
var FixedTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Account builds a directory account fixture.
func Account(id, email string, confirmed bool) models.AuthAccount {
	a := models.AuthAccount{
		ID:           id,
		Email:        email,
		CreatedAt:    FixedTime,
		UserMetadata: map[string]any{},
		AppMetadata:  map[string]any{},
	}
	if confirmed {
		t := FixedTime
		a.ConfirmedAt = &t
	}
	return a
}

// Member builds an unlinked active member fixture.
func Member(id, email, name, role string) models.MemberRecord {
	return models.MemberRecord{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    models.MemberStatusActive,
		CreatedAt: FixedTime,
	}
}

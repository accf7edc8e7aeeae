package principal

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MigrationSecret matches the shared migration secret against its bcrypt hash.
type MigrationSecret struct {
	hash []byte
}

// NewMigrationSecret accepts an empty hash, which disables the secret.
func NewMigrationSecret(hash string) (*MigrationSecret, error) {
	if hash == "" {
		return &MigrationSecret{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid migration secret hash: %w", err)
	}
	return &MigrationSecret{hash: []byte(hash)}, nil
}

// HashMigrationSecret produces a value suitable for MIGRATION_SECRET_HASH.
func HashMigrationSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash migration secret: %w", err)
	}
	return string(h), nil
}

func (s *MigrationSecret) Enabled() bool {
	return s != nil && len(s.hash) > 0
}

// Matches reports whether token is the migration secret.
func (s *MigrationSecret) Matches(token string) bool {
	if !s.Enabled() || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.hash, []byte(token)) == nil
}

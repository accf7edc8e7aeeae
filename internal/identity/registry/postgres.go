package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"memberlink/internal/identity/models"
	"memberlink/pkg/platform/sentinel"
)

// PostgresStore persists members in PostgreSQL. A unique index on
// lower(email) backs the uniqueness guarantee.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.MemberRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, role, status, account_id, created_at
		FROM members
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var records []models.MemberRecord
	for rows.Next() {
		rec, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.MemberRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, status, account_id, created_at
		FROM members
		WHERE lower(email) = lower($1)
	`, models.NormalizeEmail(email))
	rec, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member by email: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, record *models.MemberRecord) error {
	if record == nil {
		return fmt.Errorf("member record is required")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.MemberStatusInactive
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.Email = models.NormalizeEmail(record.Email)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, email, name, role, status, account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`,
		record.ID,
		record.Email,
		record.Name,
		record.Role,
		string(record.Status),
		nullString(record.AccountID),
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("member email must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (s *PostgresStore) LinkAccount(ctx context.Context, memberID, accountID string) error {
	return s.update(ctx, "link member account", `
		UPDATE members SET account_id = $2, updated_at = NOW() WHERE id = $1
	`, memberID, accountID)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, memberID string, status models.MemberStatus) error {
	return s.update(ctx, "update member status", `
		UPDATE members SET status = $2, updated_at = NOW() WHERE id = $1
	`, memberID, string(status))
}

func (s *PostgresStore) update(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type memberRow interface {
	Scan(dest ...any) error
}

func scanMember(row memberRow) (*models.MemberRecord, error) {
	var rec models.MemberRecord
	var status string
	var accountID sql.NullString
	if err := row.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.Role, &status, &accountID, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Status = models.MemberStatus(status)
	rec.AccountID = accountID.String
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ Store = (*PostgresStore)(nil)

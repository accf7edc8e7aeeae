package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}
	query := `
		INSERT INTO audit_events (id, action, run_id, actor, email, account_id, member_id, dry_run, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		event.RunID,
		event.Actor,
		event.Email,
		event.AccountID,
		event.MemberID,
		event.DryRun,
		detail,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]Event, error) {
	return s.list(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) ListByRun(ctx context.Context, runID string) ([]Event, error) {
	return s.list(ctx, `WHERE run_id = $1`, runID)
}

func (s *PostgresStore) list(ctx context.Context, where string, arg any) ([]Event, error) {
	query := `
		SELECT id, action, run_id, actor, email, account_id, member_id, dry_run, detail, created_at
		FROM audit_events ` + where + `
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action string
		var detail []byte
		if err := rows.Scan(&e.ID, &action, &e.RunID, &e.Actor, &e.Email, &e.AccountID, &e.MemberID, &e.DryRun, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = AuditEvent(action)
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

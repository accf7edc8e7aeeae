package mailer

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type HistoryStatus string

const (
	HistorySent   HistoryStatus = "sent"
	HistoryFailed HistoryStatus = "failed"
)

// HistoryEntry is one send attempt.
type HistoryEntry struct {
	ID        string
	Kind      Kind
	Recipient string
	Subject   string
	Status    HistoryStatus
	Error     string
	RunID     string
	SentAt    time.Time
}

// HistoryRecorder stores send attempts. Failures are logged by the
// dispatcher and never fail a send.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

type InMemoryHistory struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{}
}

func (h *InMemoryHistory) Record(_ context.Context, entry HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *InMemoryHistory) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryEntry{}, h.entries...)
}

// PostgresHistory writes to the email_history table.
type PostgresHistory struct {
	db *sql.DB
}

func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{db: db}
}

func (h *PostgresHistory) Record(ctx context.Context, entry HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO email_history (id, email_type, recipient, subject, status, error_message, run_id, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID,
		string(entry.Kind),
		entry.Recipient,
		entry.Subject,
		string(entry.Status),
		sql.NullString{String: entry.Error, Valid: entry.Error != ""},
		sql.NullString{String: entry.RunID, Valid: entry.RunID != ""},
		entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert email history: %w", err)
	}
	return nil
}

package audit

import "time"

// Event is emitted from sync runs to capture every mutation and every run.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    AuditEvent     `json:"action"`
	RunID     string         `json:"run_id,omitempty"`
	Actor     string         `json:"actor,omitempty"`
	Email     string         `json:"email,omitempty"`
	AccountID string         `json:"account_id,omitempty"`
	MemberID  string         `json:"member_id,omitempty"`
	DryRun    bool           `json:"dry_run"`
	Detail    map[string]any `json:"detail,omitempty"`
}

type AuditEvent string

const (
	EventMemberCreated    AuditEvent = "member_created"
	EventAccountInvited   AuditEvent = "account_invited"
	EventMemberLinked     AuditEvent = "member_linked"
	EventAccountFlagged   AuditEvent = "account_flagged"
	EventAccountMigrated  AuditEvent = "account_migrated"
	EventInviteResent     AuditEvent = "invite_resent"
	EventSyncRunCompleted AuditEvent = "sync_run_completed"
)

package handler

import (
	"time"

	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/reconcile"
	"memberlink/internal/identity/report"
)

type ReconcileResponse struct {
	Success   bool             `json:"success"`
	DryRun    bool             `json:"dryRun"`
	Truncated bool             `json:"truncated"`
	Summary   ReconcileSummary `json:"summary"`
	Outcomes  map[string]int   `json:"outcomes"`
	Details   ReconcileDetails `json:"details"`
}

type ReconcileSummary struct {
	TotalMembers      int `json:"totalMembers"`
	TotalAuthUsers    int `json:"totalAuthUsers"`
	AuthUsersImported int `json:"authUsersImported"`
	MembersInvited    int `json:"membersInvited"`
	MembersLinked     int `json:"membersLinked"`
	AlreadyConsistent int `json:"alreadyConsistent"`
	Errors            int `json:"errors"`
}

type ReconcileDetails struct {
	AuthUsersImported []string           `json:"authUsersImported"`
	MembersInvited    []string           `json:"membersInvited"`
	MembersLinked     []string           `json:"membersLinked"`
	Errors            []models.ItemError `json:"errors"`
	Skipped           []string           `json:"skipped"`
}

func toReconcileResponse(r *report.Report) ReconcileResponse {
	outcomes := make(map[string]int, len(models.Outcomes))
	for _, o := range models.Outcomes {
		outcomes[string(o)] = r.Counts[o]
	}
	return ReconcileResponse{
		Success:   true,
		DryRun:    r.DryRun,
		Truncated: r.Truncated,
		Summary: ReconcileSummary{
			TotalMembers:      r.TotalMembers,
			TotalAuthUsers:    r.TotalAccounts,
			AuthUsersImported: r.AppliedCount(models.OutcomeRegistryCreated),
			MembersInvited:    r.AppliedCount(models.OutcomeAccountInvited),
			MembersLinked:     r.AppliedCount(models.OutcomeLinked),
			AlreadyConsistent: r.AppliedCount(models.OutcomeAlreadyConsistent),
			Errors:            len(r.Errors),
		},
		Outcomes: outcomes,
		Details: ReconcileDetails{
			AuthUsersImported: nonNil(r.Applied[models.OutcomeRegistryCreated]),
			MembersInvited:    nonNil(r.Applied[models.OutcomeAccountInvited]),
			MembersLinked:     nonNil(r.Applied[models.OutcomeLinked]),
			Errors:            nonNil(r.Errors),
			Skipped:           nonNil(r.Skipped),
		},
	}
}

type MigrateResponse struct {
	Success    bool           `json:"success"`
	DryRun     bool           `json:"dryRun"`
	SendEmails bool           `json:"sendEmails"`
	Truncated  bool           `json:"truncated"`
	Results    MigrateResults `json:"results"`
}

type MigrateResults struct {
	Total                    int      `json:"total"`
	AlreadyInSupabase        int      `json:"alreadyInSupabase"`
	NeedsMigration           int      `json:"needsMigration"`
	Migrated                 int      `json:"migrated"`
	FlaggedForPasswordChange int      `json:"flaggedForPasswordChange"`
	EmailsSent               int      `json:"emailsSent"`
	Errors                   []string `json:"errors"`
	Skipped                  []string `json:"skipped"`
}

func toMigrateResponse(r *migrate.Result) MigrateResponse {
	return MigrateResponse{
		Success:    true,
		DryRun:     r.DryRun,
		SendEmails: r.SendEmails,
		Truncated:  r.Truncated,
		Results: MigrateResults{
			Total:                    r.Total,
			AlreadyInSupabase:        r.AlreadyPresent,
			NeedsMigration:           r.NeedsMigration,
			Migrated:                 r.Migrated,
			FlaggedForPasswordChange: r.FlaggedForPasswordChange,
			EmailsSent:               r.EmailsSent,
			Errors:                   nonNil(r.Errors),
			Skipped:                  nonNil(r.Skipped),
		},
	}
}

type BackupResponse struct {
	Success   bool         `json:"success"`
	Timestamp time.Time    `json:"timestamp"`
	Count     int          `json:"count"`
	Users     []BackupUser `json:"users"`
}

type BackupUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name,omitempty"`
	Role             string         `json:"role,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	AppMetadata      map[string]any `json:"app_metadata"`
}

func toBackupResponse(b *migrate.Backup) BackupResponse {
	users := make([]BackupUser, len(b.Accounts))
	for i, a := range b.Accounts {
		name := ""
		if v, ok := a.UserMetadata[models.MetaFullName].(string); ok && v != "" {
			name = v
		} else if v, ok := a.UserMetadata[models.MetaName].(string); ok {
			name = v
		}
		role, _ := a.AppMetadata[models.MetaRole].(string)
		users[i] = BackupUser{
			ID:               a.ID,
			Email:            a.Email,
			Name:             name,
			Role:             role,
			CreatedAt:        a.CreatedAt,
			EmailConfirmedAt: a.ConfirmedAt,
			UserMetadata:     a.UserMetadata,
			AppMetadata:      a.AppMetadata,
		}
	}
	return BackupResponse{Success: true, Timestamp: b.Timestamp, Count: b.Count(), Users: users}
}

type ResendResponse struct {
	Success      bool               `json:"success"`
	DryRun       bool               `json:"dryRun"`
	Truncated    bool               `json:"truncated"`
	TotalUsers   int                `json:"totalUsers"`
	PendingCount int                `json:"pendingCount"`
	Resent       int                `json:"resent"`
	Errors       []models.ItemError `json:"errors"`
	Skipped      []string           `json:"skipped"`
	Pending      []PendingUser      `json:"pending"`
}

type PendingUser struct {
	Email     string     `json:"email"`
	InvitedAt *time.Time `json:"invited_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func toResendResponse(r *reconcile.ResendReport) ResendResponse {
	pending := make([]PendingUser, len(r.Pending))
	for i, a := range r.Pending {
		pending[i] = PendingUser{Email: a.Email, InvitedAt: a.InvitedAt, CreatedAt: a.CreatedAt}
	}
	return ResendResponse{
		Success:      true,
		DryRun:       r.DryRun,
		Truncated:    r.Truncated,
		TotalUsers:   r.TotalAccounts,
		PendingCount: len(r.Pending),
		Resent:       len(r.Resent),
		Errors:       nonNil(r.Errors),
		Skipped:      nonNil(r.Skipped),
		Pending:      pending,
	}
}

type MigrationStatusResponse struct {
	Exists     bool `json:"exists"`
	IsMigrated bool `json:"isMigrated"`
}

// nonNil keeps empty lists as [] rather than null in responses.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

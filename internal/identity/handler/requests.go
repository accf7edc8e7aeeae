package handler

import (
	"fmt"
	"strings"

	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/reconcile"
	dErrors "memberlink/pkg/domain-errors"
	"memberlink/pkg/platform/validation"
	s "memberlink/pkg/string"
	requestvalidation "memberlink/pkg/validation"
)

// Actions accepted by POST /identity/sync.
const (
	ActionBackup    = migrate.ActionBackup
	ActionMigrate   = migrate.ActionMigrate
	ActionReconcile = reconcile.ActionReconcile
	ActionResend    = reconcile.ActionResend
)

// allowedRoles maps each action to the roles that may run it.
var allowedRoles = map[string][]string{
	ActionBackup:    {models.RoleAdmin, models.RoleMigration},
	ActionMigrate:   {models.RoleAdmin, models.RoleMigration},
	ActionReconcile: {models.RoleAdmin, models.RoleExecutive},
	ActionResend:    {models.RoleAdmin, models.RoleExecutive},
}

// SyncRequest is the body of POST /identity/sync. Every field is optional.
type SyncRequest struct {
	Action string `json:"action"`
	// DryRun defaults to true for migrate and false otherwise.
	DryRun     *bool         `json:"dryRun"`
	SendEmails bool          `json:"sendEmails"`
	Members    []MemberInput `json:"members" validate:"omitempty,dive"`
}

type MemberInput struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role,omitempty" validate:"omitempty,max=50"`
}

func (r *SyncRequest) Normalize() {
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	if r.Action == "" {
		r.Action = ActionReconcile
	}
	for i := range r.Members {
		m := &r.Members[i]
		s.TrimStrings(&m.Name, &m.Email, &m.Role)
	}
}

// ResolveAction returns the normalized action, or a bad request error for an
// unknown one. It runs before the role check since roles depend on it.
func (r *SyncRequest) ResolveAction() (string, error) {
	if _, ok := allowedRoles[r.Action]; !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown action %q", r.Action))
	}
	return r.Action, nil
}

func (r *SyncRequest) Validate() error {
	if err := validation.CheckSliceCount("members", len(r.Members), validation.MaxRosterEntries); err != nil {
		return err
	}
	return requestvalidation.Validate(r)
}

// IsDryRun applies the per-action default.
func (r *SyncRequest) IsDryRun() bool {
	if r.DryRun != nil {
		return *r.DryRun
	}
	return r.Action == ActionMigrate
}

func (r *SyncRequest) Roster() []models.RosterEntry {
	if len(r.Members) == 0 {
		return nil
	}
	out := make([]models.RosterEntry, len(r.Members))
	for i, m := range r.Members {
		out[i] = models.RosterEntry{Name: m.Name, Email: m.Email, Role: m.Role}
	}
	return out
}

package models

// Roles recognized by the sync endpoint.
const (
	RoleAdmin     = "admin"
	RoleExecutive = "executive"
	RoleOfficial  = "official"
	// RoleMigration is held only by callers presenting the migration secret.
	RoleMigration = "migration"
)

// Principal is the authenticated caller of a run.
type Principal struct {
	Subject string
	Email   string
	Role    string
}

package models

// Outcome classifies one email in a reconciliation run.
type Outcome string

const (
	// OutcomeRegistryCreated: account exists, member record missing.
	OutcomeRegistryCreated Outcome = "registry_created"
	// OutcomeAccountInvited: member record exists, account missing.
	OutcomeAccountInvited Outcome = "account_invited"
	// OutcomeLinked: both exist but the record does not reference the account.
	OutcomeLinked Outcome = "linked"
	// OutcomeAlreadyConsistent: both exist and are linked.
	OutcomeAlreadyConsistent Outcome = "already_consistent"
)

// Outcomes lists every outcome in reporting order.
var Outcomes = []Outcome{
	OutcomeRegistryCreated,
	OutcomeAccountInvited,
	OutcomeLinked,
	OutcomeAlreadyConsistent,
}

// ItemError ties a per-email failure to the email it happened on.
type ItemError struct {
	Email   string `json:"email"`
	Message string `json:"error"`
}

// LinkKind selects which one-time action link the directory generates.
type LinkKind string

const (
	LinkInvite   LinkKind = "invite"
	LinkRecovery LinkKind = "recovery"
)

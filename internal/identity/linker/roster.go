package linker

import (
	"fmt"
	"strings"

	"memberlink/internal/identity/models"
)

// RosterDecision pairs a legacy roster entry with its directory account, if any.
type RosterDecision struct {
	Entry models.RosterEntry
	// Account is nil when the entry still has to be migrated.
	Account *models.AuthAccount
}

func (d RosterDecision) Present() bool {
	return d.Account != nil
}

type RosterPlan struct {
	Decisions []RosterDecision
	Skipped   []string
}

// PlanRoster matches roster entries to accounts using the same email index as
// Plan. The first entry for an email wins; repeats are skipped. Entry emails
// are normalized and an empty role falls back to defaults.Role.
func PlanRoster(entries []models.RosterEntry, accounts []models.AuthAccount, defaults Defaults) *RosterPlan {
	accIdx := indexAccounts(accounts)
	plan := &RosterPlan{}
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		entry := models.RosterEntry{
			Name:  strings.TrimSpace(e.Name),
			Email: models.NormalizeEmail(e.Email),
			Role:  strings.TrimSpace(e.Role),
		}
		if entry.Role == "" {
			entry.Role = defaults.Role
		}
		if _, dup := seen[entry.Email]; dup {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: duplicate roster entry", entry.Email))
			continue
		}
		seen[entry.Email] = struct{}{}

		if accIdx.dup[entry.Email] {
			plan.Skipped = append(plan.Skipped, fmt.Sprintf("%s: duplicate directory accounts", entry.Email))
			continue
		}
		plan.Decisions = append(plan.Decisions, RosterDecision{Entry: entry, Account: accIdx.byEmail[entry.Email]})
	}
	return plan
}

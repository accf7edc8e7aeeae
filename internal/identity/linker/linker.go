// Package linker joins directory accounts and registry records by normalized
// email and decides what each email needs. It performs no I/O.
package linker

import (
	"fmt"

	"memberlink/internal/identity/models"
)

// Defaults fills fields the directory cannot supply.
type Defaults struct {
	Role string
}

// Decision is the classification of one email.
type Decision struct {
	Email   string
	Outcome models.Outcome
	// Account is nil for OutcomeAccountInvited.
	Account *models.AuthAccount
	// Member is synthesized for OutcomeRegistryCreated.
	Member *models.MemberRecord
}

// ReconcilePlan is the ordered set of decisions for one run.
type ReconcilePlan struct {
	Decisions []Decision
	// Skipped lists emails that could not be classified, with a reason.
	Skipped []string
	Counts  map[models.Outcome]int
}

// Plan classifies every email found in either snapshot. Account-only emails
// come first in directory order, then registry emails in registry order.
// Emails that appear more than once in a snapshot are skipped entirely since
// no single record can be trusted for them.
func Plan(accounts []models.AuthAccount, members []models.MemberRecord, defaults Defaults) *ReconcilePlan {
	plan := &ReconcilePlan{Counts: make(map[models.Outcome]int, len(models.Outcomes))}
	for _, o := range models.Outcomes {
		plan.Counts[o] = 0
	}

	accIdx := indexAccounts(accounts)
	memIdx := indexMembers(members)
	plan.Skipped = append(plan.Skipped, accIdx.skipped...)
	plan.Skipped = append(plan.Skipped, memIdx.skipped...)

	for _, email := range accIdx.order {
		if accIdx.dup[email] || memIdx.dup[email] {
			continue
		}
		if _, ok := memIdx.byEmail[email]; ok {
			continue
		}
		acc := accIdx.byEmail[email]
		plan.add(Decision{
			Email:   email,
			Outcome: models.OutcomeRegistryCreated,
			Account: acc,
			Member: &models.MemberRecord{
				Email:     email,
				Name:      acc.DisplayName(),
				Role:      defaults.Role,
				Status:    models.MemberStatusInactive,
				AccountID: acc.ID,
			},
		})
	}

	for _, email := range memIdx.order {
		if accIdx.dup[email] || memIdx.dup[email] {
			continue
		}
		member := memIdx.byEmail[email]
		acc, ok := accIdx.byEmail[email]
		switch {
		case !ok:
			plan.add(Decision{Email: email, Outcome: models.OutcomeAccountInvited, Member: member})
		case member.AccountID != acc.ID:
			plan.add(Decision{Email: email, Outcome: models.OutcomeLinked, Account: acc, Member: member})
		default:
			plan.add(Decision{Email: email, Outcome: models.OutcomeAlreadyConsistent, Account: acc, Member: member})
		}
	}
	return plan
}

func (p *ReconcilePlan) add(d Decision) {
	p.Decisions = append(p.Decisions, d)
	p.Counts[d.Outcome]++
}

type accountIndex struct {
	byEmail map[string]*models.AuthAccount
	order   []string
	dup     map[string]bool
	skipped []string
}

// indexAccounts keys accounts by normalized email. Emails with several
// accounts are marked dup and reported once.
func indexAccounts(accounts []models.AuthAccount) accountIndex {
	idx := accountIndex{
		byEmail: make(map[string]*models.AuthAccount, len(accounts)),
		dup:     make(map[string]bool),
	}
	for i := range accounts {
		acc := &accounts[i]
		email := acc.NormalizedEmail()
		if email == "" {
			idx.skipped = append(idx.skipped, fmt.Sprintf("account %s: missing email", acc.ID))
			continue
		}
		if _, seen := idx.byEmail[email]; seen {
			if !idx.dup[email] {
				idx.dup[email] = true
				idx.skipped = append(idx.skipped, fmt.Sprintf("%s: duplicate directory accounts", email))
			}
			continue
		}
		idx.byEmail[email] = acc
		idx.order = append(idx.order, email)
	}
	return idx
}

type memberIndex struct {
	byEmail map[string]*models.MemberRecord
	order   []string
	dup     map[string]bool
	skipped []string
}

func indexMembers(members []models.MemberRecord) memberIndex {
	idx := memberIndex{
		byEmail: make(map[string]*models.MemberRecord, len(members)),
		dup:     make(map[string]bool),
	}
	for i := range members {
		m := &members[i]
		email := m.NormalizedEmail()
		if email == "" {
			idx.skipped = append(idx.skipped, fmt.Sprintf("member %s: missing email", m.ID))
			continue
		}
		if _, seen := idx.byEmail[email]; seen {
			if !idx.dup[email] {
				idx.dup[email] = true
				idx.skipped = append(idx.skipped, fmt.Sprintf("%s: duplicate registry records", email))
			}
			continue
		}
		idx.byEmail[email] = m
		idx.order = append(idx.order, email)
	}
	return idx
}

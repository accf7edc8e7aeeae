package e2e

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"memberlink/internal/identity/handler"
	"memberlink/internal/identity/models"
	"memberlink/internal/identity/principal"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Environment
	ctx.Step(`^the directory has confirmed accounts? "([^"]*)"$`, tc.directoryHasConfirmedAccounts)
	ctx.Step(`^the directory has a pending invite for "([^"]*)"$`, tc.directoryHasPendingInvite)
	ctx.Step(`^the registry has members? "([^"]*)"$`, tc.registryHasMembers)
	ctx.Step(`^the mail relay is not configured$`, tc.mailRelayNotConfigured)

	// Credentials
	ctx.Step(`^I am signed in as an? "([^"]*)"$`, tc.signedInAs)
	ctx.Step(`^I present the migration secret$`, tc.presentMigrationSecret)
	ctx.Step(`^I am not signed in$`, tc.notSignedIn)

	// Requests
	ctx.Step(`^I run the "([^"]*)" action$`, tc.runAction)
	ctx.Step(`^I run the "([^"]*)" action as a dry run$`, tc.runActionDry)
	ctx.Step(`^I run the "([^"]*)" action live$`, tc.runActionLive)
	ctx.Step(`^I migrate these members:$`, tc.migrateMembers)
	ctx.Step(`^I migrate these members live with emails:$`, tc.migrateMembersLive)
	ctx.Step(`^I check the migration status of "([^"]*)"$`, tc.checkMigrationStatus)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^"([^"]*)" should have received an? "([^"]*)" email$`, tc.shouldHaveReceivedEmail)
	ctx.Step(`^no emails should have been sent$`, tc.noEmailsSent)
	ctx.Step(`^the registry should link "([^"]*)" to its account$`, tc.registryShouldLink)
	ctx.Step(`^the registry should have (\d+) members?$`, tc.registryShouldHaveMembers)
}

func splitEmails(list string) []string {
	var out []string
	for _, e := range strings.Split(list, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (tc *TestContext) directoryHasConfirmedAccounts(_ context.Context, list string) error {
	now := time.Now().UTC()
	for _, email := range splitEmails(list) {
		tc.Directory.Seed(models.AuthAccount{
			Email:        email,
			ConfirmedAt:  &now,
			UserMetadata: map[string]any{models.MetaFullName: models.LocalPart(email)},
		})
	}
	return nil
}

func (tc *TestContext) directoryHasPendingInvite(_ context.Context, email string) error {
	invited := time.Now().UTC().Add(-48 * time.Hour)
	tc.Directory.Seed(models.AuthAccount{Email: email, InvitedAt: &invited})
	return nil
}

func (tc *TestContext) registryHasMembers(_ context.Context, list string) error {
	for _, email := range splitEmails(list) {
		tc.Registry.Seed(models.MemberRecord{
			Email:  email,
			Name:   models.LocalPart(email),
			Role:   models.RoleOfficial,
			Status: models.MemberStatusActive,
		})
	}
	return nil
}

func (tc *TestContext) mailRelayNotConfigured(context.Context) error {
	if tc.server != nil {
		return fmt.Errorf("relay must be configured before the first request")
	}
	tc.relayConfigured = false
	return nil
}

func (tc *TestContext) signedInAs(_ context.Context, role string) error {
	email := role + "@club.org"
	token, err := principal.Issue(jwtSecret, principal.IssueParams{
		Subject: "acct-" + role,
		Email:   email,
		Role:    role,
		TTL:     time.Hour,
	}, time.Now())
	if err != nil {
		return err
	}
	tc.authHeader = "Bearer " + token
	return nil
}

func (tc *TestContext) presentMigrationSecret(context.Context) error {
	tc.authHeader = "Bearer " + migrationSecret
	return nil
}

func (tc *TestContext) notSignedIn(context.Context) error {
	tc.authHeader = ""
	return nil
}

func (tc *TestContext) runAction(_ context.Context, action string) error {
	return tc.POST("/identity/sync", map[string]any{"action": action})
}

func (tc *TestContext) runActionDry(_ context.Context, action string) error {
	return tc.POST("/identity/sync", map[string]any{"action": action, "dryRun": true})
}

func (tc *TestContext) runActionLive(_ context.Context, action string) error {
	return tc.POST("/identity/sync", map[string]any{"action": action, "dryRun": false})
}

func membersFromTable(table *godog.Table) ([]handler.MemberInput, error) {
	if len(table.Rows) < 2 {
		return nil, fmt.Errorf("table needs a header and at least one row")
	}
	cols := map[string]int{}
	for i, cell := range table.Rows[0].Cells {
		cols[cell.Value] = i
	}
	get := func(row int, col string) string {
		cells := table.Rows[row].Cells
		if i, ok := cols[col]; ok && i < len(cells) {
			return cells[i].Value
		}
		return ""
	}
	members := make([]handler.MemberInput, 0, len(table.Rows)-1)
	for row := 1; row < len(table.Rows); row++ {
		members = append(members, handler.MemberInput{
			Name:  get(row, "name"),
			Email: get(row, "email"),
			Role:  get(row, "role"),
		})
	}
	return members, nil
}

func (tc *TestContext) migrateMembers(_ context.Context, table *godog.Table) error {
	members, err := membersFromTable(table)
	if err != nil {
		return err
	}
	return tc.POST("/identity/sync", map[string]any{"action": "migrate", "members": members})
}

func (tc *TestContext) migrateMembersLive(_ context.Context, table *godog.Table) error {
	members, err := membersFromTable(table)
	if err != nil {
		return err
	}
	return tc.POST("/identity/sync", map[string]any{
		"action":     "migrate",
		"dryRun":     false,
		"sendEmails": true,
		"members":    members,
	})
}

func (tc *TestContext) checkMigrationStatus(_ context.Context, email string) error {
	return tc.GET("/identity/migration-status?email=" + email)
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, expected int) error {
	if got := tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseShouldContain(_ context.Context, text string) error {
	if !strings.Contains(string(tc.LastResponseBody), text) {
		return fmt.Errorf("response does not contain %q: %s", text, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	v, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := formatValue(v); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

// formatValue renders JSON numbers without a trailing ".0".
func formatValue(v any) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

func (tc *TestContext) shouldHaveReceivedEmail(_ context.Context, email, kind string) error {
	for _, msg := range tc.Relay.Sent() {
		if msg.To != email {
			continue
		}
		for _, entry := range tc.History.Entries() {
			if entry.Recipient == email && string(entry.Kind) == kind {
				return nil
			}
		}
	}
	return fmt.Errorf("no %s email delivered to %s", kind, email)
}

func (tc *TestContext) noEmailsSent(context.Context) error {
	if sent := tc.Relay.Sent(); len(sent) > 0 {
		return fmt.Errorf("expected no emails, %d were sent", len(sent))
	}
	return nil
}

func (tc *TestContext) registryShouldLink(ctx context.Context, email string) error {
	var accountID string
	for _, acc := range tc.Directory.Snapshot() {
		if acc.NormalizedEmail() == models.NormalizeEmail(email) {
			accountID = acc.ID
		}
	}
	if accountID == "" {
		return fmt.Errorf("directory has no account for %s", email)
	}
	record, err := tc.Registry.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("registry has no record for %s: %w", email, err)
	}
	if record.AccountID != accountID {
		return fmt.Errorf("record for %s links %q, want %q", email, record.AccountID, accountID)
	}
	return nil
}

func (tc *TestContext) registryShouldHaveMembers(_ context.Context, n int) error {
	if got := len(tc.Registry.Snapshot()); got != n {
		return fmt.Errorf("expected %d registry members, got %d", n, got)
	}
	return nil
}

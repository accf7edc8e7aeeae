package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "memberlink/pkg/domain-errors"
)

func TestSyncRequestDefaults(t *testing.T) {
	yes, no := true, false
	cases := []struct {
		name   string
		req    SyncRequest
		action string
		dryRun bool
	}{
		{"empty body reconciles live", SyncRequest{}, ActionReconcile, false},
		{"migrate defaults to dry run", SyncRequest{Action: "migrate"}, ActionMigrate, true},
		{"migrate can run live", SyncRequest{Action: "MIGRATE", DryRun: &no}, ActionMigrate, false},
		{"resend honours dry run", SyncRequest{Action: "resend", DryRun: &yes}, ActionResend, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			req.Normalize()
			action, err := req.ResolveAction()
			require.NoError(t, err)
			assert.Equal(t, tc.action, action)
			assert.Equal(t, tc.dryRun, req.IsDryRun())
		})
	}
}

func TestSyncRequestUnknownAction(t *testing.T) {
	req := SyncRequest{Action: "wipe"}
	req.Normalize()
	_, err := req.ResolveAction()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestSyncRequestRosterLimit(t *testing.T) {
	req := SyncRequest{Action: "migrate", Members: make([]MemberInput, 5001)}
	for i := range req.Members {
		req.Members[i] = MemberInput{Email: "m@x.org"}
	}
	err := req.Validate()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "too many members")
}

func TestSyncRequestRoster(t *testing.T) {
	req := SyncRequest{Members: []MemberInput{{Name: " Ann ", Email: " ann@x.org ", Role: "admin"}}}
	req.Normalize()
	roster := req.Roster()
	require.Len(t, roster, 1)
	assert.Equal(t, "Ann", roster[0].Name)
	assert.Equal(t, "ann@x.org", roster[0].Email)
	assert.Nil(t, (&SyncRequest{}).Roster())
}

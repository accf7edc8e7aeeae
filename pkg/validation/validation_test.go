package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "memberlink/pkg/domain-errors"
)

type member struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

type request struct {
	Action  string   `json:"action" validate:"omitempty,oneof=backup migrate"`
	Members []member `json:"members" validate:"dive"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  request
		msg  string
	}{
		{"valid", request{Members: []member{{Name: "A", Email: "a@example.com"}}}, ""},
		{"bad action", request{Action: "delete"}, "action must be one of [backup migrate]"},
		{"missing email", request{Members: []member{{Name: "A"}}}, "members[0].email is required"},
		{"invalid email", request{Members: []member{{Name: "A", Email: "a@x.com"}, {Name: "B", Email: "nope"}}}, "members[1].email must be a valid email"},
		{"blank name", request{Members: []member{{Name: "  ", Email: "a@example.com"}}}, "members[0].name must not be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.EqualError(t, err, tt.msg)
		})
	}
}

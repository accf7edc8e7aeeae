package validation

import (
	"fmt"

	dErrors "memberlink/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed sync request body size (1 MB).
	// A full legacy roster fits well below it.
	MaxBodySize = 1 << 20
)

const (
	// MaxRosterEntries is the maximum number of members in one migration request.
	MaxRosterEntries = 5000

	// MaxEmailLength is the maximum length of an email address.
	MaxEmailLength = 255

	// MaxNameLength is the maximum length of a member display name.
	MaxNameLength = 200
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

package validation

import (
	"strings"
	"testing"

	dErrors "memberlink/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

// LimitsSuite checks the boundary of each helper: max passes, max+1 fails.
type LimitsSuite struct {
	suite.Suite
}

func TestLimitsSuite(t *testing.T) {
	suite.Run(t, new(LimitsSuite))
}

func (s *LimitsSuite) TestCheckSliceCount() {
	s.Run("passes when count equals max", func() {
		s.NoError(CheckSliceCount("members", MaxRosterEntries, MaxRosterEntries))
	})

	s.Run("passes when count is zero", func() {
		s.NoError(CheckSliceCount("members", 0, MaxRosterEntries))
	})

	s.Run("fails when count exceeds max", func() {
		err := CheckSliceCount("members", MaxRosterEntries+1, MaxRosterEntries)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "too many members")
	})
}

func (s *LimitsSuite) TestCheckStringLength() {
	s.Run("passes at max", func() {
		s.NoError(CheckStringLength("name", strings.Repeat("a", MaxNameLength), MaxNameLength))
	})

	s.Run("fails above max", func() {
		err := CheckStringLength("members[3].name", strings.Repeat("a", MaxNameLength+1), MaxNameLength)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("members[3].name exceeds max length of 200", err.Error())
	})
}

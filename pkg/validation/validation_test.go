package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "credvault/pkg/domain-errors"
)

type sample struct {
	Name   string `json:"name" validate:"required,notblank"`
	Role   string `json:"role" validate:"oneof=issuer candidate"`
	Months int    `json:"validity_months" validate:"min=0"`
	Ref    string `json:"ref,omitempty" validate:"omitempty,uuid"`
}

func TestValidate(t *testing.T) {
	valid := sample{Name: "Ada", Role: "issuer"}

	t.Run("valid struct passes", func(t *testing.T) {
		assert.NoError(t, Validate(&valid))
	})

	cases := []struct {
		name    string
		mutate  func(*sample)
		message string
	}{
		{"missing field", func(s *sample) { s.Name = "" }, "name is required"},
		{"blank field", func(s *sample) { s.Name = "   " }, "name must not be blank"},
		{"enum", func(s *sample) { s.Role = "admin" }, "role must be one of [issuer candidate]"},
		{"minimum", func(s *sample) { s.Months = -1 }, "validity_months must be at least 0"},
		{"uuid", func(s *sample) { s.Ref = "nope" }, "ref must be a valid uuid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := Validate(&req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestErrorMessageForForeignError(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(assert.AnError))
}

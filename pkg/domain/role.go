package domain

import (
	"strings"

	dErrors "credvault/pkg/domain-errors"
)

// Role is the closed set of parties the system serves. A subject's role is
// fixed at creation and every operation is scoped to exactly one role.
type Role string

const (
	RoleIssuer       Role = "issuer"
	RoleCandidate    Role = "candidate"
	RoleOrganization Role = "organization"
)

// IsValid reports whether r is one of the three supported roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleIssuer, RoleCandidate, RoleOrganization:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes and validates a role at a trust boundary.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role must be one of issuer, candidate, organization")
	}
	return r, nil
}

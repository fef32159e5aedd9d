package validation

import (
	"fmt"

	dErrors "credvault/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum accepted request body (1 MiB).
	MaxBodySize = 1 << 20
)

// Element count limits
const (
	// MaxAttributes is the maximum number of attributes on one certificate.
	MaxAttributes = 50
)

// String length limits
const (
	// MaxContactIDLength is the maximum length of a contact identifier.
	MaxContactIDLength = 255

	// MaxDisplayNameLength is the maximum length of a subject display name.
	MaxDisplayNameLength = 200

	// MaxTitleLength is the maximum length of a certificate title.
	MaxTitleLength = 200

	// MaxAttributeKeyLength is the maximum length of an attribute name.
	MaxAttributeKeyLength = 100

	// MaxSearchQueryLength is the maximum length of a candidate search query.
	MaxSearchQueryLength = 100
)

// CheckCount validates that a collection does not exceed the maximum count.
func CheckCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckKeyLengths validates every key of m against the maximum length.
func CheckKeyLengths[V any](fieldName string, m map[string]V, max int) error {
	for k := range m {
		if len(k) > max {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s key exceeds max length of %d", fieldName, max))
		}
	}
	return nil
}

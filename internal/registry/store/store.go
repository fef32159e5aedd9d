// Package store persists certificates.
//
// Error Contract:
//   - FindByID / FindForShare / Execute return sentinel.ErrNotFound when absent
//   - Save returns sentinel.ErrConflict for a duplicate id and
//     sentinel.ErrInvalidInput when attributes cannot be encoded
//   - Execute returns the validate error unchanged
//   - anything else is a transport failure
package store

import (
	"cmp"
	"slices"

	"credvault/internal/registry/models"
)

// sortNewestFirst orders certificates by IssuedAt descending, then by id for stability.
func sortNewestFirst(certs []*models.Certificate) {
	slices.SortFunc(certs, func(a, b *models.Certificate) int {
		if c := b.IssuedAt.Compare(a.IssuedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

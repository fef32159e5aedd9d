// Package store persists access requests.
//
// Error Contract:
//   - FindByID / FindPending / Execute return sentinel.ErrNotFound when absent
//   - Save returns sentinel.ErrConflict when a pending request already exists
//     for the (certificate, requester) pair
//   - Execute returns the validate error unchanged
//   - anything else is a transport failure
package store

import (
	"cmp"
	"slices"

	"credvault/internal/access/models"
)

func sortNewestFirst(requests []*models.Request) {
	slices.SortFunc(requests, func(a, b *models.Request) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// Package founditem contains the rules for editing registered items.
package founditem

import (
	"github.com/vbonduro/lostfound/internal/core/guard"
	"github.com/vbonduro/lostfound/internal/domain"
)

// CanUpdate evaluates whether an item's details may change.
// Rules:
// - Item must exist
// - Returned items are frozen
func CanUpdate(item *domain.FoundItem, itemID int64) guard.Result {
	if item == nil {
		return guard.Deny(domain.ErrNotFound, "found item %d not found", itemID)
	}
	if item.Status != domain.FoundItemStored {
		return guard.Deny(domain.ErrConflict, "found item %d has been returned and can no longer be edited", itemID)
	}
	return guard.Allow()
}

package vocab

import (
	"context"

	"github.com/wordvault/api/internal/store"
)

// Membership encapsulates the entry-category many-to-many relation on top of
// the store adapter.
type Membership struct {
	store store.Store
}

func NewMembership(s store.Store) *Membership {
	return &Membership{store: s}
}

// Add makes the entry a member of the category. Adding an existing member
// changes nothing.
func (m *Membership) Add(ctx context.Context, userID int64, entryID, categoryID string) error {
	return m.store.AddToCategory(ctx, userID, entryID, categoryID)
}

// Remove drops the entry from the category. Removing a non-member is a no-op.
func (m *Membership) Remove(ctx context.Context, userID int64, entryID, categoryID string) error {
	return m.store.RemoveFromCategory(ctx, userID, entryID, categoryID)
}

// DeleteCategory removes the category record only. Member entries keep their
// (now dangling) reference; nothing cascades.
func (m *Membership) DeleteCategory(ctx context.Context, userID int64, categoryID string) error {
	return m.store.DeleteCategory(ctx, userID, categoryID)
}

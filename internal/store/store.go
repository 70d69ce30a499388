package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wordvault/api/internal/model"
)

// ErrNotFound is returned (wrapped in a WriteError for mutations) when the
// referenced entry or category does not exist for the given user.
var ErrNotFound = errors.New("not found")

// WriteError wraps any create/update/delete rejected by the backing store.
// Write failures are always surfaced to the caller and never retried
// automatically.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func writeErr(op string, err error) error {
	return &WriteError{Op: op, Err: err}
}

// EntryPatch is a partial update of a vocabulary entry. Nil fields are left
// untouched. Category membership changes go through AddToCategory and
// RemoveFromCategory, not through patches.
type EntryPatch struct {
	Word               *string
	PartOfSpeech       *string
	Definition         *string
	ExampleSentence    *string
	ExampleTranslation *string
	Favorite           *bool
}

// Store presents the per-user vocabulary and category collections and
// forwards mutations to the backing document store. All operations are
// scoped to a single owning user; entries are never shared between users.
type Store interface {
	CreateEntry(ctx context.Context, userID int64, entry model.VocabEntry) (model.VocabEntry, error)
	UpdateEntry(ctx context.Context, userID int64, id string, patch EntryPatch) (model.VocabEntry, error)
	DeleteEntry(ctx context.Context, userID int64, id string) error
	ListEntries(ctx context.Context, userID int64) ([]model.VocabEntry, error)

	// AddToCategory and RemoveFromCategory have set-union / set-removal
	// semantics on the entry's CategoryIDs: adding twice is a no-op, as is
	// removing a non-member.
	AddToCategory(ctx context.Context, userID int64, entryID, categoryID string) error
	RemoveFromCategory(ctx context.Context, userID int64, entryID, categoryID string) error

	CreateCategory(ctx context.Context, userID int64, name string) (model.Category, error)
	// DeleteCategory removes the category record only. Entries referencing
	// it keep the dangling id; readers treat it as "unknown category".
	DeleteCategory(ctx context.Context, userID int64, id string) error
	ListCategories(ctx context.Context, userID int64) ([]model.Category, error)

	// EntryFeed and CategoryFeed deliver the full per-user snapshot of the
	// respective collection after every successful mutation. The two feeds
	// are independent; no cross-feed ordering is guaranteed.
	EntryFeed() *EntryFeed
	CategoryFeed() *CategoryFeed
}

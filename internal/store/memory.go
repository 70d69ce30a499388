package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordvault/api/internal/model"
)

// MemoryStore is an in-memory Store used by tests and local tooling. It
// honors the same contract as GormStore, including snapshot publication
// after every successful mutation.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[int64]map[string]model.VocabEntry
	categories map[int64]map[string]model.Category

	entryFeed    *EntryFeed
	categoryFeed *CategoryFeed

	// now is swappable so tests can control server timestamps.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:      make(map[int64]map[string]model.VocabEntry),
		categories:   make(map[int64]map[string]model.Category),
		entryFeed:    NewEntryFeed(),
		categoryFeed: NewCategoryFeed(),
		now:          time.Now,
	}
}

// SetClock replaces the timestamp source. Test use only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) EntryFeed() *EntryFeed {
	return s.entryFeed
}

func (s *MemoryStore) CategoryFeed() *CategoryFeed {
	return s.categoryFeed
}

func (s *MemoryStore) CreateEntry(ctx context.Context, userID int64, entry model.VocabEntry) (model.VocabEntry, error) {
	s.mu.Lock()
	entry.ID = uuid.NewString()
	entry.UserID = userID
	entry.CreatedAt = s.now()
	if entry.CategoryIDs == nil {
		entry.CategoryIDs = []string{}
	}
	if s.entries[userID] == nil {
		s.entries[userID] = make(map[string]model.VocabEntry)
	}
	s.entries[userID][entry.ID] = entry
	snapshot := s.entrySnapshotLocked(userID)
	s.mu.Unlock()

	s.entryFeed.Publish(userID, snapshot)
	return entry, nil
}

func (s *MemoryStore) UpdateEntry(ctx context.Context, userID int64, id string, patch EntryPatch) (model.VocabEntry, error) {
	s.mu.Lock()
	entry, ok := s.entries[userID][id]
	if !ok {
		s.mu.Unlock()
		return model.VocabEntry{}, writeErr("update entry", ErrNotFound)
	}
	if patch.Word != nil {
		entry.Word = *patch.Word
	}
	if patch.PartOfSpeech != nil {
		entry.PartOfSpeech = *patch.PartOfSpeech
	}
	if patch.Definition != nil {
		entry.Definition = *patch.Definition
	}
	if patch.ExampleSentence != nil {
		entry.ExampleSentence = *patch.ExampleSentence
	}
	if patch.ExampleTranslation != nil {
		entry.ExampleTranslation = *patch.ExampleTranslation
	}
	if patch.Favorite != nil {
		entry.Favorite = *patch.Favorite
	}
	s.entries[userID][id] = entry
	snapshot := s.entrySnapshotLocked(userID)
	s.mu.Unlock()

	s.entryFeed.Publish(userID, snapshot)
	return entry, nil
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	if _, ok := s.entries[userID][id]; !ok {
		s.mu.Unlock()
		return writeErr("delete entry", ErrNotFound)
	}
	delete(s.entries[userID], id)
	snapshot := s.entrySnapshotLocked(userID)
	s.mu.Unlock()

	s.entryFeed.Publish(userID, snapshot)
	return nil
}

func (s *MemoryStore) ListEntries(ctx context.Context, userID int64) ([]model.VocabEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entrySnapshotLocked(userID), nil
}

func (s *MemoryStore) AddToCategory(ctx context.Context, userID int64, entryID, categoryID string) error {
	s.mu.Lock()
	entry, ok := s.entries[userID][entryID]
	if !ok {
		s.mu.Unlock()
		return writeErr("add to category", ErrNotFound)
	}
	if !entry.HasCategory(categoryID) {
		ids := append([]string{}, entry.CategoryIDs...)
		entry.CategoryIDs = append(ids, categoryID)
		s.entries[userID][entryID] = entry
	}
	snapshot := s.entrySnapshotLocked(userID)
	s.mu.Unlock()

	s.entryFeed.Publish(userID, snapshot)
	return nil
}

func (s *MemoryStore) RemoveFromCategory(ctx context.Context, userID int64, entryID, categoryID string) error {
	s.mu.Lock()
	entry, ok := s.entries[userID][entryID]
	if !ok {
		s.mu.Unlock()
		return writeErr("remove from category", ErrNotFound)
	}
	kept := make([]string, 0, len(entry.CategoryIDs))
	for _, id := range entry.CategoryIDs {
		if id != categoryID {
			kept = append(kept, id)
		}
	}
	entry.CategoryIDs = kept
	s.entries[userID][entryID] = entry
	snapshot := s.entrySnapshotLocked(userID)
	s.mu.Unlock()

	s.entryFeed.Publish(userID, snapshot)
	return nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, userID int64, name string) (model.Category, error) {
	s.mu.Lock()
	category := model.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.now(),
	}
	if s.categories[userID] == nil {
		s.categories[userID] = make(map[string]model.Category)
	}
	s.categories[userID][category.ID] = category
	snapshot := s.categorySnapshotLocked(userID)
	s.mu.Unlock()

	s.categoryFeed.Publish(userID, snapshot)
	return category, nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	if _, ok := s.categories[userID][id]; !ok {
		s.mu.Unlock()
		return writeErr("delete category", ErrNotFound)
	}
	delete(s.categories[userID], id)
	snapshot := s.categorySnapshotLocked(userID)
	s.mu.Unlock()

	s.categoryFeed.Publish(userID, snapshot)
	return nil
}

func (s *MemoryStore) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categorySnapshotLocked(userID), nil
}

func (s *MemoryStore) entrySnapshotLocked(userID int64) []model.VocabEntry {
	snapshot := make([]model.VocabEntry, 0, len(s.entries[userID]))
	for _, entry := range s.entries[userID] {
		snapshot = append(snapshot, entry)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	return snapshot
}

func (s *MemoryStore) categorySnapshotLocked(userID int64) []model.Category {
	snapshot := make([]model.Category, 0, len(s.categories[userID]))
	for _, category := range s.categories[userID] {
		snapshot = append(snapshot, category)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].CreatedAt.Equal(snapshot[j].CreatedAt) {
			return snapshot[i].ID < snapshot[j].ID
		}
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})
	return snapshot
}

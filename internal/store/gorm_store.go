package store

import (
	"context"
	"log"
	"sync"

	"github.com/wordvault/api/internal/model"
	"gorm.io/gorm"
)

// GormStore is the postgres-backed Store. Reads degrade to the last known
// snapshot on transient errors instead of clearing data for the caller.
type GormStore struct {
	db           *gorm.DB
	entryFeed    *EntryFeed
	categoryFeed *CategoryFeed

	mu          sync.Mutex
	lastEntries map[int64][]model.VocabEntry
	lastCats    map[int64][]model.Category
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:           db,
		entryFeed:    NewEntryFeed(),
		categoryFeed: NewCategoryFeed(),
		lastEntries:  make(map[int64][]model.VocabEntry),
		lastCats:     make(map[int64][]model.Category),
	}
}

func (s *GormStore) EntryFeed() *EntryFeed {
	return s.entryFeed
}

func (s *GormStore) CategoryFeed() *CategoryFeed {
	return s.categoryFeed
}

func (s *GormStore) CreateEntry(ctx context.Context, userID int64, entry model.VocabEntry) (model.VocabEntry, error) {
	entry.ID = ""
	entry.UserID = userID
	if entry.CategoryIDs == nil {
		entry.CategoryIDs = []string{}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return model.VocabEntry{}, writeErr("create entry", err)
	}

	s.publishEntries(ctx, userID)
	return entry, nil
}

func (s *GormStore) UpdateEntry(ctx context.Context, userID int64, id string, patch EntryPatch) (model.VocabEntry, error) {
	updates := map[string]interface{}{}
	if patch.Word != nil {
		updates["word"] = *patch.Word
	}
	if patch.PartOfSpeech != nil {
		updates["part_of_speech"] = *patch.PartOfSpeech
	}
	if patch.Definition != nil {
		updates["definition"] = *patch.Definition
	}
	if patch.ExampleSentence != nil {
		updates["example_sentence"] = *patch.ExampleSentence
	}
	if patch.ExampleTranslation != nil {
		updates["example_translation"] = *patch.ExampleTranslation
	}
	if patch.Favorite != nil {
		updates["favorite"] = *patch.Favorite
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&model.VocabEntry{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return model.VocabEntry{}, writeErr("update entry", result.Error)
		}
		if result.RowsAffected == 0 {
			return model.VocabEntry{}, writeErr("update entry", ErrNotFound)
		}
	}

	var entry model.VocabEntry
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return model.VocabEntry{}, writeErr("update entry", ErrNotFound)
		}
		return model.VocabEntry{}, writeErr("update entry", err)
	}

	s.publishEntries(ctx, userID)
	return entry, nil
}

func (s *GormStore) DeleteEntry(ctx context.Context, userID int64, id string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.VocabEntry{})
	if result.Error != nil {
		return writeErr("delete entry", result.Error)
	}
	if result.RowsAffected == 0 {
		return writeErr("delete entry", ErrNotFound)
	}

	s.publishEntries(ctx, userID)
	return nil
}

func (s *GormStore) ListEntries(ctx context.Context, userID int64) ([]model.VocabEntry, error) {
	var entries []model.VocabEntry
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&entries).Error
	if err != nil {
		// Degrade to the last known snapshot rather than clearing data
		s.mu.Lock()
		cached, ok := s.lastEntries[userID]
		s.mu.Unlock()
		if ok {
			log.Printf("Warning: entry read failed for user %d, serving last snapshot: %v", userID, err)
			return cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.lastEntries[userID] = entries
	s.mu.Unlock()
	return entries, nil
}

// AddToCategory unions categoryID into the entry's category set. Adding an
// existing member is a no-op; a missing entry is a WriteError.
func (s *GormStore) AddToCategory(ctx context.Context, userID int64, entryID, categoryID string) error {
	if err := s.requireEntry(ctx, userID, entryID); err != nil {
		return writeErr("add to category", err)
	}

	err := s.db.WithContext(ctx).Exec(`
		UPDATE vocab_entries
		SET category_ids = array_append(COALESCE(category_ids, '{}'), ?::text)
		WHERE id = ? AND user_id = ? AND NOT (?::text = ANY(COALESCE(category_ids, '{}')))
	`, categoryID, entryID, userID, categoryID).Error
	if err != nil {
		return writeErr("add to category", err)
	}

	s.publishEntries(ctx, userID)
	return nil
}

// RemoveFromCategory removes categoryID from the entry's category set.
// Removing a non-member is a no-op; a missing entry is a WriteError.
func (s *GormStore) RemoveFromCategory(ctx context.Context, userID int64, entryID, categoryID string) error {
	if err := s.requireEntry(ctx, userID, entryID); err != nil {
		return writeErr("remove from category", err)
	}

	err := s.db.WithContext(ctx).Exec(`
		UPDATE vocab_entries
		SET category_ids = array_remove(COALESCE(category_ids, '{}'), ?::text)
		WHERE id = ? AND user_id = ?
	`, categoryID, entryID, userID).Error
	if err != nil {
		return writeErr("remove from category", err)
	}

	s.publishEntries(ctx, userID)
	return nil
}

func (s *GormStore) CreateCategory(ctx context.Context, userID int64, name string) (model.Category, error) {
	category := model.Category{
		UserID: userID,
		Name:   name,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return model.Category{}, writeErr("create category", err)
	}

	s.publishCategories(ctx, userID)
	return category, nil
}

func (s *GormStore) DeleteCategory(ctx context.Context, userID int64, id string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Category{})
	if result.Error != nil {
		return writeErr("delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return writeErr("delete category", ErrNotFound)
	}

	// Referencing entries keep the dangling id on purpose; cmd/audit can
	// report and clean them.
	s.publishCategories(ctx, userID)
	return nil
}

func (s *GormStore) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	var categories []model.Category
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&categories).Error
	if err != nil {
		s.mu.Lock()
		cached, ok := s.lastCats[userID]
		s.mu.Unlock()
		if ok {
			log.Printf("Warning: category read failed for user %d, serving last snapshot: %v", userID, err)
			return cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.lastCats[userID] = categories
	s.mu.Unlock()
	return categories, nil
}

func (s *GormStore) requireEntry(ctx context.Context, userID int64, entryID string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.VocabEntry{}).
		Where("id = ? AND user_id = ?", entryID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) publishEntries(ctx context.Context, userID int64) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil {
		log.Printf("Warning: failed to load entry snapshot for user %d: %v", userID, err)
		return
	}
	s.entryFeed.Publish(userID, entries)
}

func (s *GormStore) publishCategories(ctx context.Context, userID int64) {
	categories, err := s.ListCategories(ctx, userID)
	if err != nil {
		log.Printf("Warning: failed to load category snapshot for user %d: %v", userID, err)
		return
	}
	s.categoryFeed.Publish(userID, categories)
}

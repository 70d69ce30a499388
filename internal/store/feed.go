package store

import (
	"sync"

	"github.com/wordvault/api/internal/model"
)

// EntryFeed fans out per-user entry snapshots to subscribers. Subscribers
// receive the full current snapshot on every change; snapshots are delivered
// in publish order per feed. The returned unsubscribe func is idempotent.
type EntryFeed struct {
	mu   sync.Mutex
	subs map[int]func(userID int64, entries []model.VocabEntry)
	next int
}

func NewEntryFeed() *EntryFeed {
	return &EntryFeed{subs: make(map[int]func(int64, []model.VocabEntry))}
}

func (f *EntryFeed) Subscribe(fn func(userID int64, entries []model.VocabEntry)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *EntryFeed) Publish(userID int64, entries []model.VocabEntry) {
	f.mu.Lock()
	fns := make([]func(int64, []model.VocabEntry), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(userID, entries)
	}
}

// CategoryFeed is the category-collection counterpart of EntryFeed.
type CategoryFeed struct {
	mu   sync.Mutex
	subs map[int]func(userID int64, categories []model.Category)
	next int
}

func NewCategoryFeed() *CategoryFeed {
	return &CategoryFeed{subs: make(map[int]func(int64, []model.Category))}
}

func (f *CategoryFeed) Subscribe(fn func(userID int64, categories []model.Category)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *CategoryFeed) Publish(userID int64, categories []model.Category) {
	f.mu.Lock()
	fns := make([]func(int64, []model.Category), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(userID, categories)
	}
}

package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wordvault/api/internal/cache"
	"github.com/wordvault/api/internal/model"
)

type fakeBuffer struct {
	entries []cache.DrillEntry
	cleared bool
	users   []int64
}

func (b *fakeBuffer) GetAllDrills(ctx context.Context, userID int64) ([]cache.DrillEntry, error) {
	return b.entries, nil
}

func (b *fakeBuffer) ClearUserDrills(ctx context.Context, userID int64) error {
	b.cleared = true
	b.entries = nil
	return nil
}

func (b *fakeBuffer) GetActiveUsers(ctx context.Context) ([]int64, error) {
	return b.users, nil
}

type fakeDayStore struct {
	rows      map[string]model.DrillHistoryDaily
	failDates map[string]bool
}

func newFakeDayStore() *fakeDayStore {
	return &fakeDayStore{
		rows:      make(map[string]model.DrillHistoryDaily),
		failDates: make(map[string]bool),
	}
}

func (s *fakeDayStore) Day(ctx context.Context, userID int64, date time.Time) (model.DrillHistoryDaily, bool, error) {
	row, ok := s.rows[date.Format("2006-01-02")]
	return row, ok, nil
}

func (s *fakeDayStore) Upsert(ctx context.Context, daily *model.DrillHistoryDaily) error {
	key := daily.Date.Format("2006-01-02")
	if s.failDates[key] {
		return errors.New("connection reset by peer")
	}
	s.rows[key] = *daily
	return nil
}

func drillAt(word, definition, date string) cache.DrillEntry {
	t, _ := time.Parse("2006-01-02", date)
	return cache.DrillEntry{Word: word, Definition: definition, DrilledAt: t}
}

func TestFlushUserAggregatesByDay(t *testing.T) {
	buffer := &fakeBuffer{entries: []cache.DrillEntry{
		drillAt("apple", "a fruit", "2026-08-28"),
		drillAt("bear", "an animal", "2026-08-28"),
		drillAt("apple", "a fruit", "2026-08-28"),
		drillAt("cedar", "a tree", "2026-08-29"),
	}}
	days := newFakeDayStore()
	f := &Flusher{days: days, buffer: buffer}

	if err := f.FlushUser(context.Background(), 1); err != nil {
		t.Fatalf("flush: %v", err)
	}

	first := days.rows["2026-08-28"]
	if len(first.Words) != 2 {
		t.Fatalf("repeated word must collapse to one row entry, got %d", len(first.Words))
	}
	second := days.rows["2026-08-29"]
	if len(second.Words) != 1 || second.Words[0].Word != "cedar" {
		t.Fatalf("unexpected second day: %+v", second.Words)
	}
	if !buffer.cleared {
		t.Fatal("buffer must be cleared after a fully successful flush")
	}
}

func TestFlushUserKeepsBufferOnUpsertFailure(t *testing.T) {
	buffer := &fakeBuffer{entries: []cache.DrillEntry{
		drillAt("apple", "a fruit", "2026-08-28"),
		drillAt("cedar", "a tree", "2026-08-29"),
	}}
	days := newFakeDayStore()
	days.failDates["2026-08-29"] = true
	f := &Flusher{days: days, buffer: buffer}

	err := f.FlushUser(context.Background(), 1)
	if err == nil {
		t.Fatal("a failed day must surface as an error")
	}
	if buffer.cleared {
		t.Fatal("buffer must survive a partial failure so the next flush can retry")
	}
	if _, ok := days.rows["2026-08-28"]; !ok {
		t.Fatal("the successful day should still be persisted")
	}
}

func TestFlushUserRetryMergesIntoExistingDay(t *testing.T) {
	buffer := &fakeBuffer{entries: []cache.DrillEntry{
		drillAt("apple", "a fruit", "2026-08-28"),
		drillAt("bear", "an animal", "2026-08-28"),
	}}
	days := newFakeDayStore()
	f := &Flusher{days: days, buffer: buffer}

	// First pass persists the day but clearing is interrupted; a retry of
	// the same buffer must not duplicate words.
	if err := f.FlushUser(context.Background(), 1); err != nil {
		t.Fatalf("first flush: %v", err)
	}
	buffer.entries = []cache.DrillEntry{
		drillAt("apple", "a fruit", "2026-08-28"),
		drillAt("bear", "an animal", "2026-08-28"),
	}
	buffer.cleared = false
	if err := f.FlushUser(context.Background(), 1); err != nil {
		t.Fatalf("retry flush: %v", err)
	}

	row := days.rows["2026-08-28"]
	if len(row.Words) != 2 {
		t.Fatalf("retry must merge, not duplicate: %d words", len(row.Words))
	}
}

func TestFlushUserEmptyBufferIsNoOp(t *testing.T) {
	buffer := &fakeBuffer{}
	days := newFakeDayStore()
	f := &Flusher{days: days, buffer: buffer}

	if err := f.FlushUser(context.Background(), 1); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if buffer.cleared {
		t.Fatal("nothing buffered, nothing to clear")
	}
	if len(days.rows) != 0 {
		t.Fatalf("no rows expected, got %d", len(days.rows))
	}
}

func TestFlushAllCountsOnlySuccessfulUsers(t *testing.T) {
	buffer := &fakeBuffer{
		users: []int64{1, 2},
		entries: []cache.DrillEntry{
			drillAt("apple", "a fruit", "2026-08-28"),
		},
	}
	days := newFakeDayStore()
	days.failDates["2026-08-28"] = true
	f := &Flusher{days: days, buffer: buffer}

	count, err := f.FlushAll(context.Background())
	if err != nil {
		t.Fatalf("flush all: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed users must not count as flushed, got %d", count)
	}
}

package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wordvault/api/internal/cache"
	"github.com/wordvault/api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// drillBuffer is the pending-activity side of the flush: buffered drills in
// Redis plus the set of users holding them.
type drillBuffer interface {
	GetAllDrills(ctx context.Context, userID int64) ([]cache.DrillEntry, error)
	ClearUserDrills(ctx context.Context, userID int64) error
	GetActiveUsers(ctx context.Context) ([]int64, error)
}

// dayStore loads and upserts one user-day history row.
type dayStore interface {
	Day(ctx context.Context, userID int64, date time.Time) (model.DrillHistoryDaily, bool, error)
	Upsert(ctx context.Context, daily *model.DrillHistoryDaily) error
}

type gormDayStore struct {
	db *gorm.DB
}

func (s gormDayStore) Day(ctx context.Context, userID int64, date time.Time) (model.DrillHistoryDaily, bool, error) {
	var daily model.DrillHistoryDaily
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&daily).Error
	if err == gorm.ErrRecordNotFound {
		return model.DrillHistoryDaily{}, false, nil
	}
	if err != nil {
		return model.DrillHistoryDaily{}, false, err
	}
	return daily, true, nil
}

func (s gormDayStore) Upsert(ctx context.Context, daily *model.DrillHistoryDaily) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"words", "updated_at"}),
	}).Create(daily).Error
}

// Flusher moves buffered drill activity from Redis into the
// drill_history_daily table, one row per user and date.
type Flusher struct {
	days   dayStore
	buffer drillBuffer
}

func NewFlusher(db *gorm.DB, redisCache *cache.RedisCache) *Flusher {
	return &Flusher{days: gormDayStore{db: db}, buffer: redisCache}
}

// FlushUser aggregates one user's buffer by date and upserts each day's
// record. The buffer is cleared only after every day's upsert succeeds; on a
// partial failure it stays in Redis and the next flush retries. Re-upserting
// an already persisted day is harmless because AddOrUpdateWord deduplicates.
func (f *Flusher) FlushUser(ctx context.Context, userID int64) error {
	entries, err := f.buffer.GetAllDrills(ctx, userID)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	dateGroups := make(map[string][]cache.DrillEntry)
	for _, entry := range entries {
		dateStr := entry.DrilledAt.Format("2006-01-02")
		dateGroups[dateStr] = append(dateGroups[dateStr], entry)
	}

	failedDays := 0
	for dateStr, dayEntries := range dateGroups {
		date, _ := time.Parse("2006-01-02", dateStr)

		daily, found, err := f.days.Day(ctx, userID, date)
		if err != nil {
			log.Printf("Failed to query daily drill history: %v", err)
			failedDays++
			continue
		}
		if !found {
			daily = model.DrillHistoryDaily{
				UserID: userID,
				Date:   date,
				Words:  model.DrillWords{},
			}
		}

		for _, entry := range dayEntries {
			daily.AddOrUpdateWord(entry.Word, entry.Definition, entry.DrilledAt)
		}

		if err := f.days.Upsert(ctx, &daily); err != nil {
			log.Printf("Failed to upsert daily drill history: %v", err)
			failedDays++
			continue
		}
	}

	if failedDays > 0 {
		return fmt.Errorf("drill history flush for user %d left %d days unpersisted", userID, failedDays)
	}

	if err := f.buffer.ClearUserDrills(ctx, userID); err != nil {
		log.Printf("Failed to clear drill buffer for user %d: %v", userID, err)
	}

	return nil
}

// FlushAll flushes every user with a pending buffer and returns how many
// users were processed.
func (f *Flusher) FlushAll(ctx context.Context) (int, error) {
	users, err := f.buffer.GetActiveUsers(ctx)
	if err != nil {
		return 0, err
	}

	flushed := 0
	for _, userID := range users {
		if err := f.FlushUser(ctx, userID); err != nil {
			log.Printf("Failed to flush drill history for user %d: %v", userID, err)
			continue
		}
		flushed++
	}
	return flushed, nil
}

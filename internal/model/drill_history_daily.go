package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// DrillWord is a single word entry in the daily drill history.
type DrillWord struct {
	Word          string    `json:"word"`
	Definition    string    `json:"definition"`
	LastDrilledAt time.Time `json:"lastDrilledAt"`
}

// DrillWords is a slice of DrillWord that implements SQL scanner/valuer for JSONB.
type DrillWords []DrillWord

// Value implements driver.Valuer for JSONB serialization.
func (d DrillWords) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal([]DrillWord{})
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB deserialization.
func (d *DrillWords) Scan(value interface{}) error {
	if value == nil {
		*d = []DrillWord{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal DrillWords: not a byte slice")
	}

	return json.Unmarshal(bytes, d)
}

// DrillHistoryDaily stores daily aggregated drill activity per user.
// One row = one user + one date + N words (as JSONB array).
type DrillHistoryDaily struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex:idx_drill_history_daily_user_date,priority:1" json:"userId"`
	Date      time.Time  `gorm:"type:date;not null;uniqueIndex:idx_drill_history_daily_user_date,priority:2" json:"date"`
	Words     DrillWords `gorm:"type:jsonb;not null;default:'[]'" json:"words"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (DrillHistoryDaily) TableName() string {
	return "drill_history_daily"
}

// AddOrUpdateWord adds a word to the Words slice or refreshes its
// lastDrilledAt if it is already present for the day.
func (d *DrillHistoryDaily) AddOrUpdateWord(word, definition string, drilledAt time.Time) {
	for i, w := range d.Words {
		if w.Word == word {
			d.Words[i].LastDrilledAt = drilledAt
			if definition != "" {
				d.Words[i].Definition = definition
			}
			return
		}
	}
	d.Words = append(d.Words, DrillWord{
		Word:          word,
		Definition:    definition,
		LastDrilledAt: drilledAt,
	})
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult is the persisted outcome of one finished quiz run. Review holds
// the per-question list (word, definition, correctness) in quiz order.
type QuizResult struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64          `gorm:"not null;index:idx_quiz_results_user_created,priority:1" json:"userId"`
	Mode      string         `gorm:"not null;size:10" json:"mode"`
	Scope     string         `gorm:"size:64" json:"scope"`
	Total     int            `gorm:"not null" json:"total"`
	Score     int            `gorm:"not null" json:"score"`
	Percent   int            `gorm:"not null" json:"percent"`
	Review    datatypes.JSON `json:"review"`
	CreatedAt time.Time      `gorm:"index:idx_quiz_results_user_created,priority:2,sort:desc" json:"createdAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

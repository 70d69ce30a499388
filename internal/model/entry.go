package model

import (
	"time"

	"github.com/lib/pq"
)

// VocabEntry is a single vocabulary record owned by one user. CategoryIDs is
// a set: no duplicates, order irrelevant. A referenced category may no longer
// exist (category deletion does not cascade); readers treat such ids as
// "unknown category".
type VocabEntry struct {
	ID                 string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID             int64          `gorm:"not null;index:idx_vocab_entries_user_created,priority:1" json:"userId"`
	Word               string         `gorm:"not null;size:255" json:"word"`
	PartOfSpeech       string         `gorm:"not null;size:30;default:'n.'" json:"partOfSpeech"`
	Definition         string         `gorm:"not null" json:"definition"`
	ExampleSentence    string         `json:"exampleSentence"`
	ExampleTranslation string         `json:"exampleTranslation"`
	Favorite           bool           `gorm:"default:false" json:"favorite"`
	CategoryIDs        pq.StringArray `gorm:"type:text[]" json:"categoryIds"`
	CreatedAt          time.Time      `gorm:"index:idx_vocab_entries_user_created,priority:2,sort:desc" json:"createdAt"`
}

func (VocabEntry) TableName() string {
	return "vocab_entries"
}

// HasCategory reports whether the entry is a member of the given category.
func (e *VocabEntry) HasCategory(categoryID string) bool {
	for _, id := range e.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

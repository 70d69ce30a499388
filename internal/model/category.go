package model

import "time"

// Category is a user-defined grouping. Names are not required to be unique;
// bulk import matches them case-sensitively by exact name.
type Category struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"userId"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Category) TableName() string {
	return "categories"
}

package domain

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:155;not null;uniqueIndex" json:"title"`
	Image     string    `gorm:"size:512" json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

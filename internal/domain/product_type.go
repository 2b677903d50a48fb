package domain

import "time"

type ProductType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:155;not null;index" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category"`
	Category    Category  `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

package domain

import "time"

type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          string         `gorm:"size:36;not null;uniqueIndex" json:"uuid"`
	Title         string         `gorm:"size:155;not null;index" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	CategoryID    uint           `gorm:"not null;index" json:"category"`
	Category      Category       `json:"-"`
	ProductTypeID uint           `gorm:"not null;index" json:"types_product"`
	ProductType   ProductType    `json:"-"`
	Price         string         `gorm:"size:30;not null" json:"price"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	Images        []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product"`
	Image     string    `gorm:"size:512;not null" json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

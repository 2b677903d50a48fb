package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

func Migrate(db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	}()

	err := db.AutoMigrate(
		&domain.Category{},
		&domain.ProductType{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.IdempotencyRecord{},
	)
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

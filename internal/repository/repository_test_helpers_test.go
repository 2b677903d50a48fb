package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
)

// newRepositoryDBForTest opens a uniquely named shared in-memory sqlite
// database so tests stay isolated while gorm's connection pool still sees a
// single logical database.
func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Category{}, &domain.ProductType{}, &domain.Product{}, &domain.ProductImage{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedCategoryForTest(t *testing.T, db *gorm.DB, title string) domain.Category {
	t.Helper()
	category := domain.Category{Title: title}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category %q: %v", title, err)
	}
	return category
}

func seedProductTypeForTest(t *testing.T, db *gorm.DB, categoryID uint, title string) domain.ProductType {
	t.Helper()
	productType := domain.ProductType{Title: title, CategoryID: categoryID}
	if err := db.Create(&productType).Error; err != nil {
		t.Fatalf("seed product type %q: %v", title, err)
	}
	return productType
}

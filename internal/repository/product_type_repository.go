package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

var ErrProductTypeNotFound = errors.New("product type not found")

type ProductTypeRepository interface {
	Create(ctx context.Context, productType *domain.ProductType) error
	FindByID(ctx context.Context, id uint) (*domain.ProductType, error)
	List(ctx context.Context) ([]domain.ProductType, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

type GormProductTypeRepository struct{ db *gorm.DB }

func NewProductTypeRepository(db *gorm.DB) ProductTypeRepository {
	return &GormProductTypeRepository{db: db}
}

func (r *GormProductTypeRepository) Create(ctx context.Context, productType *domain.ProductType) error {
	if err := r.db.WithContext(ctx).Create(productType).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product_type", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "product_type", "create", "success")
	return nil
}

func (r *GormProductTypeRepository) FindByID(ctx context.Context, id uint) (*domain.ProductType, error) {
	var productType domain.ProductType
	if err := r.db.WithContext(ctx).Joins("Category").First(&productType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "product_type", "find_by_id", "not_found")
			return nil, ErrProductTypeNotFound
		}
		observability.RecordRepositoryOperation(ctx, "product_type", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product_type", "find_by_id", "success")
	return &productType, nil
}

// List returns all product types with their category joined in the same
// query, so callers can render category titles without extra round trips.
func (r *GormProductTypeRepository) List(ctx context.Context) ([]domain.ProductType, error) {
	var types []domain.ProductType
	if err := r.db.WithContext(ctx).Joins("Category").Order("product_types.id").Find(&types).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product_type", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product_type", "list", "success")
	return types, nil
}

func (r *GormProductTypeRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ProductType{}).Where("id = ?", id).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product_type", "exists_by_id", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "product_type", "exists_by_id", "success")
	return count > 0, nil
}

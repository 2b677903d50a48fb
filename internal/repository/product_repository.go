package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

var ErrProductNotFound = errors.New("product not found")

// ProductListQuery narrows a paged product listing. CategoryID zero means no
// category filter.
type ProductListQuery struct {
	PageRequest
	CategoryID uint
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.Product, error)
	ListPaged(ctx context.Context, q ProductListQuery) (PageResult[domain.Product], error)
	DeleteByID(ctx context.Context, id uint) error
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// Create persists the product together with its images; gorm wraps the
// association inserts in a single transaction.
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "product", "create", "success")
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Joins("Category").
		Joins("ProductType").
		Preload("Images").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "success")
	return &product, nil
}

func (r *GormProductRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Joins("Category").
		Joins("ProductType").
		Preload("Images").
		Where("products.uuid = ?", uuid).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "product", "find_by_uuid", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(ctx, "product", "find_by_uuid", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "find_by_uuid", "success")
	return &product, nil
}

// ListPaged joins category and type in the listing query and preloads images
// in one batched follow-up query, keeping the page at two statements total
// regardless of page size.
func (r *GormProductRepository) ListPaged(ctx context.Context, q ProductListQuery) (PageResult[domain.Product], error) {
	normalized := normalizePageRequest(q.PageRequest)
	result := PageResult[domain.Product]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	countQuery := r.db.WithContext(ctx).Model(&domain.Product{})
	if q.CategoryID != 0 {
		countQuery = countQuery.Where("category_id = ?", q.CategoryID)
	}
	if err := countQuery.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "list_paged", "error")
		return PageResult[domain.Product]{}, err
	}

	offset := (normalized.Page - 1) * normalized.PageSize
	listQuery := r.db.WithContext(ctx).
		Joins("Category").
		Joins("ProductType").
		Preload("Images")
	if q.CategoryID != 0 {
		listQuery = listQuery.Where("products.category_id = ?", q.CategoryID)
	}
	if err := listQuery.Order("products.id desc").Offset(offset).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "list_paged", "error")
		return PageResult[domain.Product]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(ctx, "product", "list_paged", "success")
	return result, nil
}

func (r *GormProductRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Select("Images").Delete(&domain.Product{ID: id})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "success")
	return nil
}

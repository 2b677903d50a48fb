package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
}

type GormCategoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "category", "create", "success")
	return nil
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "category", "find_by_id", "not_found")
			return nil, ErrCategoryNotFound
		}
		observability.RecordRepositoryOperation(ctx, "category", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "category", "find_by_id", "success")
	return &category, nil
}

func (r *GormCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "category", "list", "success")
	return categories, nil
}

func (r *GormCategoryRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "exists_by_id", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "category", "exists_by_id", "success")
	return count > 0, nil
}

func (r *GormCategoryRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("lower(title) = lower(?)", title).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "exists_by_title", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "category", "exists_by_title", "success")
	return count > 0, nil
}

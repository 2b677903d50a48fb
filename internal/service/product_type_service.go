package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
)

const (
	productTypeTitleMinLen = 2
	productTypeTitleMaxLen = 155
)

type CreateProductTypeInput struct {
	Title       string
	Description string
	CategoryID  uint
}

type ProductTypeServiceImpl struct {
	repo       repository.ProductTypeRepository
	categories repository.CategoryRepository
	cache      *CachedListLoader
	listTTL    time.Duration
}

func NewProductTypeService(repo repository.ProductTypeRepository, categories repository.CategoryRepository, cache *CachedListLoader, listTTL time.Duration) *ProductTypeServiceImpl {
	return &ProductTypeServiceImpl{
		repo:       repo,
		categories: categories,
		cache:      cache,
		listTTL:    listTTL,
	}
}

func (s *ProductTypeServiceImpl) Create(ctx context.Context, input CreateProductTypeInput) (*ProductTypeView, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "product_type", "create", outcome, time.Since(start)) }()

	ve := NewValidationError()
	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		ve.Add("title", msgFieldRequired)
	case utf8.RuneCountInString(title) < productTypeTitleMinLen:
		ve.Add("title", msgMinLength(productTypeTitleMinLen))
	case utf8.RuneCountInString(title) > productTypeTitleMaxLen:
		ve.Add("title", msgMaxLength(productTypeTitleMaxLen))
	}
	if input.CategoryID == 0 {
		ve.Add("category", msgFieldRequired)
	} else {
		exists, err := s.categories.ExistsByID(ctx, input.CategoryID)
		if err != nil {
			outcome = "error"
			return nil, err
		}
		if !exists {
			ve.Add("category", msgCategoryMissing)
		}
	}
	if ve.HasErrors() {
		outcome = "bad_request"
		return nil, ve
	}

	productType := &domain.ProductType{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  input.CategoryID,
	}
	if err := s.repo.Create(ctx, productType); err != nil {
		outcome = "error"
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, CacheNamespaceTypes)

	// Re-read joined so the view carries the category title.
	created, err := s.repo.FindByID(ctx, productType.ID)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	view := buildProductTypeView(*created)
	return &view, nil
}

// ListPayload returns the serialized type list with category titles joined
// ahead of time, served from cache when a fresh entry exists.
func (s *ProductTypeServiceImpl) ListPayload(ctx context.Context) (ListPayload, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "product_type", "list", outcome, time.Since(start)) }()

	payload, age, fromCache, err := s.cache.GetOrBuild(ctx, CacheNamespaceTypes, "all", s.listTTL, func(ctx context.Context) ([]byte, error) {
		types, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]ProductTypeView, 0, len(types))
		for _, productType := range types {
			views = append(views, buildProductTypeView(productType))
		}
		return json.Marshal(views)
	})
	if err != nil {
		outcome = "error"
		return ListPayload{}, err
	}
	return ListPayload{Data: payload, Age: age, FromCache: fromCache}, nil
}

func (s *ProductTypeServiceImpl) ListTTL() time.Duration {
	return s.listTTL
}

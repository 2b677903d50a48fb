package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
)

const (
	productTitleMinLen       = 3
	productTitleMaxLen       = 155
	productDescriptionMinLen = 10
	productPriceMaxLen       = 30
)

// CreateProductInput carries one product create request. Price stays a string
// end to end so values like "10.50" survive without float rounding.
type CreateProductInput struct {
	Title         string
	Description   string
	Price         string
	CategoryID    uint
	ProductTypeID uint
	IsActive      bool
	Images        []ImageUpload
}

// ProductServiceConfig bundles the tunables of the product service.
type ProductServiceConfig struct {
	ListCacheTTL        time.Duration
	MaxImagesPerProduct int
}

type ProductServiceImpl struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	types      repository.ProductTypeRepository
	storage    ImageStorage
	cache      *CachedListLoader
	cfg        ProductServiceConfig
}

func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	types repository.ProductTypeRepository,
	storage ImageStorage,
	cache *CachedListLoader,
	cfg ProductServiceConfig,
) *ProductServiceImpl {
	return &ProductServiceImpl{
		repo:       repo,
		categories: categories,
		types:      types,
		storage:    storage,
		cache:      cache,
		cfg:        cfg,
	}
}

// Create validates all fields, uploads images, persists the product and its
// image rows, and invalidates the cached product lists. Field failures are
// accumulated into one ValidationError rather than returned one at a time.
func (s *ProductServiceImpl) Create(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "product", "create", outcome, time.Since(start)) }()

	ve := NewValidationError()

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		ve.Add("title", msgFieldRequired)
	case utf8.RuneCountInString(title) < productTitleMinLen:
		ve.Add("title", msgMinLength(productTitleMinLen))
	case utf8.RuneCountInString(title) > productTitleMaxLen:
		ve.Add("title", msgMaxLength(productTitleMaxLen))
	}

	description := strings.TrimSpace(input.Description)
	switch {
	case description == "":
		ve.Add("description", msgFieldRequired)
	case utf8.RuneCountInString(description) < productDescriptionMinLen:
		ve.Add("description", msgMinLength(productDescriptionMinLen))
	}

	price := strings.TrimSpace(input.Price)
	switch {
	case price == "":
		ve.Add("price", msgFieldRequired)
	case len(price) > productPriceMaxLen:
		ve.Add("price", msgMaxLength(productPriceMaxLen))
	default:
		value, err := strconv.ParseFloat(price, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			ve.Add("price", msgValidNumber)
		} else if value <= 0 {
			ve.Add("price", msgPricePositive)
		}
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

	if input.ProductTypeID == 0 {
		ve.Add("types_product", msgFieldRequired)
	} else {
		exists, err := s.types.ExistsByID(ctx, input.ProductTypeID)
		if err != nil {
			outcome = "error"
			return nil, err
		}
		if !exists {
			ve.Add("types_product", msgProductTypeMissing)
		}
	}

	if s.cfg.MaxImagesPerProduct > 0 && len(input.Images) > s.cfg.MaxImagesPerProduct {
		ve.Add("images", fmt.Sprintf("No more than %d images are allowed.", s.cfg.MaxImagesPerProduct))
	}

	if ve.HasErrors() {
		outcome = "bad_request"
		return nil, ve
	}

	productUUID := uuid.New().String()
	keyPrefix := "products/" + productUUID

	uploaded := make([]string, 0, len(input.Images))
	for _, image := range input.Images {
		objectKey, err := s.storage.Upload(ctx, keyPrefix, image)
		if err != nil {
			s.deleteUploaded(ctx, uploaded)
			switch {
			case errors.Is(err, ErrImageTooLarge):
				outcome = "bad_request"
				ve.Add("images", msgImageTooLarge)
				return nil, ve
			case errors.Is(err, ErrUnsupportedImageType):
				outcome = "bad_request"
				ve.Add("images", msgUnsupportedImage)
				return nil, ve
			case errors.Is(err, ErrStorageDisabled):
				outcome = "unavailable"
				return nil, err
			default:
				outcome = "error"
				return nil, err
			}
		}
		uploaded = append(uploaded, objectKey)
	}

	product := &domain.Product{
		UUID:          productUUID,
		Title:         title,
		Description:   description,
		CategoryID:    input.CategoryID,
		ProductTypeID: input.ProductTypeID,
		Price:         price,
		IsActive:      input.IsActive,
	}
	for _, objectKey := range uploaded {
		product.Images = append(product.Images, domain.ProductImage{Image: objectKey})
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.deleteUploaded(ctx, uploaded)
		outcome = "error"
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, CacheNamespaceProducts)

	created, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	view := buildProductView(ctx, s.storage, *created)
	return &view, nil
}

// ListPayload returns one serialized page of products, cached per
// (page, page_size, category) combination.
func (s *ProductServiceImpl) ListPayload(ctx context.Context, query repository.ProductListQuery) (ListPayload, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "product", "list", outcome, time.Since(start)) }()

	cacheKey := fmt.Sprintf("page=%d&page_size=%d&category=%d", query.Page, query.PageSize, query.CategoryID)
	payload, age, fromCache, err := s.cache.GetOrBuild(ctx, CacheNamespaceProducts, cacheKey, s.cfg.ListCacheTTL, func(ctx context.Context) ([]byte, error) {
		page, err := s.repo.ListPaged(ctx, query)
		if err != nil {
			return nil, err
		}
		views := make([]ProductView, 0, len(page.Items))
		for _, product := range page.Items {
			views = append(views, buildProductView(ctx, s.storage, product))
		}
		return json.Marshal(map[string]any{
			"items": views,
			"pagination": map[string]any{
				"page":        page.Page,
				"page_size":   page.PageSize,
				"total":       page.Total,
				"total_pages": page.TotalPages,
			},
		})
	})
	if err != nil {
		outcome = "error"
		return ListPayload{}, err
	}
	return ListPayload{Data: payload, Age: age, FromCache: fromCache}, nil
}

// GetByUUID returns one product by its public identifier.
func (s *ProductServiceImpl) GetByUUID(ctx context.Context, id string) (*ProductView, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "product", "get", outcome, time.Since(start)) }()

	product, err := s.repo.FindByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	view := buildProductView(ctx, s.storage, *product)
	return &view, nil
}

func (s *ProductServiceImpl) ListTTL() time.Duration {
	return s.cfg.ListCacheTTL
}

// deleteUploaded best-effort removes objects left behind by a failed create.
func (s *ProductServiceImpl) deleteUploaded(ctx context.Context, objectKeys []string) {
	for _, objectKey := range objectKeys {
		_ = s.storage.Delete(ctx, objectKey)
	}
}

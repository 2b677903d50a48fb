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
	categoryTitleMinLen = 2
	categoryTitleMaxLen = 155
)

type CreateCategoryInput struct {
	Title string
}

type CategoryServiceImpl struct {
	repo    repository.CategoryRepository
	storage ImageStorage
	cache   *CachedListLoader
	listTTL time.Duration
}

func NewCategoryService(repo repository.CategoryRepository, storage ImageStorage, cache *CachedListLoader, listTTL time.Duration) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		repo:    repo,
		storage: storage,
		cache:   cache,
		listTTL: listTTL,
	}
}

func (s *CategoryServiceImpl) Create(ctx context.Context, input CreateCategoryInput) (*CategoryView, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "category", "create", outcome, time.Since(start)) }()

	ve := NewValidationError()
	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		ve.Add("title", msgFieldRequired)
	case utf8.RuneCountInString(title) < categoryTitleMinLen:
		ve.Add("title", msgMinLength(categoryTitleMinLen))
	case utf8.RuneCountInString(title) > categoryTitleMaxLen:
		ve.Add("title", msgMaxLength(categoryTitleMaxLen))
	default:
		exists, err := s.repo.ExistsByTitle(ctx, title)
		if err != nil {
			outcome = "error"
			return nil, err
		}
		if exists {
			ve.Add("title", msgCategoryTitleTaken)
		}
	}
	if ve.HasErrors() {
		outcome = "bad_request"
		return nil, ve
	}

	category := &domain.Category{Title: title}
	if err := s.repo.Create(ctx, category); err != nil {
		outcome = "error"
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, CacheNamespaceCategories)

	view := buildCategoryView(ctx, s.storage, *category)
	return &view, nil
}

// ListPayload returns the serialized category list, served from cache when a
// fresh entry exists.
func (s *CategoryServiceImpl) ListPayload(ctx context.Context) (ListPayload, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "category", "list", outcome, time.Since(start)) }()

	payload, age, fromCache, err := s.cache.GetOrBuild(ctx, CacheNamespaceCategories, "all", s.listTTL, func(ctx context.Context) ([]byte, error) {
		categories, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]CategoryView, 0, len(categories))
		for _, category := range categories {
			views = append(views, buildCategoryView(ctx, s.storage, category))
		}
		return json.Marshal(views)
	})
	if err != nil {
		outcome = "error"
		return ListPayload{}, err
	}
	return ListPayload{Data: payload, Age: age, FromCache: fromCache}, nil
}

// ListTTL reports the cache lifetime used for Cache-Control max-age.
func (s *CategoryServiceImpl) ListTTL() time.Duration {
	return s.listTTL
}

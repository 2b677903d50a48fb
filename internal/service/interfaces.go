// Package service holds the catalog business logic between the HTTP handlers
// and the repositories: validation, list caching, image storage and
// idempotency bookkeeping.
package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/product-catalog-service/internal/repository"
)

type CategoryService interface {
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryView, error)
	ListPayload(ctx context.Context) (ListPayload, error)
	ListTTL() time.Duration
}

type ProductTypeService interface {
	Create(ctx context.Context, input CreateProductTypeInput) (*ProductTypeView, error)
	ListPayload(ctx context.Context) (ListPayload, error)
	ListTTL() time.Duration
}

type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductView, error)
	ListPayload(ctx context.Context, query repository.ProductListQuery) (ListPayload, error)
	GetByUUID(ctx context.Context, id string) (*ProductView, error)
	ListTTL() time.Duration
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
)

// CategoryView is the JSON projection of a category returned by the API.
type CategoryView struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductTypeView carries the owning category title so list responses do not
// force clients into a second lookup.
type ProductTypeView struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      uint      `json:"category"`
	CategoryTitle string    `json:"category_title"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductImageView struct {
	ID       uint   `json:"id"`
	Product  uint   `json:"product"`
	Image    string `json:"image"`
	ImageURL string `json:"image_url"`
}

// ProductView is the JSON projection of a product, flattened with the titles
// of its category and type and a resolvable URL per stored image.
type ProductView struct {
	ID            uint               `json:"id"`
	UUID          string             `json:"uuid"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Category      uint               `json:"category"`
	CategoryTitle string             `json:"category_title"`
	TypesProduct  uint               `json:"types_product"`
	TypesTitle    string             `json:"types_title"`
	Price         string             `json:"price"`
	IsActive      bool               `json:"is_active"`
	FirstImage    *string            `json:"first_image"`
	Images        []ProductImageView `json:"images"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ListPayload is a pre-serialized list response body together with cache
// provenance used by handlers for conditional request headers.
type ListPayload struct {
	Data      []byte
	Age       time.Duration
	FromCache bool
}

// resolveImageURL turns a stored object key into a client-facing URL. A
// presign failure degrades to an empty URL instead of failing the response.
func resolveImageURL(ctx context.Context, storage ImageStorage, objectKey string) string {
	if objectKey == "" || storage == nil {
		return ""
	}
	u, err := storage.URL(ctx, objectKey)
	if err != nil {
		slog.WarnContext(ctx, "image.url_failed", "object_key", objectKey, "error", err)
		return ""
	}
	return u
}

func buildCategoryView(ctx context.Context, storage ImageStorage, c domain.Category) CategoryView {
	return CategoryView{
		ID:        c.ID,
		Title:     c.Title,
		Image:     c.Image,
		ImageURL:  resolveImageURL(ctx, storage, c.Image),
		CreatedAt: c.CreatedAt,
	}
}

func buildProductTypeView(t domain.ProductType) ProductTypeView {
	return ProductTypeView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Category:      t.CategoryID,
		CategoryTitle: t.Category.Title,
		CreatedAt:     t.CreatedAt,
	}
}

func buildProductView(ctx context.Context, storage ImageStorage, p domain.Product) ProductView {
	view := ProductView{
		ID:            p.ID,
		UUID:          p.UUID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.CategoryID,
		CategoryTitle: p.Category.Title,
		TypesProduct:  p.ProductTypeID,
		TypesTitle:    p.ProductType.Title,
		Price:         p.Price,
		IsActive:      p.IsActive,
		Images:        make([]ProductImageView, 0, len(p.Images)),
		CreatedAt:     p.CreatedAt,
	}
	for _, img := range p.Images {
		imageURL := resolveImageURL(ctx, storage, img.Image)
		view.Images = append(view.Images, ProductImageView{
			ID:       img.ID,
			Product:  img.ProductID,
			Image:    img.Image,
			ImageURL: imageURL,
		})
		if view.FirstImage == nil && imageURL != "" {
			u := imageURL
			view.FirstImage = &u
		}
	}
	return view
}

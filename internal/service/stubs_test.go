package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
)

type stubCategoryRepo struct {
	mu        sync.Mutex
	items     map[uint]domain.Category
	nextID    uint
	listCalls int
	createErr error
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{items: map[uint]domain.Category{}, nextID: 1}
}

func (s *stubCategoryRepo) seed(title string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	category := domain.Category{ID: s.nextID, Title: title}
	s.items[category.ID] = category
	s.nextID++
	return category
}

func (s *stubCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	category.ID = s.nextID
	s.nextID++
	s.items[category.ID] = *category
	return nil
}

func (s *stubCategoryRepo) FindByID(_ context.Context, id uint) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.items[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := category
	return &cp, nil
}

func (s *stubCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := make([]domain.Category, 0, len(s.items))
	for _, category := range s.items {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubCategoryRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *stubCategoryRepo) ExistsByTitle(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, category := range s.items {
		if strings.EqualFold(category.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubCategoryRepo) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

type stubProductTypeRepo struct {
	mu         sync.Mutex
	items      map[uint]domain.ProductType
	nextID     uint
	listCalls  int
	categories *stubCategoryRepo
}

func newStubProductTypeRepo(categories *stubCategoryRepo) *stubProductTypeRepo {
	return &stubProductTypeRepo{items: map[uint]domain.ProductType{}, nextID: 1, categories: categories}
}

func (s *stubProductTypeRepo) join(productType domain.ProductType) domain.ProductType {
	if s.categories != nil {
		if category, ok := s.categories.items[productType.CategoryID]; ok {
			productType.Category = category
		}
	}
	return productType
}

func (s *stubProductTypeRepo) Create(_ context.Context, productType *domain.ProductType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	productType.ID = s.nextID
	s.nextID++
	s.items[productType.ID] = *productType
	return nil
}

func (s *stubProductTypeRepo) FindByID(_ context.Context, id uint) (*domain.ProductType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	productType, ok := s.items[id]
	if !ok {
		return nil, repository.ErrProductTypeNotFound
	}
	joined := s.join(productType)
	return &joined, nil
}

func (s *stubProductTypeRepo) List(_ context.Context) ([]domain.ProductType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := make([]domain.ProductType, 0, len(s.items))
	for _, productType := range s.items {
		out = append(out, s.join(productType))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubProductTypeRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *stubProductTypeRepo) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

type stubProductRepo struct {
	mu          sync.Mutex
	items       map[uint]domain.Product
	nextID      uint
	nextImageID uint
	listCalls   int
	createErr   error
	categories  *stubCategoryRepo
	types       *stubProductTypeRepo
}

func newStubProductRepo(categories *stubCategoryRepo, types *stubProductTypeRepo) *stubProductRepo {
	return &stubProductRepo{
		items:       map[uint]domain.Product{},
		nextID:      1,
		nextImageID: 1,
		categories:  categories,
		types:       types,
	}
}

func (s *stubProductRepo) join(product domain.Product) domain.Product {
	if s.categories != nil {
		if category, ok := s.categories.items[product.CategoryID]; ok {
			product.Category = category
		}
	}
	if s.types != nil {
		if productType, ok := s.types.items[product.ProductTypeID]; ok {
			product.ProductType = productType
		}
	}
	product.Images = append([]domain.ProductImage(nil), product.Images...)
	return product
}

func (s *stubProductRepo) Create(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	product.ID = s.nextID
	s.nextID++
	for i := range product.Images {
		product.Images[i].ID = s.nextImageID
		product.Images[i].ProductID = product.ID
		s.nextImageID++
	}
	stored := *product
	stored.Images = append([]domain.ProductImage(nil), product.Images...)
	s.items[product.ID] = stored
	return nil
}

func (s *stubProductRepo) FindByID(_ context.Context, id uint) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	joined := s.join(product)
	return &joined, nil
}

func (s *stubProductRepo) FindByUUID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, product := range s.items {
		if product.UUID == id {
			joined := s.join(product)
			return &joined, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (s *stubProductRepo) ListPaged(_ context.Context, query repository.ProductListQuery) (repository.PageResult[domain.Product], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = repository.DefaultPage
	}
	if pageSize < 1 {
		pageSize = repository.DefaultPageSize
	}
	filtered := make([]domain.Product, 0, len(s.items))
	for _, product := range s.items {
		if query.CategoryID != 0 && product.CategoryID != query.CategoryID {
			continue
		}
		filtered = append(filtered, s.join(product))
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })
	total := int64(len(filtered))
	startIdx := (page - 1) * pageSize
	if startIdx > len(filtered) {
		startIdx = len(filtered)
	}
	endIdx := startIdx + pageSize
	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return repository.PageResult[domain.Product]{
		Items:      filtered[startIdx:endIdx],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *stubProductRepo) DeleteByID(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *stubProductRepo) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

type fakeImageStorage struct {
	mu        sync.Mutex
	uploads   []string
	deleted   []string
	uploadErr error
	failAfter int
}

func newFakeImageStorage() *fakeImageStorage {
	return &fakeImageStorage{}
}

func (f *fakeImageStorage) Upload(_ context.Context, keyPrefix string, _ ImageUpload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil && len(f.uploads) >= f.failAfter {
		return "", f.uploadErr
	}
	objectKey := fmt.Sprintf("%s/img-%d.jpg", keyPrefix, len(f.uploads)+1)
	f.uploads = append(f.uploads, objectKey)
	return objectKey, nil
}

func (f *fakeImageStorage) Delete(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeImageStorage) URL(_ context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return "https://cdn.test/" + objectKey, nil
}

func (f *fakeImageStorage) HealthCheck(context.Context) error {
	return nil
}

func (f *fakeImageStorage) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *fakeImageStorage) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

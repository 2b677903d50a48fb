package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/product-catalog-service/internal/database"
	"github.com/sandeepkv93/product-catalog-service/internal/http/handler"
	"github.com/sandeepkv93/product-catalog-service/internal/http/middleware"
	"github.com/sandeepkv93/product-catalog-service/internal/http/router"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
	"github.com/sandeepkv93/product-catalog-service/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

type categoryItem struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type productTypeItem struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Category      uint   `json:"category"`
	CategoryTitle string `json:"category_title"`
}

type productItem struct {
	ID            uint   `json:"id"`
	UUID          string `json:"uuid"`
	Title         string `json:"title"`
	Category      uint   `json:"category"`
	CategoryTitle string `json:"category_title"`
	TypesProduct  uint   `json:"types_product"`
	Price         string `json:"price"`
	IsActive      bool   `json:"is_active"`
	Images        []struct {
		Image    string `json:"image"`
		ImageURL string `json:"image_url"`
	} `json:"images"`
	FirstImage *string `json:"first_image"`
}

type productListPage struct {
	Items      []productItem `json:"items"`
	Pagination struct {
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

type catalogTestServerOptions struct {
	seedSamples    bool
	listCache      service.ListCacheStore
	storage        service.ImageStorage
	idempotency    bool
	idempotencyTTL time.Duration
	writeLimitRPM  int
	categoryTTL    time.Duration
	typeTTL        time.Duration
	productTTL     time.Duration
	maxUploadBytes int64
}

func newCatalogTestServer(t *testing.T) (string, *http.Client, func()) {
	return newCatalogTestServerWithOptions(t, catalogTestServerOptions{})
}

func newCatalogTestServerWithOptions(t *testing.T, opts catalogTestServerOptions) (string, *http.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, opts.seedSamples); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if opts.listCache == nil {
		opts.listCache = service.NewInMemoryListCacheStore()
	}
	if opts.storage == nil {
		opts.storage = service.NewDisabledImageStorage()
	}
	if opts.idempotencyTTL <= 0 {
		opts.idempotencyTTL = 24 * time.Hour
	}
	if opts.writeLimitRPM <= 0 {
		opts.writeLimitRPM = 1000
	}
	if opts.categoryTTL <= 0 {
		opts.categoryTTL = 15 * time.Minute
	}
	if opts.typeTTL <= 0 {
		opts.typeTTL = 10 * time.Minute
	}
	if opts.productTTL <= 0 {
		opts.productTTL = 5 * time.Minute
	}

	categoryRepo := repository.NewCategoryRepository(db)
	typeRepo := repository.NewProductTypeRepository(db)
	productRepo := repository.NewProductRepository(db)

	loader := service.NewCachedListLoader(opts.listCache)
	categorySvc := service.NewCategoryService(categoryRepo, opts.storage, loader, opts.categoryTTL)
	typeSvc := service.NewProductTypeService(typeRepo, categoryRepo, loader, opts.typeTTL)
	productSvc := service.NewProductService(productRepo, categoryRepo, typeRepo, opts.storage, loader, service.ProductServiceConfig{
		ListCacheTTL:        opts.productTTL,
		MaxImagesPerProduct: 5,
	})

	var idempotencyFactory router.IdempotencyMiddlewareFactory
	if opts.idempotency {
		store := service.NewDBIdempotencyStore(db)
		idempotencyFactory = middleware.NewIdempotencyMiddleware(store, opts.idempotencyTTL).Middleware
	}

	r := router.NewRouter(router.Dependencies{
		CategoryHandler:    handler.NewCategoryHandler(categorySvc),
		ProductTypeHandler: handler.NewProductTypeHandler(typeSvc),
		ProductHandler:     handler.NewProductHandler(productSvc),
		CORSOrigins:        []string{"http://localhost"},
		APIRateLimitRPM:    1000,
		WriteRateLimitRPM:  opts.writeLimitRPM,
		Idempotency:        idempotencyFactory,
		EnableOTelHTTP:     false,
		MaxUploadBytes:     opts.maxUploadBytes,
	})

	srv := httptest.NewServer(r)
	return srv.URL, srv.Client(), srv.Close
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, apiEnvelope) {
	t.Helper()
	resp, raw := doRawText(t, client, method, url, body, headers)
	var env apiEnvelope
	if len(raw) > 0 {
		_ = json.Unmarshal([]byte(raw), &env)
	}
	return resp, env
}

func doRawText(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var payload []byte
	var err error
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.String()
}

func mustDecodeData(t *testing.T, env apiEnvelope, out any) {
	t.Helper()
	if !env.Success {
		t.Fatalf("expected success envelope, got error: %#v", env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func listCategories(t *testing.T, client *http.Client, baseURL string) (*http.Response, []categoryItem) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/product/category-list/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("category-list status = %d", resp.StatusCode)
	}
	var items []categoryItem
	mustDecodeData(t, env, &items)
	return resp, items
}

func listProductTypes(t *testing.T, client *http.Client, baseURL string) (*http.Response, []productTypeItem) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/product/type-list/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("type-list status = %d", resp.StatusCode)
	}
	var items []productTypeItem
	mustDecodeData(t, env, &items)
	return resp, items
}

func TestCategoryListReadThroughCache(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	resp, items := listCategories(t, client, baseURL)
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("first read X-Cache = %q, want MISS", got)
	}
	if len(items) != 3 {
		t.Fatalf("seeded category count = %d, want 3", len(items))
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header on list response")
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "max-age=900") {
		t.Fatalf("Cache-Control = %q, want max-age=900", cc)
	}

	resp2, items2 := listCategories(t, client, baseURL)
	if got := resp2.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("second read X-Cache = %q, want HIT", got)
	}
	if resp2.Header.Get("Age") == "" {
		t.Fatal("expected Age header on cached response")
	}
	if got := resp2.Header.Get("ETag"); got != etag {
		t.Fatalf("cached ETag = %q, want %q", got, etag)
	}
	if len(items2) != len(items) {
		t.Fatalf("cached list length = %d, want %d", len(items2), len(items))
	}
}

func TestCategoryCreateInvalidatesCachedList(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	listCategories(t, client, baseURL)
	resp, _ := listCategories(t, client, baseURL)
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("warmed read X-Cache = %q, want HIT", got)
	}

	createResp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/product/category-create/", map[string]string{"title": "Hats"}, nil)
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body error = %#v", createResp.StatusCode, env.Error)
	}
	var created categoryItem
	mustDecodeData(t, env, &created)
	if created.ID == 0 || created.Title != "Hats" {
		t.Fatalf("created category = %+v", created)
	}

	resp3, items := listCategories(t, client, baseURL)
	if got := resp3.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("post-create read X-Cache = %q, want MISS", got)
	}
	if len(items) != 4 {
		t.Fatalf("category count after create = %d, want 4", len(items))
	}
	found := false
	for _, item := range items {
		if item.Title == "Hats" {
			found = true
		}
	}
	if !found {
		t.Fatalf("new category missing from list: %+v", items)
	}

	resp4, _ := listCategories(t, client, baseURL)
	if got := resp4.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("rewarmed read X-Cache = %q, want HIT", got)
	}
}

func TestTypeCreateInvalidatesTypeList(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	_, types := listProductTypes(t, client, baseURL)
	if len(types) != 5 {
		t.Fatalf("seeded type count = %d, want 5", len(types))
	}

	_, categories := listCategories(t, client, baseURL)
	parent := categories[0]

	createResp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/product/type-create/", map[string]any{
		"title":       "Sandals",
		"description": "Open warm-weather shoes",
		"category":    parent.ID,
	}, nil)
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("type-create status = %d, error = %#v", createResp.StatusCode, env.Error)
	}
	var created productTypeItem
	mustDecodeData(t, env, &created)
	if created.Category != parent.ID || created.CategoryTitle != parent.Title {
		t.Fatalf("created type = %+v, want category %d %q", created, parent.ID, parent.Title)
	}

	resp, types2 := listProductTypes(t, client, baseURL)
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("post-create type list X-Cache = %q, want MISS", got)
	}
	if len(types2) != 6 {
		t.Fatalf("type count after create = %d, want 6", len(types2))
	}
}

func TestProductListPaginationAndPerQueryCache(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServerWithOptions(t, catalogTestServerOptions{seedSamples: true})
	defer closeFn()

	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("product-list status = %d", resp.StatusCode)
	}
	var page productListPage
	mustDecodeData(t, env, &page)
	if page.Pagination.Total != 4 || page.Pagination.Page != 1 || page.Pagination.PageSize != 20 {
		t.Fatalf("default pagination = %+v", page.Pagination)
	}
	if len(page.Items) != 4 {
		t.Fatalf("default page items = %d, want 4", len(page.Items))
	}

	resp2, env2 := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/?page=2&page_size=2", nil, nil)
	if got := resp2.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("distinct query X-Cache = %q, want MISS", got)
	}
	var page2 productListPage
	mustDecodeData(t, env2, &page2)
	if len(page2.Items) != 2 || page2.Pagination.Page != 2 || page2.Pagination.TotalPages != 2 {
		t.Fatalf("second page = %+v pagination = %+v", page2.Items, page2.Pagination)
	}

	resp3, _ := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/?page=2&page_size=2", nil, nil)
	if got := resp3.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("repeated query X-Cache = %q, want HIT", got)
	}

	_, categories := listCategories(t, client, baseURL)
	var shoes categoryItem
	for _, c := range categories {
		if c.Title == "Shoes" {
			shoes = c
		}
	}
	if shoes.ID == 0 {
		t.Fatalf("seeded Shoes category not found in %+v", categories)
	}

	respFiltered, envFiltered := doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/product/product-list/?category=%d", baseURL, shoes.ID), nil, nil)
	if respFiltered.StatusCode != http.StatusOK {
		t.Fatalf("filtered product-list status = %d", respFiltered.StatusCode)
	}
	var filtered productListPage
	mustDecodeData(t, envFiltered, &filtered)
	if filtered.Pagination.Total != 2 {
		t.Fatalf("shoes total = %d, want 2", filtered.Pagination.Total)
	}
	for _, item := range filtered.Items {
		if item.Category != shoes.ID {
			t.Fatalf("filtered item %q has category %d, want %d", item.Title, item.Category, shoes.ID)
		}
	}

	respPast, envPast := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/?page=3&page_size=2", nil, nil)
	if respPast.StatusCode != http.StatusOK {
		t.Fatalf("past-end page status = %d", respPast.StatusCode)
	}
	var past productListPage
	mustDecodeData(t, envPast, &past)
	if len(past.Items) != 0 {
		t.Fatalf("past-end page items = %d, want 0", len(past.Items))
	}
}

func TestProductCreateInvalidatesProductList(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	_, types := listProductTypes(t, client, baseURL)
	productType := types[0]

	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initial product-list status = %d", resp.StatusCode)
	}
	var before productListPage
	mustDecodeData(t, env, &before)
	if before.Pagination.Total != 0 {
		t.Fatalf("initial product total = %d, want 0", before.Pagination.Total)
	}

	createResp, createEnv := doJSON(t, client, http.MethodPost, baseURL+"/api/product/product-create/", map[string]any{
		"title":         "Trail Sandal",
		"description":   "Lightweight hiking sandal with adjustable straps.",
		"price":         "49.90",
		"category":      productType.Category,
		"types_product": productType.ID,
		"is_active":     true,
	}, nil)
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("product-create status = %d, error = %#v", createResp.StatusCode, createEnv.Error)
	}
	var created productItem
	mustDecodeData(t, createEnv, &created)
	if created.UUID == "" || created.Price != "49.90" || !created.IsActive {
		t.Fatalf("created product = %+v", created)
	}

	resp2, env2 := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/", nil, nil)
	if got := resp2.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("post-create product list X-Cache = %q, want MISS", got)
	}
	var after productListPage
	mustDecodeData(t, env2, &after)
	if after.Pagination.Total != 1 || len(after.Items) != 1 {
		t.Fatalf("post-create page = %+v", after.Pagination)
	}
	if after.Items[0].UUID != created.UUID {
		t.Fatalf("listed product uuid = %q, want %q", after.Items[0].UUID, created.UUID)
	}
}

func TestListNotModifiedWithMatchingETag(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	resp, _ := listCategories(t, client, baseURL)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	resp2, raw := doRawText(t, client, http.MethodGet, baseURL+"/api/product/category-list/", nil, map[string]string{"If-None-Match": etag})
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("matching ETag status = %d, want 304", resp2.StatusCode)
	}
	if raw != "" {
		t.Fatalf("304 body = %q, want empty", raw)
	}

	resp3, _ := doRawText(t, client, http.MethodGet, baseURL+"/api/product/category-list/", nil, map[string]string{"If-None-Match": "W/" + etag})
	if resp3.StatusCode != http.StatusNotModified {
		t.Fatalf("weak ETag status = %d, want 304", resp3.StatusCode)
	}

	resp4, _ := doRawText(t, client, http.MethodGet, baseURL+"/api/product/category-list/", nil, map[string]string{"If-None-Match": `"stale"`})
	if resp4.StatusCode != http.StatusOK {
		t.Fatalf("stale ETag status = %d, want 200", resp4.StatusCode)
	}
}

func TestProductListRejectsMalformedQuery(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	cases := []struct {
		name  string
		query string
	}{
		{"non-numeric page", "?page=abc"},
		{"zero page", "?page=0"},
		{"oversized page_size", "?page_size=101"},
		{"negative category", "?category=-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/product/product-list/"+tc.query, nil, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if env.Error == nil || env.Error.Code != "BAD_REQUEST" {
				t.Fatalf("error = %#v, want BAD_REQUEST", env.Error)
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	baseURL, client, closeFn := newCatalogTestServer(t)
	defer closeFn()

	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/health/live", nil, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("live status = %d success = %v", resp.StatusCode, env.Success)
	}

	resp2, env2 := doJSON(t, client, http.MethodGet, baseURL+"/health/ready", nil, nil)
	if resp2.StatusCode != http.StatusOK || !env2.Success {
		t.Fatalf("ready status = %d success = %v", resp2.StatusCode, env2.Success)
	}
}

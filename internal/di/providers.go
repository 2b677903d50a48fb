package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/app"
	"github.com/sandeepkv93/product-catalog-service/internal/config"
	"github.com/sandeepkv93/product-catalog-service/internal/database"
	"github.com/sandeepkv93/product-catalog-service/internal/health"
	"github.com/sandeepkv93/product-catalog-service/internal/http/handler"
	"github.com/sandeepkv93/product-catalog-service/internal/http/middleware"
	"github.com/sandeepkv93/product-catalog-service/internal/http/router"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
	"github.com/sandeepkv93/product-catalog-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewCategoryRepository,
	repository.NewProductTypeRepository,
	repository.NewProductRepository,
)

var CacheSet = wire.NewSet(
	provideListCacheStore,
	service.NewCachedListLoader,
)

var StorageSet = wire.NewSet(provideImageStorage)

var ServiceSet = wire.NewSet(
	provideCategoryService,
	provideProductTypeService,
	provideProductService,
	service.NewDBIdempotencyStore,
	wire.Bind(new(service.CategoryService), new(*service.CategoryServiceImpl)),
	wire.Bind(new(service.ProductTypeService), new(*service.ProductTypeServiceImpl)),
	wire.Bind(new(service.ProductService), new(*service.ProductServiceImpl)),
	wire.Bind(new(service.IdempotencyStore), new(*service.DBIdempotencyStore)),
)

var HTTPSet = wire.NewSet(
	handler.NewCategoryHandler,
	handler.NewProductTypeHandler,
	handler.NewProductHandler,
	provideGlobalRateLimiter,
	provideWriteRateLimiter,
	provideIdempotencyFactory,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	if err := database.Seed(m.db, m.cfg.SeedSampleData); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db, cfg.SeedSampleData); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.CacheRedisEnabled && !cfg.RateLimitRedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideListCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.ListCacheStore {
	if cfg.CacheRedisEnabled && redisClient != nil {
		return service.NewRedisListCacheStore(redisClient, cfg.CacheRedisPrefix)
	}
	return service.NewInMemoryListCacheStore()
}

func provideImageStorage(cfg *config.Config) (service.ImageStorage, error) {
	if !cfg.StorageConfigured() {
		return service.NewDisabledImageStorage(), nil
	}
	return service.NewMinIOImageStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StorageUseSSL,
		cfg.ImageURLTTL,
		cfg.MaxImageSizeBytes,
	)
}

func provideCategoryService(cfg *config.Config, repo repository.CategoryRepository, storage service.ImageStorage, cache *service.CachedListLoader) *service.CategoryServiceImpl {
	return service.NewCategoryService(repo, storage, cache, cfg.CategoryListTTL)
}

func provideProductTypeService(cfg *config.Config, repo repository.ProductTypeRepository, categories repository.CategoryRepository, cache *service.CachedListLoader) *service.ProductTypeServiceImpl {
	return service.NewProductTypeService(repo, categories, cache, cfg.TypeListTTL)
}

func provideProductService(
	cfg *config.Config,
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	types repository.ProductTypeRepository,
	storage service.ImageStorage,
	cache *service.CachedListLoader,
) *service.ProductServiceImpl {
	return service.NewProductService(repo, categories, types, storage, cache, service.ProductServiceConfig{
		ListCacheTTL:        cfg.ProductListTTL,
		MaxImagesPerProduct: cfg.MaxImagesPerProduct,
	})
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideWriteRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.WriteRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":write")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.WriteRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"write",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.WriteRateLimitPerMin, time.Minute).Middleware()
}

func provideIdempotencyFactory(cfg *config.Config, store service.IdempotencyStore) router.IdempotencyMiddlewareFactory {
	return middleware.NewIdempotencyMiddleware(store, cfg.IdempotencyTTL).Middleware
}

func provideRouterDependencies(
	categoryHandler *handler.CategoryHandler,
	productTypeHandler *handler.ProductTypeHandler,
	productHandler *handler.ProductHandler,
	globalRateLimiter router.GlobalRateLimiterFunc,
	writeRateLimiter router.WriteRateLimiterFunc,
	idempotency router.IdempotencyMiddlewareFactory,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		CategoryHandler:    categoryHandler,
		ProductTypeHandler: productTypeHandler,
		ProductHandler:     productHandler,
		CORSOrigins:        cfg.CORSAllowedOrigins,
		APIRateLimitRPM:    cfg.APIRateLimitPerMin,
		WriteRateLimitRPM:  cfg.WriteRateLimitPerMin,
		GlobalRateLimiter:  globalRateLimiter,
		WriteRateLimiter:   writeRateLimiter,
		Idempotency:        idempotency,
		Readiness:          readiness,
		EnableOTelHTTP:     cfg.EnableOTelHTTP && (cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled),
		MaxUploadBytes:     cfg.MaxUploadBytes,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, storage service.ImageStorage) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 3)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.CacheRedisEnabled || cfg.RateLimitRedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	if cfg.StorageConfigured() && storage != nil {
		if c := health.NewFuncChecker("storage", storage.HealthCheck); c != nil {
			checkers = append(checkers, c)
		}
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	idempotency *service.DBIdempotencyStore,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, idempotency)
}

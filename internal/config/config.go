package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `validate:"required"`
	HTTPPort string `validate:"required"`

	DatabaseURL string `validate:"required"`

	CORSAllowedOrigins []string
	LogLevel           string `validate:"oneof=debug info warn error"`

	CategoryListTTL time.Duration `validate:"gt=0"`
	TypeListTTL     time.Duration `validate:"gt=0"`
	ProductListTTL  time.Duration `validate:"gt=0"`

	CacheRedisEnabled     bool
	RateLimitRedisEnabled bool
	RedisAddr             string
	RedisPassword         string
	RedisDB               int    `validate:"gte=0"`
	CacheRedisPrefix      string `validate:"required"`
	RateLimitRedisPrefix  string `validate:"required"`

	APIRateLimitPerMin   int `validate:"gt=0"`
	WriteRateLimitPerMin int `validate:"gt=0"`

	StorageEndpoint     string
	StorageAccessKey    string
	StorageSecretKey    string
	StorageBucket       string
	StorageUseSSL       bool
	ImageURLTTL         time.Duration `validate:"gt=0"`
	MaxImageSizeBytes   int64         `validate:"gt=0"`
	MaxUploadBytes      int64         `validate:"gt=0"`
	MaxImagesPerProduct int           `validate:"gt=0"`

	IdempotencyTTL             time.Duration `validate:"gt=0"`
	IdempotencyCleanupInterval time.Duration `validate:"gt=0"`

	SeedSampleData bool

	ReadinessProbeTimeout        time.Duration `validate:"gt=0"`
	ServerStartGracePeriod       time.Duration `validate:"gte=0"`
	ShutdownTimeout              time.Duration `validate:"gt=0"`
	ShutdownHTTPDrainTimeout     time.Duration `validate:"gt=0"`
	ShutdownObservabilityTimeout time.Duration `validate:"gt=0"`

	EnableOTelHTTP bool

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration `validate:"gt=0"`
	OTELTraceSamplingRatio    float64       `validate:"gte=0,lte=1"`
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:         env,
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),

		CategoryListTTL: getEnvDuration("CATEGORY_LIST_CACHE_TTL", 15*time.Minute),
		TypeListTTL:     getEnvDuration("TYPE_LIST_CACHE_TTL", 10*time.Minute),
		ProductListTTL:  getEnvDuration("PRODUCT_LIST_CACHE_TTL", 5*time.Minute),

		CacheRedisEnabled:     getEnvBool("CACHE_REDIS_ENABLED", false),
		RateLimitRedisEnabled: getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		CacheRedisPrefix:      getEnv("CACHE_REDIS_PREFIX", "catalog_list_cache"),
		RateLimitRedisPrefix:  getEnv("RATE_LIMIT_REDIS_PREFIX", "rl"),

		APIRateLimitPerMin:   getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		WriteRateLimitPerMin: getEnvInt("WRITE_RATE_LIMIT_PER_MIN", 30),

		StorageEndpoint:     os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:    os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:    os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:       getEnv("STORAGE_BUCKET", "product-images"),
		StorageUseSSL:       getEnvBool("STORAGE_USE_SSL", false),
		ImageURLTTL:         getEnvDuration("IMAGE_URL_TTL", time.Hour),
		MaxImageSizeBytes:   getEnvInt64("MAX_IMAGE_SIZE_BYTES", 5<<20),
		MaxUploadBytes:      getEnvInt64("MAX_UPLOAD_BYTES", 32<<20),
		MaxImagesPerProduct: getEnvInt("MAX_IMAGES_PER_PRODUCT", 10),

		IdempotencyTTL:             getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		IdempotencyCleanupInterval: getEnvDuration("IDEMPOTENCY_CLEANUP_INTERVAL", time.Hour),

		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", false),

		ReadinessProbeTimeout:        getEnvDuration("READINESS_PROBE_TIMEOUT", 2*time.Second),
		ServerStartGracePeriod:       getEnvDuration("SERVER_START_GRACE_PERIOD", 10*time.Second),
		ShutdownTimeout:              getEnvDuration("SHUTDOWN_TIMEOUT", 20*time.Second),
		ShutdownHTTPDrainTimeout:     getEnvDuration("SHUTDOWN_HTTP_DRAIN_TIMEOUT", 10*time.Second),
		ShutdownObservabilityTimeout: getEnvDuration("SHUTDOWN_OBSERVABILITY_TIMEOUT", 5*time.Second),

		EnableOTelHTTP: getEnvBool("ENABLE_OTEL_HTTP_METRICS", true),

		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "product-catalog-service"),
		OTELEnvironment:           getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELMetricsExportInterval: getEnvDuration("OTEL_METRICS_EXPORT_INTERVAL", 10*time.Second),
		OTELTraceSamplingRatio:    getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:        getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:        getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:           getEnvBool("OTEL_LOGS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate collects every problem instead of stopping at the first so a broken
// deployment surfaces the full fix list in one pass.
func (c *Config) Validate() error {
	var errs []string
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, "HTTP_PORT must be a port number between 1 and 65535")
	}
	if (c.CacheRedisEnabled || c.RateLimitRedisEnabled) && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when a redis-backed feature is enabled")
	}
	partial := c.StorageEndpoint != "" || c.StorageAccessKey != "" || c.StorageSecretKey != ""
	complete := c.StorageEndpoint != "" && c.StorageAccessKey != "" && c.StorageSecretKey != ""
	if partial && !complete {
		errs = append(errs, "STORAGE_ENDPOINT, STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY must be set together")
	}
	if c.ImageURLTTL > 0 && c.ImageURLTTL <= c.MaxListTTL() {
		errs = append(errs, "IMAGE_URL_TTL must be longer than the longest list cache TTL")
	}
	if c.MaxUploadBytes > 0 && c.MaxUploadBytes < c.MaxImageSizeBytes {
		errs = append(errs, "MAX_UPLOAD_BYTES must be at least MAX_IMAGE_SIZE_BYTES")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// StorageConfigured reports whether object storage credentials are present.
// When false the service runs with image uploads disabled.
func (c *Config) StorageConfigured() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKey != "" && c.StorageSecretKey != "" && c.StorageBucket != ""
}

// MaxListTTL returns the longest of the three list cache TTLs. Presigned image
// URLs embedded in cached payloads must outlive this window.
func (c *Config) MaxListTTL() time.Duration {
	max := c.CategoryListTTL
	if c.TypeListTTL > max {
		max = c.TypeListTTL
	}
	if c.ProductListTTL > max {
		max = c.ProductListTTL
	}
	return max
}

var fieldEnvName = map[string]string{
	"Env":                          "APP_ENV",
	"HTTPPort":                     "HTTP_PORT",
	"DatabaseURL":                  "DATABASE_URL",
	"LogLevel":                     "LOG_LEVEL",
	"CategoryListTTL":              "CATEGORY_LIST_CACHE_TTL",
	"TypeListTTL":                  "TYPE_LIST_CACHE_TTL",
	"ProductListTTL":               "PRODUCT_LIST_CACHE_TTL",
	"RedisDB":                      "REDIS_DB",
	"CacheRedisPrefix":             "CACHE_REDIS_PREFIX",
	"RateLimitRedisPrefix":         "RATE_LIMIT_REDIS_PREFIX",
	"APIRateLimitPerMin":           "API_RATE_LIMIT_PER_MIN",
	"WriteRateLimitPerMin":         "WRITE_RATE_LIMIT_PER_MIN",
	"ImageURLTTL":                  "IMAGE_URL_TTL",
	"MaxImageSizeBytes":            "MAX_IMAGE_SIZE_BYTES",
	"MaxUploadBytes":               "MAX_UPLOAD_BYTES",
	"MaxImagesPerProduct":          "MAX_IMAGES_PER_PRODUCT",
	"IdempotencyTTL":               "IDEMPOTENCY_TTL",
	"IdempotencyCleanupInterval":   "IDEMPOTENCY_CLEANUP_INTERVAL",
	"ReadinessProbeTimeout":        "READINESS_PROBE_TIMEOUT",
	"ServerStartGracePeriod":       "SERVER_START_GRACE_PERIOD",
	"ShutdownTimeout":              "SHUTDOWN_TIMEOUT",
	"ShutdownHTTPDrainTimeout":     "SHUTDOWN_HTTP_DRAIN_TIMEOUT",
	"ShutdownObservabilityTimeout": "SHUTDOWN_OBSERVABILITY_TIMEOUT",
	"OTELMetricsExportInterval":    "OTEL_METRICS_EXPORT_INTERVAL",
	"OTELTraceSamplingRatio":       "OTEL_TRACE_SAMPLING_RATIO",
	"OTELExporterOTLPEndpoint":     "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func describeFieldError(fe validator.FieldError) string {
	name, ok := fieldEnvName[fe.StructField()]
	if !ok {
		name = fe.StructField()
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "gt":
		return fmt.Sprintf("%s must be > %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
